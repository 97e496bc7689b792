package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"gofinance/internal/cache"
	"gofinance/internal/core"
	"gofinance/internal/log"
	"gofinance/internal/repository"
)

// EventDashboard is the live event carrying a refreshed dashboard.
const EventDashboard = "dashboard"

type (
	// Publisher announces registered transactions to other processes.
	Publisher interface {
		PublishTransactionCreated(ctx context.Context, userID, transactionID string) error
	}

	// Notifier pushes events to a user's live subscribers.
	Notifier interface {
		Notify(userID, event string, payload any)
	}
)

// Dashboard is the home screen: the three highlight cards plus the listing.
type Dashboard struct {
	Totals       core.Totals              `json:"totals"`
	Transactions []core.ListedTransaction `json:"transactions"`
	Generation   uint64                   `json:"generation"`
}

type FinanceConfig struct {
	Catalog   core.Catalog
	Location  *time.Location
	CacheSize int
	CacheTTL  time.Duration
}

type Option func(*FinanceService)

func WithPublisher(p Publisher) Option { return func(s *FinanceService) { s.publisher = p } }
func WithNotifier(n Notifier) Option   { return func(s *FinanceService) { s.notifier = n } }

// WithClock and WithIDs make registration deterministic in tests.
func WithClock(now func() time.Time) Option { return func(s *FinanceService) { s.now = now } }
func WithIDs(newID func() string) Option    { return func(s *FinanceService) { s.newID = newID } }

// FinanceService orchestrates sessions, registration and the two aggregate
// views over the repositories. Only loaded collections are cached; aggregates
// are recomputed on every read.
type FinanceService struct {
	txs      *repository.TransactionRepository
	sessions *repository.SessionRepository
	catalog  core.Catalog
	loc      *time.Location
	logger   *log.Logger

	// mu makes the generation check and cache fill of a load, and the check
	// and enqueue of a push, atomic with respect to invalidate.
	mu    sync.Mutex
	cache *cache.LRU[[]core.Transaction]
	sf    singleflight.Group
	gens  *Generations

	publisher Publisher
	notifier  Notifier
	now       func() time.Time
	newID     func() string
}

func NewFinanceService(
	txs *repository.TransactionRepository,
	sessions *repository.SessionRepository,
	cfg FinanceConfig,
	logger *log.Logger,
	opts ...Option,
) *FinanceService {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.Catalog.Len() == 0 {
		cfg.Catalog = core.DefaultCatalog()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	s := &FinanceService{
		txs:      txs,
		sessions: sessions,
		catalog:  cfg.Catalog,
		loc:      cfg.Location,
		logger:   logger.WithComponent(log.ComponentFinance),
		cache:    cache.NewLRU[[]core.Transaction](cfg.CacheSize, cfg.CacheTTL),
		gens:     NewGenerations(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the category catalog the service was built with.
func (s *FinanceService) Catalog() core.Catalog { return s.catalog }

// Location is the zone used for month boundaries and labels.
func (s *FinanceService) Location() *time.Location { return s.loc }

// Cache exposes the collection cache so its expiry can be swept.
func (s *FinanceService) Cache() cache.Cleaner { return s.cache }

func (s *FinanceService) SignIn(ctx context.Context, u core.User) error {
	if err := s.sessions.Save(ctx, u); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	s.logger.InfoContext(ctx, "User signed in", log.NewFields().WithUser(u.ID).WithOperation(log.OpSignIn).ToSlice()...)
	return nil
}

// SignOut forgets the profile only; the collection stays in storage.
func (s *FinanceService) SignOut(ctx context.Context, userID string) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.cache.Delete(s.txs.Key(userID))
	s.logger.InfoContext(ctx, "User signed out", log.NewFields().WithUser(userID).WithOperation(log.OpSignOut).ToSlice()...)
	return nil
}

// CurrentUser returns repository.ErrNoSession when userID is not signed in.
func (s *FinanceService) CurrentUser(ctx context.Context, userID string) (core.User, error) {
	return s.sessions.Get(ctx, userID)
}

// Register validates and appends a new transaction, then announces it.
// Publishing and live pushes are best effort: once the append succeeded the
// registration is not failed by them.
func (s *FinanceService) Register(ctx context.Context, userID string, in core.NewTransaction) (core.Transaction, error) {
	tx, err := in.Record(s.newID(), s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.txs.Append(ctx, userID, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("register transaction: %w", err)
	}
	s.invalidate(userID)

	fields := log.NewFields().
		WithUser(userID).
		WithTransaction(tx.ID, tx.Name, string(tx.Type), string(tx.Amount), tx.Category).
		WithOperation(log.OpCreate)
	s.logger.InfoContext(ctx, "Transaction registered", fields.ToSlice()...)

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, userID, tx.ID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.NewFields().WithUser(userID).WithError(err).WithOperation(log.OpPublish).ToSlice()...)
		}
	}
	if s.notifier != nil {
		s.pushDashboard(context.WithoutCancel(ctx), userID)
	}
	return tx, nil
}

// Dashboard computes the totals and listing over the user's whole collection.
func (s *FinanceService) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	txs, gen, err := s.load(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	d := s.dashboardOf(txs, gen)
	if d.Totals.Skipped > 0 {
		s.logger.WarnContext(ctx, "Records skipped during aggregation",
			log.FieldUserID, userID, log.FieldSkipped, d.Totals.Skipped, log.FieldOperation, log.OpDashboard)
	}
	return d, nil
}

// Transaction returns one of the user's records by id.
func (s *FinanceService) Transaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	txs, _, err := s.load(ctx, userID)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, repository.ErrTransactionNotFound)
}

// Transactions returns the formatted listing in collection order.
func (s *FinanceService) Transactions(ctx context.Context, userID string) ([]core.ListedTransaction, error) {
	txs, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.FormatListing(txs, s.catalog, s.loc), nil
}

// Resume computes the category breakdown of one month.
func (s *FinanceService) Resume(ctx context.Context, userID string, period core.Period) (core.Breakdown, error) {
	if err := period.Validate(); err != nil {
		return core.Breakdown{}, err
	}
	txs, _, err := s.load(ctx, userID)
	if err != nil {
		return core.Breakdown{}, err
	}
	return core.ComputeBreakdown(txs, period, s.catalog, s.loc), nil
}

// CurrentPeriod is the month containing now in the service location.
func (s *FinanceService) CurrentPeriod() core.Period {
	return core.PeriodOf(s.now(), s.loc)
}

func (s *FinanceService) dashboardOf(txs []core.Transaction, gen uint64) Dashboard {
	return Dashboard{
		Totals:       core.ComputeTotals(txs, s.loc),
		Transactions: core.FormatListing(txs, s.catalog, s.loc),
		Generation:   gen,
	}
}

// load returns the collection and the generation it was read under.
// Concurrent loads of the same key share one storage read.
func (s *FinanceService) load(ctx context.Context, userID string) ([]core.Transaction, uint64, error) {
	gen := s.gens.Current(userID)
	key := s.txs.Key(userID)

	if txs, ok := s.cache.Get(key); ok {
		return txs, gen, nil
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.txs.Load(context.WithoutCancel(ctx), userID)
	})
	if err != nil {
		return nil, gen, fmt.Errorf("load collection: %w", err)
	}
	txs := v.([]core.Transaction)

	s.mu.Lock()
	if s.gens.IsLatest(userID, gen) {
		s.cache.Set(key, txs)
	}
	s.mu.Unlock()
	return txs, gen, nil
}

// invalidate makes every load started before it stale. Forget precedes
// Advance so a load that observes the new generation cannot join a read that
// began before the append.
func (s *FinanceService) invalidate(userID string) {
	key := s.txs.Key(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sf.Forget(key)
	s.cache.Delete(key)
	s.gens.Advance(userID)
}

func (s *FinanceService) pushDashboard(ctx context.Context, userID string) {
	d, err := s.Dashboard(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to refresh dashboard for subscribers",
			log.NewFields().WithUser(userID).WithError(err).ToSlice()...)
		return
	}
	// Holding mu orders pushes by generation: a later invalidate cannot
	// advance between the check and the enqueue.
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.IsLatest(userID, d.Generation) {
		s.logger.DebugContext(ctx, "Dropping stale dashboard push", log.FieldUserID, userID, log.FieldGeneration, d.Generation)
		return
	}
	s.notifier.Notify(userID, EventDashboard, d)
}
