package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gofinance/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"Transações", "2024 Transações"},
		{"  Transações ", "2024 Transações"},
		{"2023 Transações", "2023 Transações"},
		{"1800 Notes", "2024 1800 Notes"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := yearPrefixedName(tc.base, 2024); got != tc.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestTransactionRow(t *testing.T) {
	at := time.Date(2024, 3, 9, 1, 0, 0, 0, time.UTC)
	brt := time.FixedZone("BRT", -3*60*60)

	row, err := transactionRow("u1", core.Transaction{ID: "tx-1", Name: "Mercado", Amount: "40.5", Type: core.Expense, Category: "Alimentação", Date: at}, brt)
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	want := []any{"08/03/2024", "Mercado", "Alimentação", "Saída", "-40.50", "u1", "tx-1"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("column %d = %v, want %v", i, row[i], want[i])
		}
	}

	row, err = transactionRow("u1", core.Transaction{ID: "tx-2", Amount: "1500", Type: core.Income, Date: at}, time.UTC)
	if err != nil || row[3] != "Entrada" || row[4] != "1500.00" {
		t.Fatalf("income row = %v, %v", row, err)
	}

	if _, err := transactionRow("u1", core.Transaction{ID: "x", Amount: "abc", Type: core.Income}, time.UTC); err == nil {
		t.Fatal("expected malformed amount error")
	}
	if _, err := transactionRow("u1", core.Transaction{ID: "x", Amount: "1", Type: "other"}, time.UTC); err == nil {
		t.Fatal("expected invalid type error")
	}
}

func TestAppendTransaction(t *testing.T) {
	var (
		mu      sync.Mutex
		gotPath string
		gotBody gsheet.ValueRange
		gotOpt  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotOpt = r.URL.Query().Get("valueInputOption")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"'2024 Transações'!A7:G7"}}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	c := NewWithService(svc, Config{SpreadsheetID: "sheet-1"}, nil)

	tx := core.Transaction{ID: "tx-1", Name: "Salário", Amount: "100", Type: core.Income, Category: "Salário", Date: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	ref, err := c.AppendTransaction(context.Background(), "u1", tx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "'2024 Transações'!A7:G7" {
		t.Fatalf("ref = %q", ref)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-1/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotOpt != "USER_ENTERED" {
		t.Fatalf("valueInputOption = %q", gotOpt)
	}
	if len(gotBody.Values) != 1 || gotBody.Values[0][6] != "tx-1" {
		t.Fatalf("unexpected body %+v", gotBody.Values)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected missing spreadsheet error")
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: "/non/existent.json"}, nil); err == nil {
		t.Fatal("expected read error")
	}
}
