package core

import (
	"fmt"
	"time"
)

var monthNames = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Period is one calendar month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthName returns the lowercase pt-BR month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// PeriodOf returns the month containing t in loc.
func PeriodOf(t time.Time, loc *time.Location) Period {
	t = inLocation(t, loc)
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return ErrInvalidMonth
	}
	return nil
}

// Contains reports whether t falls inside the month, boundaries included.
func (p Period) Contains(t time.Time, loc *time.Location) bool {
	t = inLocation(t, loc)
	return t.Year() == p.Year && t.Month() == p.Month
}

func (p Period) Next() Period {
	return p.shift(1)
}

func (p Period) Prev() Period {
	return p.shift(-1)
}

func (p Period) shift(months int) Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Label returns e.g. "janeiro de 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s de %d", MonthName(p.Month), p.Year)
}

// FormatDayMonth returns e.g. "5 de janeiro".
func FormatDayMonth(t time.Time, loc *time.Location) string {
	t = inLocation(t, loc)
	return fmt.Sprintf("%d de %s", t.Day(), MonthName(t.Month()))
}

// FormatShortDate returns dd/mm/yy.
func FormatShortDate(t time.Time, loc *time.Location) string {
	return inLocation(t, loc).Format("02/01/06")
}

// inLocation treats a nil location as UTC.
func inLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t.UTC()
	}
	return t.In(loc)
}
