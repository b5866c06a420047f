package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"github.com/shopspring/decimal"
)

// form reads typed values from submitted form fields. The first conversion
// failure is kept and returned by err; later reads still return zero values.
type form struct {
	values url.Values
	first  error
}

func newForm(values url.Values) *form {
	return &form{values: values}
}

func (f *form) fail(err error) {
	if f.first == nil {
		f.first = err
	}
}

func (f *form) err() error {
	return f.first
}

func (f *form) str(name string) string {
	return strings.TrimSpace(f.values.Get(name))
}

func (f *form) checked(name string) bool {
	return f.str(name) != ""
}

// int reads a whole number. Empty means 0.
func (f *form) int(name, label string) int {
	raw := f.str(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.fail(e.Invalid("%s must be a whole number.", label))
		return 0
	}
	return n
}

// id reads a required record identifier.
func (f *form) id(name string) uint {
	n, err := strconv.ParseUint(f.str(name), 10, 64)
	if err != nil || n == 0 {
		f.fail(e.Invalid("Invalid record id."))
		return 0
	}
	return uint(n)
}

// optionalID reads an identifier where empty means none.
func (f *form) optionalID(name string) *uint {
	if f.str(name) == "" {
		return nil
	}
	id := f.id(name)
	if id == 0 {
		return nil
	}
	return &id
}

// date reads a YYYY-MM-DD value as midnight UTC. Empty is the zero time.
func (f *form) date(name, label string) time.Time {
	raw := f.str(name)
	if raw == "" {
		return time.Time{}
	}
	day, err := query.DayStart(raw)
	if err != nil {
		f.fail(e.Invalid("%s must be a date (YYYY-MM-DD).", label))
		return time.Time{}
	}
	return day
}

func (f *form) optionalDate(name, label string) *time.Time {
	day := f.date(name, label)
	if day.IsZero() {
		return nil
	}
	return &day
}

// decimal reads an amount. Empty means zero; a decimal comma is accepted.
func (f *form) decimal(name, label string) decimal.Decimal {
	d := f.optionalDecimal(name, label)
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func (f *form) optionalDecimal(name, label string) *decimal.Decimal {
	raw := strings.ReplaceAll(f.str(name), ",", ".")
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		f.fail(e.Invalid("%s must be a number.", label))
		return nil
	}
	if d.IsNegative() {
		f.fail(e.Invalid("%s must not be negative.", label))
		return nil
	}
	return &d
}

// clientIP is the remote address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
