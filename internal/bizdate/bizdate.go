// Package bizdate expands a CLI-supplied [from,to] business-date range
// into the ordered, inclusive sequence the workflow engine iterates.
package bizdate

import (
	"time"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
)

// cliLayout is the external YYYYMMDD form used on the command line and
// in object-store paths. recordLayout is the YYYY.MM.DD form stamped
// into records.
const (
	cliLayout    = "20060102"
	recordLayout = "2006.01.02"
)

// Date wraps a business day and renders it in either external form.
type Date struct {
	t time.Time
}

// Parse reads a YYYYMMDD string into a Date, failing with ConfigError
// on malformed input.
func Parse(s string) (Date, error) {
	t, err := time.Parse(cliLayout, s)
	if err != nil {
		return Date{}, errs.Config("DATE", s, "malformed business date, want YYYYMMDD", err)
	}
	return Date{t: t}, nil
}

// CLIString renders the date as YYYYMMDD.
func (d Date) CLIString() string { return d.t.Format(cliLayout) }

// RecordString renders the date as YYYY.MM.DD, the form stamped into
// records.
func (d Date) RecordString() string { return d.t.Format(recordLayout) }

// Equal reports whether two dates denote the same calendar day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) addDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Range expands from/to (both YYYYMMDD) into an ordered, inclusive,
// ascending list of business dates. The calendar is naive: every
// calendar day in range is included, with no holiday or weekend
// skipping. Fails with ConfigError on malformed input or from > to.
func Range(from, to string) ([]Date, error) {
	start, err := Parse(from)
	if err != nil {
		return nil, err
	}
	end, err := Parse(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, errs.Config("DATE", from, "from date is after to date", nil)
	}

	var out []Date
	for d := start; !d.After(end); d = d.addDays(1) {
		out = append(out, d)
	}
	return out, nil
}
