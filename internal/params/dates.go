package params

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dromara/carbon/v2"
)

var ErrInvalidDate = errors.New("invalid date")

// ParseDate accepts the loose date formats admins send from forms
// ("2026-03-01", "2026-03-01 18:00", RFC 3339, ...). Blank input yields
// nil. Values without a zone are read as UTC.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	c := carbon.Parse(s, carbon.UTC)
	if c.IsInvalid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t := c.StdTime()
	return &t, nil
}

// EndOfDay moves a bare date ("2026-03-01") to its last second so an end
// bound covers the whole day. Other inputs are returned unchanged.
func EndOfDay(raw string, t *time.Time) *time.Time {
	raw = strings.TrimSpace(raw)
	if t == nil || len(raw) != len("2006-01-02") {
		return t
	}
	c := carbon.Parse(raw, carbon.UTC)
	if c.IsInvalid() {
		return t
	}
	end := c.EndOfDay().StdTime()
	return &end
}
