package rate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a request budget over a fixed period.
type Rate struct {
	Limit  int
	Period time.Duration
}

// IsZero reports whether the rate is unset.
func (r Rate) IsZero() bool {
	return r.Limit == 0 && r.Period == 0
}

func (r Rate) String() string {
	switch r.Period {
	case time.Second:
		return fmt.Sprintf("%d/s", r.Limit)
	case time.Minute:
		return fmt.Sprintf("%d/m", r.Limit)
	case time.Hour:
		return fmt.Sprintf("%d/h", r.Limit)
	case 24 * time.Hour:
		return fmt.Sprintf("%d/d", r.Limit)
	default:
		return fmt.Sprintf("%d/%s", r.Limit, r.Period)
	}
}

var periods = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// Parse parses a "count/period" rate string where period is one of
// s, m, h, d. Rates are validated when a client record is saved, so a
// parse failure must never be reachable from the request path.
func Parse(s string) (Rate, error) {
	count, period, ok := strings.Cut(s, "/")
	if !ok {
		return Rate{}, fmt.Errorf("%w: %q must be count/period", ErrInvalidRate, s)
	}

	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("%w: count %q must be a positive integer", ErrInvalidRate, count)
	}

	d, ok := periods[period]
	if !ok {
		return Rate{}, fmt.Errorf("%w: unknown period %q", ErrInvalidRate, period)
	}

	return Rate{Limit: n, Period: d}, nil
}

// UserClientIdent builds the throttle identity for a request authenticated
// with a per-client token.
func UserClientIdent(userID, clientName string) string {
	return "user-" + userID + ".client-" + clientName
}

// AddrIdent builds the fallback throttle identity for anonymous callers.
func AddrIdent(addr string) string {
	return "addr-" + addr
}
