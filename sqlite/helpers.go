package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/mdcrawl"
)

// timeLayout keeps sub-second precision so rows written in the same
// second still order correctly.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendLimit appends a LIMIT clause to a query builder if limit is > 0.
func appendLimit(query *strings.Builder, args *[]any, limit int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
}

var states = map[string]mdcrawl.TargetState{
	mdcrawl.StatePending.String():      mdcrawl.StatePending,
	mdcrawl.StateInFlight.String():     mdcrawl.StateInFlight,
	mdcrawl.StateDone.String():         mdcrawl.StateDone,
	mdcrawl.StateFailed.String():       mdcrawl.StateFailed,
	mdcrawl.StateBlockedRetry.String(): mdcrawl.StateBlockedRetry,
}

func parseState(s string) (mdcrawl.TargetState, error) {
	state, ok := states[s]
	if !ok {
		return 0, fmt.Errorf("unknown target state %q", s)
	}
	return state, nil
}
