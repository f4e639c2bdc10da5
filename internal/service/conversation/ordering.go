package conversation

import (
	"fmt"
	"strings"
)

// Ordering controls how replies to overlapping submits are appended.
type Ordering int

const (
	// Serialized sends one request at a time in submission order, so replies
	// are appended in the same order as the user turns that caused them.
	Serialized Ordering = iota
	// Unordered lets requests overlap; replies are appended as they resolve.
	Unordered
)

// ParseOrdering maps a configuration value to an Ordering. Empty means Serialized.
func ParseOrdering(raw string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "serialized", "fifo":
		return Serialized, nil
	case "unordered", "concurrent":
		return Unordered, nil
	default:
		return Serialized, fmt.Errorf("unknown ordering %q", raw)
	}
}

func (o Ordering) String() string {
	if o == Unordered {
		return "unordered"
	}
	return "serialized"
}
