package geo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sunscout/sunscout/internal/feasibility"
)

// addressPattern matches a "Street, City, ST" address: at least one comma,
// then a city, then a two-letter state abbreviation.
var addressPattern = regexp.MustCompile(`(?i)^.+,\s*[\w\s.'-]+,\s*[A-Z]{2}$`)

// ParseRequest extracts the jurisdiction from a raw address and builds the
// immutable request handed to the orchestrator. Returns an error when the
// address does not follow the expected "123 Main St, City, ST" shape.
func ParseRequest(address string) (feasibility.Request, error) {
	addr := strings.TrimSpace(address)

	if !addressPattern.MatchString(addr) {
		return feasibility.Request{}, fmt.Errorf(
			"geo: invalid address format %q: expected \"123 Main St, City, ST\"", address)
	}

	parts := strings.Split(addr, ",")
	fields := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			fields = append(fields, s)
		}
	}
	if len(fields) < 3 {
		return feasibility.Request{}, fmt.Errorf(
			"geo: invalid address format %q: expected \"123 Main St, City, ST\"", address)
	}

	return feasibility.Request{
		Address: addr,
		City:    fields[len(fields)-2],
		State:   strings.ToUpper(fields[len(fields)-1]),
	}, nil
}
