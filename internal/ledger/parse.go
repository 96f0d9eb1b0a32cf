package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseScore parses a final score of the form "<intA>-<intB>". Both
// parts must be non-negative integers.
func ParseScore(score string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(score), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: score %q is not of the form a-b", ErrMalformedRecord, score)
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: score %q has a non-numeric part", ErrMalformedRecord, score)
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: score %q has a non-numeric part", ErrMalformedRecord, score)
	}
	if a < 0 || b < 0 {
		return 0, 0, fmt.Errorf("%w: score %q has a negative part", ErrMalformedRecord, score)
	}
	return a, b, nil
}

// ParseCounts parses a comma-separated "name:count" list into a
// per-name mapping. An empty input yields an empty mapping; a segment
// missing the ':' separator, a non-numeric count or a negative count
// is a malformed record, never a silent zero.
func ParseCounts(text string) (map[string]int, error) {
	counts := make(map[string]int)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "-" {
		return counts, nil
	}
	for _, item := range strings.Split(trimmed, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, value, found := strings.Cut(item, ":")
		if !found {
			return nil, fmt.Errorf("%w: entry %q is missing the ':' separator", ErrMalformedRecord, item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q has a non-numeric count", ErrMalformedRecord, item)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: entry %q has a negative count", ErrMalformedRecord, item)
		}
		counts[strings.TrimSpace(name)] = n
	}
	return counts, nil
}
