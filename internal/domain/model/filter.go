package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrOverlappingCheckNames is returned when a check name is both required and ignored.
var ErrOverlappingCheckNames = errors.New("check names cannot be both required and ignored")

// FilterSettings is the user's readiness policy over check names.
type FilterSettings struct {
	RequiredChecks []string
	IgnoredChecks  []string
}

// Validate returns ErrOverlappingCheckNames (wrapped with the offending names)
// when the two sets intersect.
func (f FilterSettings) Validate() error {
	ignored := f.IgnoredSet()
	var overlap []string
	for _, name := range f.RequiredChecks {
		if _, ok := ignored[name]; ok {
			overlap = append(overlap, name)
		}
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return fmt.Errorf("%w: %s", ErrOverlappingCheckNames, strings.Join(overlap, ", "))
	}
	return nil
}

// RequiredSet returns the required names as a set.
func (f FilterSettings) RequiredSet() map[string]struct{} {
	return toSet(f.RequiredChecks)
}

// IgnoredSet returns the ignored names as a set.
func (f FilterSettings) IgnoredSet() map[string]struct{} {
	return toSet(f.IgnoredChecks)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
