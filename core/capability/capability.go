// Package capability describes optional numeric implementations compiled into
// the binary. A Set is computed once at startup and passed explicitly to the
// forecasting and density-model entry points, so tests can inject any
// combination of flags.
package capability

import (
	"fmt"
	"sort"
	"strings"
)

// Name identifies an optional capability.
type Name string

const (
	// SmoothingExtended enables Holt trend smoothing.
	SmoothingExtended Name = "smoothing-extended"
	// BoostingExtended enables regularized second-order boosting.
	BoostingExtended Name = "boosting-extended"
)

// Known lists every capability the binary understands.
var Known = []Name{SmoothingExtended, BoostingExtended}

// Parse validates a capability name.
func Parse(s string) (Name, error) {
	n := Name(strings.TrimSpace(strings.ToLower(s)))
	for _, k := range Known {
		if k == n {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// Set is an immutable set of enabled capabilities. The zero value has every
// capability disabled.
type Set struct {
	flags map[Name]bool
}

// New returns a Set with the given capabilities enabled.
func New(names ...Name) Set {
	flags := make(map[Name]bool, len(names))
	for _, n := range names {
		flags[n] = true
	}
	return Set{flags: flags}
}

// All enables every known capability.
func All() Set { return New(Known...) }

// None disables every capability.
func None() Set { return Set{} }

// Has reports whether n is enabled.
func (s Set) Has(n Name) bool { return s.flags[n] }

// Without returns a copy of s with the given capabilities removed.
func (s Set) Without(names ...Name) Set {
	flags := make(map[Name]bool, len(s.flags))
	for k, v := range s.flags {
		flags[k] = v
	}
	for _, n := range names {
		delete(flags, n)
	}
	return Set{flags: flags}
}

// Names returns the enabled capabilities sorted by name.
func (s Set) Names() []Name {
	out := make([]Name, 0, len(s.flags))
	for n, ok := range s.flags {
		if ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Set) String() string {
	names := s.Names()
	if len(names) == 0 {
		return "none"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ",")
}

// Probe reports whether an optional implementation is linked in.
type Probe func() bool

// Detect evaluates probes once and removes any capability listed in
// disabled. Unknown names in disabled are reported as an error.
func Detect(probes map[Name]Probe, disabled []string) (Set, error) {
	var names []Name
	for _, k := range Known {
		if p, ok := probes[k]; ok && p != nil && p() {
			names = append(names, k)
		}
	}
	set := New(names...)
	for _, d := range disabled {
		n, err := Parse(d)
		if err != nil {
			return Set{}, err
		}
		set = set.Without(n)
	}
	return set, nil
}
