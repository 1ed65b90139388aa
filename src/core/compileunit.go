package core

import "sort"

// CompileUnit is one object file plus the source it's compiled from and the
// header dependencies the compiler reported for it.
//
// Invariant: ObjectTarget is unique within a Graph; Source ends in a
// recognized source extension; HeaderDeps contains only recognized header
// paths taken from the compiler's dependency output.
type CompileUnit struct {
	ObjectTarget string
	Source       string
	HeaderDeps   map[string]struct{}
	IsTest       bool
}

// SortedHeaderDeps returns HeaderDeps as a sorted slice, the form every
// compile edge's implicit_inputs must take (§4.4).
func (c *CompileUnit) SortedHeaderDeps() []string {
	deps := make([]string, 0, len(c.HeaderDeps))
	for d := range c.HeaderDeps {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps
}
