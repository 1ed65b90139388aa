// Representation of the build graph: the in-memory model ConfigureBuild
// assembles and Emitter serializes. One Graph is owned by a single configure
// pass; GraphBuilder is the mutating surface over it, reset at the start of
// each run.

package core

import (
	"sort"

	"github.com/cabinbuild/cabin/src/fs"
)

// Graph is the accumulated build description for one configure pass.
//
// Invariant: default_targets appears in some edge's outputs; test_targets
// are link outputs of test edges.
type Graph struct {
	Edges           []Edge
	CompileUnits    map[string]*CompileUnit
	DefaultTargets  []string
	TestTargets     []string
	HasBinary       bool
	HasLibrary      bool
}

// NewGraph returns an empty Graph, ready for one configure pass.
func NewGraph() *Graph {
	return &Graph{CompileUnits: map[string]*CompileUnit{}}
}

// GraphBuilder is the single-writer mutating surface over a Graph. The
// concurrency model (§5) guards every call through Lock/Unlock with one
// mutex shared with the build_obj_targets set; callers outside src/configure
// should treat GraphBuilder as single-threaded.
type GraphBuilder struct {
	graph          *Graph
	modulesEnabled bool
	stdModule      string
}

// SetModulesEnabled records that module support was wired in (§4.7) and
// names the phony alias every subsequently registered compile unit should
// order-only depend on.
func (b *GraphBuilder) SetModulesEnabled(stdModuleName string) {
	b.modulesEnabled = true
	b.stdModule = stdModuleName
}

// NewGraphBuilder wraps graph for mutation.
func NewGraphBuilder(graph *Graph) *GraphBuilder {
	return &GraphBuilder{graph: graph}
}

// Graph returns the underlying Graph.
func (b *GraphBuilder) Graph() *Graph { return b.graph }

// AddEdge appends edge to the graph. No deduplication is performed; the
// caller is responsible for the invariants in §3.
func (b *GraphBuilder) AddEdge(edge Edge) {
	b.graph.Edges = append(b.graph.Edges, edge)
}

// RegisterCompileUnit stores the CompileUnit and adds its cxx_compile edge
// (§4.4). extraFlags becomes the edge's "extra_flags" binding: "-DCABIN_TEST"
// when isTest, empty otherwise.
func (b *GraphBuilder) RegisterCompileUnit(objectTarget, source string, headerDeps map[string]struct{}, isTest bool) *CompileUnit {
	unit := &CompileUnit{
		ObjectTarget: objectTarget,
		Source:       source,
		HeaderDeps:   headerDeps,
		IsTest:       isTest,
	}
	b.graph.CompileUnits[objectTarget] = unit

	extraFlags := ""
	if isTest {
		extraFlags = "-DCABIN_TEST"
	}
	edge := Edge{
		Outputs:        []string{objectTarget},
		Rule:           RuleCxxCompile,
		Inputs:         []string{source},
		ImplicitInputs: unit.SortedHeaderDeps(),
		Bindings: []Binding{
			{Key: "out_dir", Value: fs.ParentDirOrDot(objectTarget)},
			{Key: "extra_flags", Value: extraFlags},
		},
	}
	if b.modulesEnabled {
		edge.OrderOnlyInputs = []string{b.stdModule}
	}
	b.AddEdge(edge)
	return unit
}

// AddPhony appends a "build name: phony inputs..." edge (e.g. the
// std-module alias). The all/tests aggregate lines are not added here;
// Emitter writes them directly.
func (b *GraphBuilder) AddPhony(name string, inputs []string) {
	b.AddEdge(Edge{
		Outputs: []string{name},
		Rule:    RulePhony,
		Inputs:  inputs,
	})
}

// SetDefaultTargets replaces the default-targets list.
func (b *GraphBuilder) SetDefaultTargets(targets []string) {
	b.graph.DefaultTargets = targets
}

// AddDefaultTarget appends one target to the default-targets list.
func (b *GraphBuilder) AddDefaultTarget(target string) {
	b.graph.DefaultTargets = append(b.graph.DefaultTargets, target)
}

// AddTestTarget appends target to test_targets. SortTestTargets must be
// called before emission to restore the sorted-ascending invariant (§4.4);
// concurrent callers append in whatever order tasks complete.
func (b *GraphBuilder) AddTestTarget(target string) {
	b.graph.TestTargets = append(b.graph.TestTargets, target)
}

// SortTestTargets sorts test_targets ascending, per §4.4/§5.
func (b *GraphBuilder) SortTestTargets() {
	sort.Strings(b.graph.TestTargets)
}

// Unit looks up a CompileUnit by object target, or nil if absent.
func (g *Graph) Unit(objectTarget string) *CompileUnit {
	return g.CompileUnits[objectTarget]
}

// UnitOrDie looks up a CompileUnit and panics with InternalInvariantError if
// it's absent — a referenced compile unit missing from the map is a
// programming bug, never a user-facing failure (§7).
func (g *Graph) UnitOrDie(objectTarget string) *CompileUnit {
	unit, present := g.CompileUnits[objectTarget]
	if !present {
		panic((&InternalInvariantError{Msg: "compile unit " + objectTarget + " referenced but not registered"}).Error())
	}
	return unit
}
