package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectBinDepObjsTransitive(t *testing.T) {
	graph := NewGraph()
	builder := NewGraphBuilder(graph)
	builder.RegisterCompileUnit("out/foo.o", "/proj/src/foo.cc", map[string]struct{}{"/proj/src/bar.hpp": {}}, false)
	builder.RegisterCompileUnit("out/bar.o", "/proj/src/bar.cc", nil, false)

	buildObjTargets := map[string]struct{}{"out/foo.o": {}, "out/bar.o": {}, "out/main.o": {}}
	accum := map[string]struct{}{}

	CollectBinDepObjs(accum, "/proj", "out", "/proj/out", "main", map[string]struct{}{"/proj/src/foo.hpp": {}}, buildObjTargets, graph)

	assert.Contains(t, accum, "out/foo.o")
	assert.Contains(t, accum, "out/bar.o")
}

func TestCollectBinDepObjsSkipsOwnStem(t *testing.T) {
	graph := NewGraph()
	accum := map[string]struct{}{}
	buildObjTargets := map[string]struct{}{"out/util.o": {}}

	// A header named util.hpp would normally map to out/util.o, but since
	// source_stem is "util" it must be skipped (avoids linking the non-test
	// object alongside the test variant).
	CollectBinDepObjs(accum, "/proj", "out", "/proj/out", "util", map[string]struct{}{"/proj/src/util.hpp": {}}, buildObjTargets, graph)

	assert.NotContains(t, accum, "out/util.o")
}

func TestCollectBinDepObjsSkipsUnbuiltHeaders(t *testing.T) {
	graph := NewGraph()
	accum := map[string]struct{}{}
	buildObjTargets := map[string]struct{}{}

	CollectBinDepObjs(accum, "/proj", "out", "/proj/out", "main", map[string]struct{}{"/proj/src/external.hpp": {}}, buildObjTargets, graph)

	assert.Empty(t, accum)
}

func TestCollectBinDepObjsIsCycleSafe(t *testing.T) {
	graph := NewGraph()
	builder := NewGraphBuilder(graph)
	// foo.o and bar.o mutually "depend" on each other's header via the
	// mapping; memoization by accum membership must terminate.
	builder.RegisterCompileUnit("out/foo.o", "/proj/src/foo.cc", map[string]struct{}{"/proj/src/bar.hpp": {}}, false)
	builder.RegisterCompileUnit("out/bar.o", "/proj/src/bar.cc", map[string]struct{}{"/proj/src/foo.hpp": {}}, false)

	buildObjTargets := map[string]struct{}{"out/foo.o": {}, "out/bar.o": {}}
	accum := map[string]struct{}{}

	CollectBinDepObjs(accum, "/proj", "out", "/proj/out", "main", map[string]struct{}{"/proj/src/foo.hpp": {}}, buildObjTargets, graph)

	assert.Len(t, accum, 2)
}
