package core

import "github.com/cabinbuild/cabin/src/fs"

// CollectBinDepObjs extends accum in place with the transitive object-file
// closure reachable from headerDeps through the header→object mapping
// (§4.5).
//
// sourceStem is the compile unit's own stem; a header whose stem matches it
// is skipped so a test binary links its own (recompiled with -DCABIN_TEST)
// translation unit rather than pulling in the non-test object of the same
// name, which would otherwise produce duplicate symbols at link time.
//
// rootPath/buildOutPath/outBasePath are the same project-context paths
// PathMapper.MapHeaderToObj takes; buildObjTargets is the set of object
// targets actually registered this configure pass.
func CollectBinDepObjs(accum map[string]struct{}, rootPath, buildOutPath, outBasePath, sourceStem string, headerDeps map[string]struct{}, buildObjTargets map[string]struct{}, graph *Graph) {
	for header := range headerDeps {
		if stemOf(header) == sourceStem {
			continue
		}
		if !fs.IsHeader(header) {
			continue
		}
		objTarget, ok := fs.MapHeaderToObj(rootPath, buildOutPath, outBasePath, header)
		if !ok {
			continue
		}
		if _, known := buildObjTargets[objTarget]; !known {
			continue
		}
		if _, already := accum[objTarget]; already {
			continue
		}
		accum[objTarget] = struct{}{}
		unit := graph.UnitOrDie(objTarget)
		CollectBinDepObjs(accum, rootPath, buildOutPath, outBasePath, sourceStem, unit.HeaderDeps, buildObjTargets, graph)
	}
}

// stemOf returns the filename-without-extension of a forward-slash path.
func stemOf(p string) string {
	base := p
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			base = p[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
