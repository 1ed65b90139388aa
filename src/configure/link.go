package configure

import (
	"sort"
	"strings"

	"github.com/cabinbuild/cabin/src/core"
)

// archiveName derives the ar_archive output filename for packageName (§4.6
// step 8): packageName itself plus ".a" if it already starts with "lib",
// otherwise "lib" prepended.
func archiveName(packageName string) string {
	if strings.HasPrefix(packageName, "lib") {
		return packageName + ".a"
	}
	return "lib" + packageName + ".a"
}

// sortedKeys returns the keys of a string-set, sorted ascending — the form
// every link/archive edge's Inputs must take (§5 ordering guarantees).
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clangModuleLinkExtras returns the link-edge input and extra_flags binding
// a Clang-family module build adds to the binary's link edge (§4.6 step 7):
// the PCM as an input and an extra_flags binding of -fmodule-file=std=<pcm>.
// The cxx_link rule's command does not expand $extra_flags, so the binding
// appears in targets.ninja but not on the link command line.
func clangModuleLinkExtras(info core.ModuleInfo) (extraInput string, binding core.Binding, ok bool) {
	if !info.Enabled || !info.IsClangFamily {
		return "", core.Binding{}, false
	}
	return info.StdArtifactPath, core.Binding{Key: "extra_flags", Value: "-fmodule-file=std=" + info.StdArtifactPath}, true
}
