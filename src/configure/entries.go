package configure

import (
	"os"
	"path"
	"path/filepath"

	"github.com/cabinbuild/cabin/src/fs"
)

// discoverTopLevelEntries scans srcDir's immediate children (not recursive)
// for files whose stem is "main" or "lib" (§4.6 step 2).
func discoverTopLevelEntries(srcDir string) (mainPaths, libPaths []string, err error) {
	entries, readErr := os.ReadDir(srcDir)
	if readErr != nil {
		return nil, nil, readErr
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !fs.IsSource(name) {
			continue
		}
		full := fs.ToSlash(filepath.Join(srcDir, name))
		switch fs.Stem(name) {
		case "main":
			mainPaths = append(mainPaths, full)
		case "lib":
			libPaths = append(libPaths, full)
		}
	}
	return mainPaths, libPaths, nil
}

// warnMisplacedEntry logs (does not fail) when a source below the top of
// srcDir is named main.* or lib.* — it is still compiled as an ordinary
// library source (§4.6 step 5, §7 Warnings).
func warnMisplacedEntry(srcDir, source string) {
	stem := fs.Stem(source)
	if stem != "main" && stem != "lib" {
		return
	}
	if path.Dir(fs.ToSlash(source)) == fs.ToSlash(srcDir) {
		return
	}
	log.Warningf("%s found below the top of src/; it will be compiled as a regular source, not an entry point", source)
}
