package fs

import (
	"os"
	"path/filepath"
)

// IsUpToDate implements the incremental-regeneration short-circuit (spec
// §4.6): the named file under outBasePath is up to date iff it exists and
// its mtime is not older than every file under srcDir and the manifest
// file.
//
// It compares mtimes rather than content hashes: the question is only "has
// anything on disk changed since we last wrote this file". A newer manifest
// returns false before srcDir is walked; the walk itself visits every file
// under srcDir. A missing target or manifest, or a walk error, also counts
// as not up to date.
func IsUpToDate(outBasePath, filename, srcDir, manifestPath string) bool {
	target := filepath.Join(outBasePath, filename)
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	targetTime := info.ModTime()

	if mi, err := os.Stat(manifestPath); err != nil || mi.ModTime().After(targetTime) {
		if err != nil {
			return false
		}
		return false
	}

	upToDate := true
	walkErr := Walk(srcDir, func(name string, isDir bool) error {
		if isDir {
			return nil
		}
		info, err := os.Stat(name)
		if err != nil {
			return err
		}
		if info.ModTime().After(targetTime) {
			upToDate = false
		}
		return nil
	})
	if walkErr != nil {
		return false
	}
	return upToDate
}
