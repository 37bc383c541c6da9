package ux

import (
	"os"
	"path/filepath"
)

// DiscoverDir searches for a .taskplan directory starting at start and
// walking up to the enclosing git root. It returns "" when none exists.
func DiscoverDir(start string) string {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}

		// Stop at git root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return ""
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DiscoverConfigFile returns the config file to load: the project's
// .taskplan/<filename>, else ~/.taskplan/<filename>. It returns "" when
// neither exists.
func DiscoverConfigFile(start, filename string) string {
	if dir := DiscoverDir(start); dir != "" {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DirName, filename)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
