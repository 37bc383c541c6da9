package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-project and per-user settings directory
const DirName = ".taskplan"

// MissionFileNames are tried in order when no mission file is given
var MissionFileNames = []string{"mission.yaml", "mission.yml", "mission.json"}

// MissionFile finds the mission to plan when none was named: the first of
// MissionFileNames in dir, then in dir/.taskplan.
func MissionFile(dir string) (string, error) {
	for _, base := range []string{dir, filepath.Join(dir, DirName)} {
		for _, name := range MissionFileNames {
			path := filepath.Join(base, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("no mission file found in %s (looked for %v); pass one with --file", dir, MissionFileNames)
}
