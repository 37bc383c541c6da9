package ux

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverDir(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	nested := filepath.Join(project, "sub", "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(project, DirName), 0o755))

	assert.Equal(t, filepath.Join(project, DirName), DiscoverDir(nested))
}

func TestDiscoverDir_StopsAtGitRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, DirName), 0o755))
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	assert.Empty(t, DiscoverDir(repo))
}

func TestDiscoverConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	project := t.TempDir()
	assert.Empty(t, DiscoverConfigFile(project, "config.yaml"))

	dir := filepath.Join(project, DirName)
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner: {}\n"), 0o644))

	assert.Equal(t, path, DiscoverConfigFile(project, "config.yaml"))
}

func TestMissionFile(t *testing.T) {
	dir := t.TempDir()
	_, err := MissionFile(dir)
	assert.ErrorContains(t, err, "no mission file found")

	nested := filepath.Join(dir, DirName, "mission.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0o755))
	require.NoError(t, os.WriteFile(nested, []byte("{}"), 0o644))
	got, err := MissionFile(dir)
	require.NoError(t, err)
	assert.Equal(t, nested, got)

	top := filepath.Join(dir, "mission.yml")
	require.NoError(t, os.WriteFile(top, []byte("root: a"), 0o644))
	got, err = MissionFile(dir)
	require.NoError(t, err)
	assert.Equal(t, top, got)
}
