package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layout used by most tests:
// a/a.txt a/b.txt b/a.txt b/b.txt a.txt b.txt
func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"a", "b"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0755))
	}
	for _, file := range []string{"a/a.txt", "a/b.txt", "b/a.txt", "b/b.txt", "a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(file)), []byte(file), 0644))
	}
	return root
}

func archivePaths(t *testing.T, root string, includes, excludes []string) []string {
	t.Helper()
	entries, err := Build(root, includes, excludes)
	require.NoError(t, err)
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.ArchivePath)
	}
	return paths
}

func TestBuildFiltering(t *testing.T) {
	root := makeTree(t)

	t.Run("no filters keeps everything", func(t *testing.T) {
		paths := archivePaths(t, root, nil, nil)
		assert.ElementsMatch(t,
			[]string{"a/a.txt", "a/b.txt", "b/a.txt", "b/b.txt", "a.txt", "b.txt"},
			paths)
	})

	t.Run("exclude matches single-segment names only", func(t *testing.T) {
		paths := archivePaths(t, root, nil, []string{"*.txt"})
		assert.ElementsMatch(t,
			[]string{"a/a.txt", "a/b.txt", "b/a.txt", "b/b.txt"},
			paths)
	})

	t.Run("include restricts to matching globs", func(t *testing.T) {
		paths := archivePaths(t, root, []string{"a/*"}, nil)
		assert.ElementsMatch(t, []string{"a/a.txt", "a/b.txt"}, paths)
	})

	t.Run("includes are OR'ed", func(t *testing.T) {
		paths := archivePaths(t, root, []string{"a/*", "b/*"}, nil)
		assert.ElementsMatch(t,
			[]string{"a/a.txt", "a/b.txt", "b/a.txt", "b/b.txt"},
			paths)
	})

	t.Run("excludes apply after includes", func(t *testing.T) {
		paths := archivePaths(t, root, []string{"a/*"}, []string{"a/b.txt"})
		assert.ElementsMatch(t, []string{"a/a.txt"}, paths)
	})

	t.Run("empty include list excludes everything", func(t *testing.T) {
		paths := archivePaths(t, root, []string{}, nil)
		assert.Empty(t, paths)
	})
}

func TestBuildSingleFileRoot(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "only.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("hello"), 0644))

	entries, err := Build(filePath, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// single-file roots strip the parent directory
	assert.Equal(t, "only.txt", entries[0].ArchivePath)
	assert.Equal(t, filePath, entries[0].FilePath)
}

func TestBuildSymlinksAreEntriesNotFollowed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "real"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "f.txt"), []byte("data"), 0644))
	require.NoError(t, os.Symlink("real", filepath.Join(root, "link")))

	paths := archivePaths(t, root, nil, nil)
	// the symlink itself appears, the files behind it do not
	assert.ElementsMatch(t, []string{"real/f.txt", "link"}, paths)
}

func TestBuildGlobsMatchArchiveRelativePaths(t *testing.T) {
	// the absolute source path contains the temp dir name; globs must
	// not see it
	root := makeTree(t)
	paths := archivePaths(t, root, []string{filepath.Base(root) + "/**"}, nil)
	assert.Empty(t, paths)
}

func TestBuildErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := Build(filepath.Join(t.TempDir(), "nope"), nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid include glob", func(t *testing.T) {
		_, err := Build(t.TempDir(), []string{"[unclosed"}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "include globs")
	})

	t.Run("invalid exclude glob", func(t *testing.T) {
		_, err := Build(t.TempDir(), nil, []string{"[unclosed"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "exclude globs")
	})
}

func TestBuildWalkOrderIsStable(t *testing.T) {
	root := makeTree(t)
	first := archivePaths(t, root, nil, nil)
	second := archivePaths(t, root, nil, nil)
	assert.Equal(t, first, second)
}
