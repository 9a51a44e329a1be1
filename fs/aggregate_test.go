package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/mdcrawl"
	"github.com/fwojciec/mdcrawl/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAggregator_Aggregate(t *testing.T) {
	t.Parallel()

	t.Run("concatenates artifacts in lexicographic order", func(t *testing.T) {
		t.Parallel()

		// Given two artifacts written in reverse order
		dir := t.TempDir()
		root := filepath.Join(dir, "site")
		writeFile(t, root, "b/index.md", "Y")
		writeFile(t, root, "a/index.md", "X")
		dest := filepath.Join(dir, "site.md")

		// When aggregating
		result, err := fs.NewAggregator().Aggregate(context.Background(), root, dest)

		// Then the combined document lists them by path
		require.NoError(t, err)
		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "# a/index.md\n\nX\n\n# b/index.md\n\nY\n\n", string(content))
		assert.Equal(t, 2, result.Files)
		assert.Equal(t, len(content), result.Bytes)
		assert.Equal(t, dest, result.Path)
	})

	t.Run("orders by full path bytes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(dir, "site")
		writeFile(t, root, "a/index.md", "dir")
		writeFile(t, root, "a.md", "file")
		writeFile(t, root, "B.md", "upper")
		dest := filepath.Join(dir, "site.md")

		_, err := fs.NewAggregator().Aggregate(context.Background(), root, dest)

		require.NoError(t, err)
		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "# B.md\n\nupper\n\n# a.md\n\nfile\n\n# a/index.md\n\ndir\n\n", string(content))
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(dir, "site")
		writeFile(t, root, "example.com/index.md", "home")
		writeFile(t, root, "example.com/docs/intro.md", "intro")
		writeFile(t, root, "example.com/docs/api/index.md", "api")
		dest := filepath.Join(dir, "site.md")
		agg := fs.NewAggregator()

		_, err := agg.Aggregate(context.Background(), root, dest)
		require.NoError(t, err)
		first, err := os.ReadFile(dest)
		require.NoError(t, err)
		_, err = agg.Aggregate(context.Background(), root, dest)
		require.NoError(t, err)
		second, err := os.ReadFile(dest)
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	})

	t.Run("ignores non-markdown files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(dir, "site")
		writeFile(t, root, "index.md", "keep")
		writeFile(t, root, "notes.txt", "skip")
		writeFile(t, root, ".index.md.123.tmp", "skip")
		dest := filepath.Join(dir, "site.md")

		result, err := fs.NewAggregator().Aggregate(context.Background(), root, dest)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Files)
	})

	t.Run("replaces an existing destination", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(dir, "site")
		writeFile(t, root, "index.md", "new")
		dest := filepath.Join(dir, "site.md")
		require.NoError(t, os.WriteFile(dest, []byte("stale content that is longer"), 0o644))

		_, err := fs.NewAggregator().Aggregate(context.Background(), root, dest)

		require.NoError(t, err)
		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "# index.md\n\nnew\n\n", string(content))
	})

	t.Run("skips the destination inside the tree", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "index.md", "page")
		dest := filepath.Join(root, "combined.md")

		_, err := fs.NewAggregator().Aggregate(context.Background(), root, dest)
		require.NoError(t, err)
		result, err := fs.NewAggregator().Aggregate(context.Background(), root, dest)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Files)
	})

	t.Run("writes an empty document for an empty tree", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(dir, "site")
		require.NoError(t, os.Mkdir(root, 0o755))
		dest := filepath.Join(dir, "site.md")

		result, err := fs.NewAggregator().Aggregate(context.Background(), root, dest)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Files)
		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Empty(t, content)
	})

	t.Run("fails for a missing root and keeps the destination", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dest := filepath.Join(dir, "site.md")
		require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

		_, err := fs.NewAggregator().Aggregate(context.Background(), filepath.Join(dir, "missing"), dest)

		assert.Equal(t, mdcrawl.EAGGREGATE, mdcrawl.ErrorCode(err))
		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "previous", string(content))
	})

	t.Run("fails when root is a file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "site", "not a dir")

		_, err := fs.NewAggregator().Aggregate(context.Background(), filepath.Join(dir, "site"), filepath.Join(dir, "site.md"))

		assert.Equal(t, mdcrawl.EAGGREGATE, mdcrawl.ErrorCode(err))
	})
}
