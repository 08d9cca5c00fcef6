package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRebuildIndexesSupportedFiles(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "briefs.md", "Бриф фиксирует цели проекта.\n\nБюджет согласуется заранее.")
	writeDoc(t, dataDir, "checklist.txt", "Чек-лист по требованиям.")
	writeDoc(t, dataDir, "image.png", "binary noise")

	idx, err := New(t.TempDir(), 500)
	require.NoError(t, err)

	stats, err := idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 2, stats.ChunksCreated)
}

func TestRebuildAssignsOrdinalIDs(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "guide.md", "Первая часть.\n\nВторая часть.")

	idx, err := New(t.TempDir(), 20)
	require.NoError(t, err)

	_, err = idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	results := idx.Search("часть", 10)
	require.Len(t, results, 2)
	ids := []string{results[0].Chunk.ID, results[1].Chunk.ID}
	assert.Contains(t, ids, "guide.md_0")
	assert.Contains(t, ids, "guide.md_1")
	assert.Equal(t, "guide.md", results[0].Chunk.Source)
}

func TestRebuildSkipsEmptyFiles(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "empty.txt", "   \n\n  ")
	writeDoc(t, dataDir, "full.txt", "Содержимое.")

	idx, err := New(t.TempDir(), 500)
	require.NoError(t, err)

	stats, err := idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesIndexed)
}

func TestRebuildCreatesMissingDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "missing")

	idx, err := New(t.TempDir(), 500)
	require.NoError(t, err)

	stats, err := idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	assert.Zero(t, stats.FilesIndexed)
	assert.DirExists(t, dataDir)
}

func TestSnapshotSurvivesRestart(t *testing.T) {
	dataDir := t.TempDir()
	persistDir := t.TempDir()
	writeDoc(t, dataDir, "notes.txt", "Риски проекта описаны отдельно.")

	idx, err := New(persistDir, 500)
	require.NoError(t, err)
	_, err = idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	reopened, err := New(persistDir, 500)
	require.NoError(t, err)

	stats := reopened.Stats()
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, 1, stats.DistinctSources)
}

func TestCorruptSnapshotYieldsEmptyIndex(t *testing.T) {
	persistDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(persistDir, indexFileName), []byte("{not json"), 0o644))

	idx, err := New(persistDir, 500)
	require.NoError(t, err)

	assert.Zero(t, idx.Stats().TotalChunks)
}

func TestSearchRanksByRelevance(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "a.txt", "Бюджет проекта и снова бюджет.")
	writeDoc(t, dataDir, "b.txt", "Сроки утверждает заказчик.")
	writeDoc(t, dataDir, "c.txt", "Бюджет упоминается один раз среди многих других слов этого текста.")

	idx, err := New(t.TempDir(), 500)
	require.NoError(t, err)
	_, err = idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	results := idx.Search("бюджет", 10)

	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].Chunk.Source)
	assert.Equal(t, "c.txt", results[1].Chunk.Source)
}

func TestSearchHonorsTopK(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "a.txt", "проект раз")
	writeDoc(t, dataDir, "b.txt", "проект два")
	writeDoc(t, dataDir, "c.txt", "проект три")

	idx, err := New(t.TempDir(), 500)
	require.NoError(t, err)
	_, err = idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	assert.Len(t, idx.Search("проект", 2), 2)
}

func TestSearchEmptyQueryAndEmptyIndex(t *testing.T) {
	idx, err := New(t.TempDir(), 500)
	require.NoError(t, err)

	assert.Empty(t, idx.Search("", 3))
	assert.Empty(t, idx.Search("бюджет", 3))
}

func TestClear(t *testing.T) {
	dataDir := t.TempDir()
	persistDir := t.TempDir()
	writeDoc(t, dataDir, "a.txt", "Содержимое файла.")

	idx, err := New(persistDir, 500)
	require.NoError(t, err)
	_, err = idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	require.NoError(t, idx.Clear())
	assert.Zero(t, idx.Stats().TotalChunks)

	reopened, err := New(persistDir, 500)
	require.NoError(t, err)
	assert.Zero(t, reopened.Stats().TotalChunks)
}

func TestSearchIsDeterministic(t *testing.T) {
	dataDir := t.TempDir()
	writeDoc(t, dataDir, "a.txt", "Бриф проекта описывает цели и сроки.")
	writeDoc(t, dataDir, "b.txt", "Бриф помогает согласовать бюджет проекта.")
	writeDoc(t, dataDir, "c.txt", "Платформа выбирается под аудиторию проекта.")
	writeDoc(t, dataDir, "d.txt", "Бриф проекта фиксирует требования к срокам.")

	idx, err := New(t.TempDir(), 500)
	require.NoError(t, err)
	_, err = idx.Rebuild(context.Background(), dataDir)
	require.NoError(t, err)

	first := idx.Search("бриф проекта сроки", 10)
	second := idx.Search("бриф проекта сроки", 10)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}
