package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/snapshot"
)

func TestSnapshotImportCommand(t *testing.T) {
	dir := t.TempDir()
	corpus := writeFile(t, dir, "corpus.json", testCorpusJSON)
	candidates := writeFile(t, dir, "candidates.json", testCandidatesJSON)
	db := filepath.Join(dir, "nested", "snapshot.db")

	out, err := execute(t, "snapshot", "import", "--corpus", corpus, "--candidates", candidates, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 jobs and 2 candidates")

	store, err := snapshot.Open(context.Background(), db)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	jobs, err := store.ListJobPostings(context.Background(), ranking.Scope{})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	ids, err := store.ListCandidateIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{19, 20}, ids)
}

func TestSnapshotImportCommand_CorpusOnly(t *testing.T) {
	dir := t.TempDir()
	corpus := writeFile(t, dir, "corpus.json", testCorpusJSON)

	out, err := execute(t, "snapshot", "import", "--corpus", corpus, "--db", filepath.Join(dir, "snapshot.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 jobs and 0 candidates")
}

func TestSnapshotImportCommand_MissingDB(t *testing.T) {
	corpus := writeFile(t, t.TempDir(), "corpus.json", testCorpusJSON)

	_, err := execute(t, "snapshot", "import", "--corpus", corpus)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestSnapshotImportCommand_InvalidCandidates(t *testing.T) {
	dir := t.TempDir()
	corpus := writeFile(t, dir, "corpus.json", testCorpusJSON)
	candidates := writeFile(t, dir, "candidates.json", `[{"skills": "excel"}]`)

	_, err := execute(t, "snapshot", "import", "--corpus", corpus, "--candidates", candidates, "--db", filepath.Join(dir, "snapshot.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")
}
