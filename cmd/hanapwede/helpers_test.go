package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const testCorpusJSON = `[
  {
    "post_id": 1,
    "job_title": "Accounting Clerk",
    "job_description": "Accounting clerk needed",
    "skills_required": "excel, bookkeeping",
    "category": "Finance",
    "tags": ["finance", "office"],
    "disability_tags": ["Visual Impairment", "Hearing"],
    "posted_by": 10,
    "comp_name": "Ledger Co",
    "job_fair_id": 5
  },
  {
    "post_id": 2,
    "job_title": "Warehouse Packer",
    "job_description": "Warehouse packer",
    "skills_required": "lifting, stamina",
    "tags": ["logistics"],
    "disability_tags": ["Mobility"],
    "posted_by": 11
  }
]`

const testCandidatesJSON = `[
  {"user_id": 19, "preferences": ["finance", "admin"], "disability_type": "Visual Impairment", "skills": "excel, accounting"},
  {"user_id": 20}
]`

const testCandidateJSON = `{"user_id": 19, "preferences": ["finance", "admin"], "disability_type": "Visual Impairment", "skills": "excel, accounting"}`

// execute runs the root command in-process with fresh flag state and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// resetFlags restores every flag to its default. Flag variables are package
// globals, so values would otherwise leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// buildSnapshot imports the test corpus and candidates through the CLI.
func buildSnapshot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	corpus := writeFile(t, dir, "corpus.json", testCorpusJSON)
	candidates := writeFile(t, dir, "candidates.json", testCandidatesJSON)
	db := filepath.Join(dir, "snapshot.db")

	_, err := execute(t, "snapshot", "import", "--corpus", corpus, "--candidates", candidates, "--db", db)
	require.NoError(t, err)
	return db
}
