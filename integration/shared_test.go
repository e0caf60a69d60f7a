//go:build basic || database

// Package integration contains end-to-end tests for the cadence binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database tests need Docker: go test -tags database ./integration
package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedCadencePath holds the path to a shared cadence binary built once for all tests.
	sharedCadencePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getCadenceBinary returns the path to the cadence binary, building it once if needed.
func getCadenceBinary() string {
	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "cadence-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		cadencePath := filepath.Join(tempDir, "cadence")
		buildCmd := exec.Command("go", "build", "-o", cadencePath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build cadence: %v\n%s", err, out))
		}

		sharedCadencePath = cadencePath
	})

	return sharedCadencePath
}

// fixtureCommit is one commit of the fixture repository.
type fixtureCommit struct {
	when    string // ISO8601 author and committer date
	author  string
	file    string
	content string
}

// fixtureCommits form two sessions at a 120 minute gap: 09:00-09:40 and 14:20-16:05.
var fixtureCommits = []fixtureCommit{
	{"2025-03-04T09:00:00+00:00", "Dana Park", "main.go", "package main\n\nfunc main() {}\n"},
	{"2025-03-04T09:40:00+00:00", "Lee Okafor", "store_test.go", "package main\n\nimport \"testing\"\n\nfunc TestStore(t *testing.T) {}\n"},
	{"2025-03-04T14:20:00+00:00", "Dana Park", "utils.go", strings.Repeat("// helper\n", 260)},
	{"2025-03-04T16:05:00+00:00", "Dana Park", "store.go", "package main\n\ntype Store struct{}\n"},
}

// newFixtureRepo creates a git repository with fixed commit dates.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	gitRun(t, dir, nil, "init", "--quiet")
	for _, c := range fixtureCommits {
		require.NoError(t, os.WriteFile(filepath.Join(dir, c.file), []byte(c.content), 0o644))
		gitRun(t, dir, nil, "add", c.file)
		env := []string{
			"GIT_AUTHOR_NAME=" + c.author,
			"GIT_AUTHOR_EMAIL=dev@example.com",
			"GIT_AUTHOR_DATE=" + c.when,
			"GIT_COMMITTER_NAME=" + c.author,
			"GIT_COMMITTER_EMAIL=dev@example.com",
			"GIT_COMMITTER_DATE=" + c.when,
		}
		gitRun(t, dir, env, "commit", "--quiet", "-m", "add "+c.file)
	}
	return dir
}

func gitRun(t *testing.T, dir string, env []string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// runCadence runs the binary in dir and returns its stdout. Stderr is logged on failure.
// A private HOME keeps the default SQLite files out of the real home directory.
func runCadence(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getCadenceBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
	cmd.Env = append(cmd.Env, env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStderr: %s", cmd.String(), stderr.String())
	}
	return stdout.String(), err
}
