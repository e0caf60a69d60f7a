package contract

import (
	"context"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock type for the GitClient interface.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetCommitLog implements the GitClient interface.
func (m *MockGitClient) GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error) {
	ret := m.Called(ctx, repoPath, startTime, endTime)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// IsWorkingTreeClean implements the GitClient interface.
func (m *MockGitClient) IsWorkingTreeClean(ctx context.Context, repoPath string) (bool, error) {
	ret := m.Called(ctx, repoPath)
	return ret.Bool(0), ret.Error(1)
}

// ListFilesAtRef implements the GitClient interface.
func (m *MockGitClient) ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error) {
	ret := m.Called(ctx, repoPath, ref)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// MockFileScanner is a mock type for the FileScanner interface.
type MockFileScanner struct {
	mock.Mock
}

var _ FileScanner = &MockFileScanner{} // Compile-time check

// ListFiles implements the FileScanner interface.
func (m *MockFileScanner) ListFiles(ctx context.Context, root string) ([]string, error) {
	ret := m.Called(ctx, root)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// ReadFile implements the FileScanner interface.
func (m *MockFileScanner) ReadFile(root string, path string) (schema.FileRecord, error) {
	ret := m.Called(root, path)
	rec, _ := ret.Get(0).(schema.FileRecord)
	return rec, ret.Error(1)
}
