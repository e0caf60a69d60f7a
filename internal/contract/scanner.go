package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/cadence/schema"
	"github.com/zeebo/xxh3"
)

// RepoScanner lists tracked files through git and reads them from the working tree.
type RepoScanner struct {
	client     GitClient
	pathFilter string
	excludes   []string
}

var _ FileScanner = &RepoScanner{} // Compile-time check

// NewRepoScanner creates a scanner that applies the path filter and excludes to every listing.
func NewRepoScanner(client GitClient, pathFilter string, excludes []string) *RepoScanner {
	return &RepoScanner{client: client, pathFilter: pathFilter, excludes: excludes}
}

// ListFiles implements the FileScanner interface.
// Only files tracked at HEAD are listed, so ignored and untracked files never reach the scorer.
func (s *RepoScanner) ListFiles(ctx context.Context, root string) ([]string, error) {
	files, err := s.client.ListFilesAtRef(ctx, root, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	kept := make([]string, 0, len(files))
	for _, f := range files {
		if s.pathFilter != "" && !strings.HasPrefix(f, s.pathFilter) {
			continue
		}
		if ShouldIgnore(f, s.excludes) {
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}

// ReadFile implements the FileScanner interface.
// Invalid UTF-8 sequences are replaced so the heuristics always see text.
func (s *RepoScanner) ReadFile(root string, path string) (schema.FileRecord, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		return schema.FileRecord{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "�")
	}
	return NewFileRecord(path, content), nil
}

// NewFileRecord builds a FileRecord from text. The line count is the number
// of segments after splitting on "\n", so a trailing newline adds one.
func NewFileRecord(path, content string) schema.FileRecord {
	return schema.FileRecord{
		Path:        path,
		Content:     content,
		Lines:       strings.Count(content, "\n") + 1,
		Fingerprint: Fingerprint(content),
	}
}

// Fingerprint returns the xxh3 hash of content in hex.
func Fingerprint(content string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(content))
}
