package agg

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/cadence/core/algo"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/klauspost/compress/zstd"
)

// currentCacheVersion defines the version of the snapshot schema
const currentCacheVersion = 1

// maxSnapshotAge bounds how long a snapshot stays valid.
const maxSnapshotAge = 7 * 24 * time.Hour

// EncodeAll and DecodeAll are safe for concurrent use on shared instances.
var (
	snapshotEncoder, _ = zstd.NewWriter(nil)
	snapshotDecoder, _ = zstd.NewReader(nil)
)

// CachedDetectSessions returns the session decomposition for the configured window,
// reusing a stored snapshot when one exists for the current HEAD.
func CachedDetectSessions(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.SessionDetectionResult, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetSessionStore()
	}
	if store == nil {
		// Fallback to direct computation
		return detectSessions(ctx, cfg, client)
	}

	key := generateCacheKey(ctx, cfg, client)

	// Check for cache hit
	if result := checkCacheHit(store, key); result != nil {
		return result, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, client, store, key)
}

// detectSessions fetches the commit log and runs the detector over it.
func detectSessions(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.SessionDetectionResult, error) {
	commits, err := FetchCommits(ctx, client, cfg.RepoPath, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return nil, err
	}
	result := algo.DetectSessions(commits, cfg.GapMinutes)
	return &result, nil
}

// checkCacheHit attempts to retrieve and validate a cached snapshot
func checkCacheHit(store contract.CacheStore, key string) *schema.SessionDetectionResult {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > maxSnapshotAge {
		return nil // Cache miss (stale or version mismatch)
	}
	result, err := decodeSnapshot(data)
	if err != nil {
		return nil
	}
	return result
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.CacheStore, key string) (*schema.SessionDetectionResult, error) {
	result, err := detectSessions(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	if data, err := encodeSnapshot(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store session snapshot", err)
		}
	}
	return result, nil
}

func encodeSnapshot(result *schema.SessionDetectionResult) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return snapshotEncoder.EncodeAll(raw, nil), nil
}

func decodeSnapshot(data []byte) (*schema.SessionDetectionResult, error) {
	raw, err := snapshotDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, err
	}
	var result schema.SessionDetectionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// generateCacheKey creates a unique key based on analysis parameters.
// The window bounds are keyed exactly as detectSessions uses them.
func generateCacheKey(ctx context.Context, cfg *contract.Config, client contract.GitClient) string {

	// Include repo hash to invalidate cache when repository state changes
	repoHash, err := client.GetRepoHash(ctx, cfg.RepoPath)
	if err != nil {
		repoHash = ""
	}

	key := fmt.Sprintf("%s:%d:%d:%g:%s",
		cfg.RepoPath,
		cfg.StartTime.Unix(),
		cfg.EndTime.Unix(),
		cfg.GapMinutes,
		repoHash,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
