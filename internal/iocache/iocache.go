// Package iocache persists session snapshots and tracked analysis runs.
package iocache

import (
	"sync"

	"github.com/huangsam/cadence/internal/contract"
)

// CacheStoreManager manages the session cache and the analysis store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	sessions     contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetSessionStore returns the session snapshot CacheStore.
func (mgr *CacheStoreManager) GetSessionStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.sessions
}

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
