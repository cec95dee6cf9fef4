package vtutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/internal/utils/fsutil"
)

// CacheMode determines how reports are cached
type CacheMode string

const (
	// CacheModeNone disables caching
	CacheModeNone CacheMode = "none"

	// CacheModeMemory stores cache in memory
	CacheModeMemory CacheMode = "memory"

	// CacheModeFile stores cache in files
	CacheModeFile CacheMode = "file"
)

// CacheStorage defines the interface for cache storage backends
type CacheStorage interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, bool, error)

	// Set stores a value in the cache
	Set(key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error

	// Clear removes all values from the cache
	Clear() error
}

// NewCache returns the storage for mode. dir is only used by
// CacheModeFile.
func NewCache(mode CacheMode, dir string) (CacheStorage, error) {
	switch mode {
	case CacheModeNone, "":
		return nil, nil
	case CacheModeMemory:
		return NewMemoryCache(), nil
	case CacheModeFile:
		fc, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		if err := fc.CleanExpiredEntries(); err != nil {
			logger.LogWarn("Failed to clean expired cache entries", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return fc, nil
	default:
		return nil, fmt.Errorf("%w: unsupported cache mode: %s", errors.ErrInvalidArgument, mode)
	}
}

// cacheEntry represents a single cached item
type cacheEntry struct {
	Value      []byte
	Expiration time.Time
}

// MemoryCache implements an in-memory cache storage
type MemoryCache struct {
	data  map[string]*cacheEntry
	mutex sync.RWMutex
	now   func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*cacheEntry),
		now:  time.Now,
	}
}

// Get retrieves a value from the memory cache
func (c *MemoryCache) Get(key string) ([]byte, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists || c.now().After(entry.Expiration) {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set stores a value in the memory cache
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &cacheEntry{
		Value:      value,
		Expiration: c.now().Add(ttl),
	}
	return nil
}

// Delete removes a value from the memory cache
func (c *MemoryCache) Delete(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Clear removes all values from the memory cache
func (c *MemoryCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]*cacheEntry)
	return nil
}

// FileCache implements a file-based cache storage
type FileCache struct {
	basePath string
	mutex    sync.RWMutex
}

// NewFileCache creates a new file-based cache
func NewFileCache(basePath string) (*FileCache, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: cache directory not set", errors.ErrInvalidArgument)
	}
	if err := fsutil.CreateDirIfNotExists(basePath); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileCache{basePath: basePath}, nil
}

// generateCacheFilePath generates a filesystem-safe cache file path
func (c *FileCache) generateCacheFilePath(key string) string {
	return filepath.Join(c.basePath, fmt.Sprintf("%x", []byte(key))+".cache")
}

// readEntry reads and decodes a cache file. A corrupt file is removed.
func readEntry(path string) (*cacheEntry, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(fileData, &entry); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("corrupt cache file: %w", err)
	}
	return &entry, nil
}

// Get retrieves a value from the file cache
func (c *FileCache) Get(key string) ([]byte, bool, error) {
	filePath := c.generateCacheFilePath(key)

	fileMutex := fsutil.GetPathMutex(filePath)
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if !fsutil.FileExists(filePath) {
		return nil, false, nil
	}

	entry, err := readEntry(filePath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}

	if time.Now().After(entry.Expiration) {
		os.Remove(filePath)
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set stores a value in the file cache
func (c *FileCache) Set(key string, value []byte, ttl time.Duration) error {
	filePath := c.generateCacheFilePath(key)

	fileMutex := fsutil.GetPathMutex(filePath)
	fileMutex.Lock()
	defer fileMutex.Unlock()

	fileData, err := json.Marshal(cacheEntry{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}
	return nil
}

// Delete removes a value from the file cache
func (c *FileCache) Delete(key string) error {
	filePath := c.generateCacheFilePath(key)

	fileMutex := fsutil.GetPathMutex(filePath)
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes all values from the file cache
func (c *FileCache) Clear() error {
	return c.sweep(func(*cacheEntry) bool { return true })
}

// CleanExpiredEntries removes expired and corrupt entries from the cache
func (c *FileCache) CleanExpiredEntries() error {
	now := time.Now()
	return c.sweep(func(e *cacheEntry) bool { return now.After(e.Expiration) })
}

func (c *FileCache) sweep(remove func(*cacheEntry) bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	files, err := filepath.Glob(filepath.Join(c.basePath, "*.cache"))
	if err != nil {
		return fmt.Errorf("failed to list cache files: %w", err)
	}

	for _, file := range files {
		fileMutex := fsutil.GetPathMutex(file)
		fileMutex.Lock()

		entry, err := readEntry(file)
		switch {
		case err != nil:
			logger.LogWarn(fmt.Sprintf("Dropped cache file %s", file), map[string]interface{}{
				"error": err.Error(),
			})
		case remove(entry):
			if err := os.Remove(file); err != nil {
				logger.LogWarn(fmt.Sprintf("Failed to delete cache file %s", file), map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		fileMutex.Unlock()
	}
	return nil
}
