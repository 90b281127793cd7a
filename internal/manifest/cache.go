package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache memoizes manifest reads per result folder. Entries are keyed by the folder's
// modification stamp together with the manifest's, so adding a cell image or rewriting
// result.json invalidates them.
type Cache struct {
	cache *gocache.Cache
	log   *logger.Logger
}

// NewCache creates a cache; zero durations select the defaults.
func NewCache(expiration, cleanup time.Duration, log *logger.Logger) *Cache {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Cache{cache: gocache.New(expiration, cleanup), log: log.Component("manifest")}
}

// Metadata returns the grid shape of folderPath, reading it on a miss.
func (c *Cache) Metadata(folderPath string) (*Metadata, error) {
	key, err := stampKey("meta", folderPath)
	if err != nil {
		return nil, xyzerrors.NewRecoveryError(folderPath, err)
	}
	if value, found := c.cache.Get(key); found {
		if meta, ok := value.(*Metadata); ok {
			c.log.WithField("folder", folderPath).Debug("manifest cache hit")
			return cloneMetadata(meta), nil
		}
	}

	meta, err := Read(folderPath)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, cloneMetadata(meta))
	return meta, nil
}

// Document returns result.json as a generic document. Each call returns a fresh copy
// that the caller may modify.
func (c *Cache) Document(folderPath string) (map[string]any, error) {
	key, err := stampKey("doc", folderPath)
	if err != nil {
		return nil, err
	}
	if value, found := c.cache.Get(key); found {
		if data, ok := value.([]byte); ok {
			var doc map[string]any
			if err := codec.JSON.Unmarshal(data, &doc); err == nil && doc != nil {
				return doc, nil
			}
		}
	}

	path := filepath.Join(folderPath, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := codec.JSON.Unmarshal(data, &doc); err != nil {
		return nil, xyzerrors.NewParseError(path, 0, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	c.cache.SetDefault(key, data)
	return doc, nil
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.cache.Flush()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}

func stampKey(kind, folderPath string) (string, error) {
	dirInfo, err := os.Stat(folderPath)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s|%s|%d", kind, folderPath, dirInfo.ModTime().UnixNano())

	fileInfo, err := os.Stat(filepath.Join(folderPath, FileName))
	switch {
	case err == nil:
		key += fmt.Sprintf("|%d|%d", fileInfo.ModTime().UnixNano(), fileInfo.Size())
	case errors.Is(err, fs.ErrNotExist):
		key += "|-"
	default:
		return "", err
	}
	return key, nil
}

func cloneMetadata(m *Metadata) *Metadata {
	out := *m
	out.ValuesX = append([]string(nil), m.ValuesX...)
	out.ValuesY = append([]string(nil), m.ValuesY...)
	out.ValuesZ = append([]string{}, m.ValuesZ...)
	out.ZSlots = append([]int(nil), m.ZSlots...)
	return &out
}
