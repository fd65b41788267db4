// cmd/analyze/storage_fetch.go
package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/stockwise/internal/storage"
	"github.com/andresuchdata/stockwise/pkg/logger"
)

// inputFetcher downloads CSV inputs from object storage into a local
// directory before a run.
type inputFetcher struct {
	client  storage.ObjectStorage
	destDir string
}

// fetch lists the objects under prefix and downloads the ones whose relative
// path matches a requested name. Names absent from the listing are skipped;
// the caller decides whether a missing input is fatal. Returns name to local
// path for everything downloaded.
func (f *inputFetcher) fetch(ctx context.Context, prefix string, names []string) (map[string]string, error) {
	listPrefix := strings.TrimSpace(prefix)
	objects, err := f.client.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
	}

	available := make(map[string]string, len(objects))
	for _, obj := range objects {
		available[objectRelativePath(listPrefix, obj.Key)] = obj.Key
	}

	local := make(map[string]string, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key, ok := available[name]
		if !ok {
			logger.Log.Warn().Str("name", name).Str("prefix", listPrefix).Msg("input object not found, skipping")
			continue
		}
		dest := filepath.Join(f.destDir, name)
		if err := f.client.DownloadObject(ctx, key, dest); err != nil {
			return nil, err
		}
		local[name] = dest
	}

	return local, nil
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}
