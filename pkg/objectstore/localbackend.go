package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/boreledger/boreledger/pkg/apperr"
)

// LocalBackend maps keys to paths under a root directory. Directories are
// created lazily on write.
type LocalBackend struct {
	root string
}

// NewLocalBackend returns a backend rooted at root. The root is created if
// absent.
func NewLocalBackend(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperr.Transport("local backend init", err)
	}
	return &LocalBackend{root: root}, nil
}

func (l *LocalBackend) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *LocalBackend) Put(ctx context.Context, key string, body []byte, contentType string, allowOverwrite bool) error {
	if !allowOverwrite {
		if err := guardOverwrite(ctx, l, key); err != nil {
			return err
		}
	}
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return apperr.Transport("local put mkdir", err)
	}
	if err := os.WriteFile(p, body, 0o644); err != nil {
		return apperr.Transport("local put write", err)
	}
	return nil
}

func (l *LocalBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("key %q", key)
		}
		return nil, apperr.Transport("local get", err)
	}
	return data, nil
}

func (l *LocalBackend) Head(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, apperr.Transport("local head", err)
}

func (l *LocalBackend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.Walk(l.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == l.root {
				return filepath.SkipDir
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, apperr.Transport("local list", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (l *LocalBackend) Ping(ctx context.Context) error {
	_, err := os.Stat(l.root)
	if err != nil {
		return apperr.Transport("local ping", err)
	}
	return nil
}
