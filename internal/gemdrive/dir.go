// Package gemdrive implements the domain repositories on top of a drive client.
package gemdrive

import (
	"context"
	"strings"

	"github.com/ganot/entreate/internal/drive"
)

// Dir is a directory of a drive addressed by paths relative to it. Directory
// paths end in "/" and "" is the directory itself.
type Dir struct {
	client *drive.Client
	root   string
}

// NewDir returns the directory at root, relative to the client's base URL.
// An empty root is the base itself.
func NewDir(client *drive.Client, root string) *Dir {
	root = strings.TrimPrefix(root, "/")
	if root != "" && !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return &Dir{client: client, root: root}
}

// Root returns the directory path relative to the drive base.
func (d *Dir) Root() string {
	return d.root
}

// URL returns the absolute URL of rel.
func (d *Dir) URL(rel string) string {
	return d.client.Resolve(d.root + strings.TrimPrefix(rel, "/"))
}

// ListDir returns the child names of dir in listing order.
func (d *Dir) ListDir(ctx context.Context, dir string) ([]string, error) {
	listing, err := d.client.List(ctx, d.URL(dir))
	if err != nil {
		return nil, mapError("listing "+d.root+dir, err)
	}
	return listing.Names(), nil
}

// CreateDir creates dir and its ancestors, failing if dir exists.
func (d *Dir) CreateDir(ctx context.Context, dir string) error {
	if err := d.client.MakeDir(ctx, d.URL(dir)); err != nil {
		return mapError("creating "+d.root+dir, err)
	}
	return nil
}

// ReadFile reads a file.
func (d *Dir) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := d.client.Get(ctx, d.URL(path))
	if err != nil {
		return nil, mapError("reading "+d.root+path, err)
	}
	return data, nil
}

// WriteFile writes a file. Without overwrite an existing file is a conflict.
func (d *Dir) WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error {
	if err := d.client.Put(ctx, d.URL(path), data, overwrite); err != nil {
		return mapError("writing "+d.root+path, err)
	}
	return nil
}
