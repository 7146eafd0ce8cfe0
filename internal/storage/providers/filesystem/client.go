// Package filesystem implements the object store on the local disk. Objects
// live under a root directory and are served by the HTTP layer from a static
// route, so the public URL is just the base path plus the object path.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kuttab/kuttab/internal/storage"
)

var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid object path")
)

// Client stores objects as plain files under Root.
type Client struct {
	root       string
	publicBase string
}

// New creates a filesystem-backed object store rooted at root. publicBase is
// the URL prefix the HTTP layer serves the root directory from, e.g.
// "/uploads".
func New(root, publicBase string) (*Client, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Client{
		root:       root,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}, nil
}

// resolve maps an object path to a filesystem path, rejecting anything that
// would escape the root.
func (c *Client) resolve(objectPath string) (string, error) {
	cleaned := path.Clean("/" + objectPath)
	if cleaned == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(c.root, filepath.FromSlash(cleaned)), nil
}

func (c *Client) Upload(_ context.Context, objectPath string, content io.Reader, overwrite bool) error {
	target, err := c.resolve(objectPath)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return ErrObjectExists
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	// Write to a temp file first so a failed upload never leaves a partial
	// object behind
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return os.Rename(tmp.Name(), target)
}

func (c *Client) Open(_ context.Context, objectPath string) (io.ReadCloser, error) {
	target, err := c.resolve(objectPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

func (c *Client) Delete(_ context.Context, objectPath string) error {
	target, err := c.resolve(objectPath)
	if err != nil {
		return err
	}

	err = os.Remove(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Client) Exists(_ context.Context, objectPath string) (bool, error) {
	target, err := c.resolve(objectPath)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	dir, err := c.resolve(prefix)
	if err != nil {
		return nil, err
	}

	var objects []storage.ObjectInfo
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		objects = append(objects, storage.ObjectInfo{
			Path:       filepath.ToSlash(rel),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

func (c *Client) PublicURL(objectPath string) string {
	return c.publicBase + path.Clean("/"+objectPath)
}

// StoragePath converts a public URL back to the object path, or "" when the
// URL does not point into this store.
func (c *Client) StoragePath(publicURL string) string {
	if !strings.HasPrefix(publicURL, c.publicBase+"/") {
		return ""
	}
	return strings.TrimPrefix(publicURL, c.publicBase+"/")
}

// Root returns the root directory objects are stored under. The HTTP layer
// mounts its static file route here.
func (c *Client) Root() string {
	return c.root
}

var _ storage.Client = (*Client)(nil)
