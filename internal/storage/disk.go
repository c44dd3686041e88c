package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores files under a local root directory. The API serves them
// back from the /media/ URL prefix.
type Disk struct {
	root    string
	baseURL string
}

// NewDisk creates a disk store rooted at the given directory, creating it
// if needed. baseURL is the externally visible origin of this API.
func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Disk{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes the file under the key, creating parent directories as
// needed.
func (d *Disk) Save(ctx context.Context, key string, data io.Reader, contentType string) error {
	path, err := d.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", key, err)
	}

	if _, err := io.Copy(file, data); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("write file %s: %w", key, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", key, err)
	}

	return nil
}

// Delete removes the file. A missing file is not an error.
func (d *Disk) Delete(ctx context.Context, key string) error {
	path, err := d.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file %s: %w", key, err)
	}

	return nil
}

// URL returns the path-based URL the API serves this file from.
func (d *Disk) URL(key string) string {
	return d.baseURL + "/media/" + key
}

// Root returns the directory files are stored under.
func (d *Disk) Root() string {
	return d.root
}

// Path maps a key to its absolute on-disk path, with the same escape
// checks as Save and Delete. The media handler serves files through this.
func (d *Disk) Path(key string) (string, error) {
	return d.resolve(key)
}

// resolve maps a key to an absolute path, rejecting anything that could
// escape the root.
func (d *Disk) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}
