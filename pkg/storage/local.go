// Package storage provides publish destinations for assembled chart
// websites. LocalStorage covers single-host deployments; CDN and object
// store backends implement the same contract in host applications.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chartpub/chartpub/pkg/interfaces"
)

var ErrRootRequired = errors.New("storage: root directory required")

// LocalStorage publishes chart builds into a directory tree rooted at a
// local path: {root}/{chart_id}/{version}/. The returned URL joins the
// configured base URL with the same layout.
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage constructs a filesystem-backed publish destination.
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrRootRequired
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// Move places the build's files under the versioned destination and
// returns its public URL. Files are moved one at a time; the build
// directory itself stays behind for the caller's cleanup.
func (s *LocalStorage) Move(ctx context.Context, req interfaces.MoveRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest := s.versionDir(req.ChartID, req.Version)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("storage: create %s: %w", dest, err)
	}

	for _, name := range req.FileMap {
		src := filepath.Join(req.OutDir, name)
		if err := moveFile(src, filepath.Join(dest, name)); err != nil {
			return "", fmt.Errorf("storage: move %s: %w", name, err)
		}
	}

	if s.baseURL == "" {
		return "", nil
	}
	return s.baseURL + "/" + req.ChartID + "/" + strconv.Itoa(req.Version) + "/", nil
}

// Retire removes a published version directory.
func (s *LocalStorage) Retire(ctx context.Context, chartID string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.RemoveAll(s.versionDir(chartID, version))
}

func (s *LocalStorage) versionDir(chartID string, version int) string {
	return filepath.Join(s.root, chartID, strconv.Itoa(version))
}

// moveFile renames when possible and falls back to copy-and-remove when
// source and destination live on different filesystems, which is the
// normal case for builds assembled under the system temp directory.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

var _ interfaces.PublishStorage = (*LocalStorage)(nil)
