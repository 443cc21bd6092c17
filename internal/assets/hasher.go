package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// hashLength is the number of hex characters embedded in hashed filenames.
const hashLength = 8

var ErrSourceRequired = errors.New("assets: source path required")

// HashedFile pairs file content with its content-addressed filename. Used
// when the same bytes must be written to two logical locations (chart data
// endpoint and the public dataset cache).
type HashedFile struct {
	Content  []byte
	FileName string
}

// Option configures a hashed copy.
type Option func(*copyConfig)

type copyConfig struct {
	prefix string
}

// WithPrefix namespaces the destination filename: `prefix.name.hash.ext`.
// Block plugins use this to keep their assets from colliding with core files.
func WithPrefix(prefix string) Option {
	return func(cfg *copyConfig) {
		cfg.prefix = strings.TrimSpace(prefix)
	}
}

// ContentHash returns the short deterministic digest embedded in filenames.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:hashLength]
}

// HashedName inserts the content hash before the final extension:
// `core.min.js` becomes `core.min.<hash>.js`.
func HashedName(name string, content []byte) string {
	hash := ContentHash(content)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if ext == "" {
		return base + "." + hash
	}
	return base + "." + hash + ext
}

// ReadFileAndHash loads a file and computes its content-addressed filename
// without writing anything.
func ReadFileAndHash(src string) (*HashedFile, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrSourceRequired
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", src, err)
	}
	return &HashedFile{
		Content:  content,
		FileName: HashedName(filepath.Base(src), content),
	}, nil
}

// CopyFileHashed copies src into destDir under its content-addressed name
// and returns that name. The write is atomic (temp file plus rename) so a
// crash never leaves a partial file under the final name. An existing
// destination is left untouched: identical content collides safely by
// construction.
func CopyFileHashed(src, destDir string, opts ...Option) (string, error) {
	cfg := copyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	hashed, err := ReadFileAndHash(src)
	if err != nil {
		return "", err
	}

	name := hashed.FileName
	if cfg.prefix != "" {
		name = cfg.prefix + "." + name
	}

	target := filepath.Join(destDir, name)
	if _, err := os.Stat(target); err == nil {
		return name, nil
	}

	tmp, err := os.CreateTemp(destDir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("assets: stage %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(hashed.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("assets: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("assets: close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("assets: move %s: %w", name, err)
	}
	return name, nil
}
