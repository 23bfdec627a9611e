// Package storage moves document files within the shared storage tree that
// this service and the backend both mount.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/legalarch/docai/internal/core/domain"
)

type Relocator struct {
	root string
}

func NewRelocator(root string) *Relocator {
	return &Relocator{root: filepath.Clean(root)}
}

// Relocate moves the document file named by hint (a path relative to the
// storage root) into targetFolder and returns the new root-relative path
// with forward slashes, as the backend stores paths.
func (r *Relocator) Relocate(docID int64, hint, targetFolder string) (string, error) {
	rel, err := r.safeRel(hint)
	if err != nil {
		return "", err
	}
	src := filepath.Join(r.root, rel)
	if _, err := os.Stat(src); err != nil {
		return "", domain.WrapError(domain.ErrNotFound, "relocate document file", err)
	}

	folderRel, err := r.safeRel(targetFolder)
	if err != nil {
		return "", err
	}
	dstDir := filepath.Join(r.root, folderRel)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("create target folder: %w", err)
	}

	dst := filepath.Join(dstDir, filepath.Base(src))
	if dst == src {
		return filepath.ToSlash(rel), nil
	}
	if _, err := os.Stat(dst); err == nil {
		dst = filepath.Join(dstDir, fmt.Sprintf("%d_%s", docID, filepath.Base(src)))
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("move document file: %w", err)
	}

	newRel, err := filepath.Rel(r.root, dst)
	if err != nil {
		return "", fmt.Errorf("relativize moved path: %w", err)
	}
	return filepath.ToSlash(newRel), nil
}

// safeRel rejects paths that would escape the storage root.
func (r *Relocator) safeRel(p string) (string, error) {
	p = strings.TrimSpace(filepath.FromSlash(p))
	if p == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "relocate document file",
			fmt.Errorf("empty path"))
	}
	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", domain.WrapError(domain.ErrInvalidInput, "relocate document file",
			fmt.Errorf("path %q escapes storage root", p))
	}
	return clean, nil
}
