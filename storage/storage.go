package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/ngodesk/formflow/form"
)

var reUnsafe = regexp.MustCompile(`[^\w.\-]+`)

// Local stores uploaded files under a root directory, laid out as
// bucket/owner/submission/filename. It returns paths relative to the root;
// building absolute URLs is the caller's business.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Upload satisfies the form.Storage contract.
func (l *Local) Upload(ctx context.Context, f form.StagedFile, bucketKey, ownerID, resourceID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Name == "" {
		return "", errors.New("storage: file has no name")
	}

	rel := filepath.Join(sanitize(bucketKey), sanitize(ownerID), sanitize(resourceID), sanitize(f.Name))
	abs := filepath.Join(l.root, rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.Wrap(err, "storage: create upload dir")
	}
	if err := os.WriteFile(abs, f.Data, 0o644); err != nil {
		return "", errors.Wrap(err, "storage: write file")
	}

	return filepath.ToSlash(rel), nil
}

// Open reads back a stored file by its relative path. Paths escaping the
// root are rejected.
func (l *Local) Open(rel string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, errors.New("storage: invalid path")
	}
	data, err := os.ReadFile(filepath.Join(l.root, clean))
	if err != nil {
		return nil, errors.Wrap(err, "storage: read file")
	}
	return data, nil
}

func sanitize(part string) string {
	part = strings.TrimSpace(part)
	part = reUnsafe.ReplaceAllLiteralString(part, "_")
	if part == "" {
		return "_"
	}
	return part
}
