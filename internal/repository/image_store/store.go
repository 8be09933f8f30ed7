package image_store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"run_the_numbers/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxStemLen = 40

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

var allowedExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// store картинки призов на локальном диске, раздаются по urlPrefix
type store struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

func NewImageStore(dir, urlPrefix string) (repository.ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &store{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/"), now: time.Now}, nil
}

// ObjectName <unixms>-<uuid>-<slug><ext>
func ObjectName(original string, now time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(stem), "-"), "-")
	if len(slug) > maxStemLen {
		slug = slug[:maxStemLen]
	}
	if slug == "" {
		slug = "prize"
	}
	return fmt.Sprintf("%d-%s-%s%s", now.UnixMilli(), uuid.NewString(), slug, ext), nil
}

func (s *store) Save(ctx context.Context, name string, src io.Reader) (string, error) {
	objectName, err := ObjectName(name, s.now())
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, objectName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + objectName, nil
}
