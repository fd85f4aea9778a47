package media

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Upload prefixes under the media root.
const (
	NewsImages      = "news_images"
	BannerImages    = "banner_images"
	StoryCovers     = "webstories/cover_images"
	StorySlides     = "webstories/slides"
	EpaperDocuments = "epapers"
)

const (
	maxNameLength    = 100
	collisionRetries = 5
	fallbackStem     = "upload"
)

var ErrInvalidName = errors.New("media: invalid file name")

type Storage struct {
	fs      afero.Fs
	baseURL string
}

// NewStorage roots storage at root on the OS filesystem.
func NewStorage(root, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewStorageFs(afero.NewBasePathFs(afero.NewOsFs(), root), baseURL), nil
}

func NewStorageFs(fs afero.Fs, baseURL string) *Storage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Storage{fs: fs, baseURL: baseURL}
}

// Save writes data under prefix and returns the stored relative path. An
// existing file is never overwritten; a short random suffix is added instead.
func (s *Storage) Save(prefix, name string, data []byte) (string, error) {
	clean := cleanName(name)
	if clean == "" {
		return "", ErrInvalidName
	}
	if err := s.fs.MkdirAll(prefix, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", prefix, err)
	}

	candidate := path.Join(prefix, clean)
	for attempt := 0; ; attempt++ {
		exists, err := afero.Exists(s.fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		if attempt >= collisionRetries {
			return "", fmt.Errorf("media: no free name for %s", clean)
		}
		candidate = path.Join(prefix, withSuffix(clean, randomSuffix()))
	}

	if err := afero.WriteFile(s.fs, candidate, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", candidate, err)
	}
	return candidate, nil
}

func (s *Storage) Open(rel string) (afero.File, error) {
	if !validRel(rel) {
		return nil, ErrInvalidName
	}
	return s.fs.Open(rel)
}

func (s *Storage) ReadAll(rel string) ([]byte, error) {
	f, err := s.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Storage) Delete(rel string) error {
	if !validRel(rel) {
		return ErrInvalidName
	}
	err := s.fs.Remove(rel)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Storage) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + rel
}

// Fs exposes the underlying filesystem for serving stored files.
func (s *Storage) Fs() afero.Fs { return s.fs }

func validRel(rel string) bool {
	if rel == "" || path.IsAbs(rel) {
		return false
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	clean := b.String()
	ext := path.Ext(clean)
	if ext == "." {
		ext = ""
	}
	stem := strings.Trim(strings.TrimSuffix(clean, path.Ext(clean)), ".")
	if stem == "" {
		stem = fallbackStem
	}
	clean = stem + ext
	if len(clean) > maxNameLength {
		ext := path.Ext(clean)
		clean = clean[:maxNameLength-len(ext)] + ext
	}
	return clean
}

func withSuffix(name, suffix string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

func randomSuffix() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
