package newsroom

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"newsdesk-service/internal/media"
	"newsdesk-service/internal/models"
)

const (
	shortCodeLength   = 8
	shortCodeAttempts = 5
)

var pdfMagic = []byte("%PDF-")

type EpaperCommand struct {
	Title       string
	EditionDate time.Time
	Document    *Upload
	IsActive    bool
}

// PublishEpaper stores a PDF edition and assigns it a public id and a short
// link code.
func (s *Service) PublishEpaper(ctx context.Context, cmd EpaperCommand) (*models.Epaper, error) {
	if cmd.Document == nil || !bytes.HasPrefix(cmd.Document.Data, pdfMagic) {
		return nil, invalid("pdf", "must be a PDF document")
	}
	e := &models.Epaper{
		PublicID:    uuid.NewString(),
		Title:       strings.TrimSpace(cmd.Title),
		EditionDate: cmd.EditionDate,
		IsActive:    cmd.IsActive,
	}
	if e.EditionDate.IsZero() {
		e.EditionDate = s.now()
	}
	if err := s.check(e); err != nil {
		return nil, err
	}

	code, err := s.newShortCode(ctx)
	if err != nil {
		return nil, err
	}
	e.ShortCode = code

	name := cmd.Document.Name
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	stored, err := s.media.Save(media.EpaperDocuments, name, cmd.Document.Data)
	if err != nil {
		return nil, err
	}
	e.Document = stored

	if err := s.store.Create(ctx, e); err != nil {
		_ = s.media.Delete(stored)
		return nil, conflictOr(err)
	}
	s.logger.Info("epaper published", zap.String("id", e.PublicID), zap.String("short_code", e.ShortCode))
	return e, nil
}

func (s *Service) newShortCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < shortCodeAttempts; attempt++ {
		code := ShortID(shortCodeLength)
		exists, err := s.store.ShortCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: no free short code", ErrConflict)
}

func (s *Service) GetEpaper(ctx context.Context, publicID string) (*models.Epaper, error) {
	return s.store.GetEpaper(ctx, publicID)
}

func (s *Service) ListEpapers(ctx context.Context, limit int) ([]models.Epaper, error) {
	return s.store.ListEpapers(ctx, limit)
}

// OpenEpaper opens the edition's PDF for download and counts the download.
// The caller closes the file.
func (s *Service) OpenEpaper(ctx context.Context, publicID string) (*models.Epaper, afero.File, error) {
	e, err := s.store.GetEpaper(ctx, publicID)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.media.Open(e.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", e.Document, err)
	}
	if err := s.store.IncrementEpaperDownloads(ctx, e.ID); err != nil {
		s.logger.Warn("count download failed", zap.String("id", publicID), zap.Error(err))
	}
	return e, f, nil
}

// ResolveShortURL returns the edition a short code points to.
func (s *Service) ResolveShortURL(ctx context.Context, code string) (*models.Epaper, error) {
	return s.store.GetEpaperByShortCode(ctx, strings.TrimSpace(code))
}
