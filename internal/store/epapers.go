package store

import (
	"context"

	"gorm.io/gorm"

	"newsdesk-service/internal/models"
)

func (s *Store) GetEpaper(ctx context.Context, publicID string) (*models.Epaper, error) {
	var e models.Epaper
	err := s.db.WithContext(ctx).Where("public_id = ? AND is_active = ?", publicID, true).First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *Store) GetEpaperByShortCode(ctx context.Context, code string) (*models.Epaper, error) {
	var e models.Epaper
	err := s.db.WithContext(ctx).Where("short_code = ? AND is_active = ?", code, true).First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *Store) ListEpapers(ctx context.Context, limit int) ([]models.Epaper, error) {
	limit, _ = pageBounds(limit, 0)
	var out []models.Epaper
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("edition_date DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) IncrementEpaperDownloads(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Model(&models.Epaper{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
	return translate(err)
}

func (s *Store) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Epaper{}).Where("short_code = ?", code).Count(&n).Error
	return n > 0, translate(err)
}
