package store

import (
	"context"

	"newsdesk-service/internal/models"
)

func (s *Store) ListHomeBanners(ctx context.Context) ([]models.HomeBanner, error) {
	var out []models.HomeBanner
	err := s.db.WithContext(ctx).
		Preload("Article").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) ListTagBanners(ctx context.Context) ([]models.TagBanner, error) {
	var out []models.TagBanner
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

// ListAdvertisements returns active ads, optionally only those of one size.
func (s *Store) ListAdvertisements(ctx context.Context, size models.BannerSize) ([]models.Advertisement, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if size != "" {
		q = q.Where("size = ?", size)
	}
	var out []models.Advertisement
	err := q.Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

func (s *Store) GetAdvertisement(ctx context.Context, id uint) (*models.Advertisement, error) {
	var ad models.Advertisement
	if err := s.db.WithContext(ctx).First(&ad, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ad, nil
}

func (s *Store) ListLiveUpdates(ctx context.Context) ([]models.LiveUpdate, error) {
	var out []models.LiveUpdate
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}
