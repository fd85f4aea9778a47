package store

import (
	"context"
	"errors"

	"newsdesk-service/internal/models"
)

func (s *Store) ListSocialAccounts(ctx context.Context) ([]models.SocialAccount, error) {
	var out []models.SocialAccount
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (s *Store) SettingsByKey(ctx context.Context, key models.SettingKey) ([]models.Setting, error) {
	var out []models.Setting
	err := s.db.WithContext(ctx).Where(&models.Setting{Key: key}).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

// GetAboutUs returns the first about page, or nil when none was written yet.
func (s *Store) GetAboutUs(ctx context.Context) (*models.AboutUs, error) {
	var a models.AboutUs
	err := translate(s.db.WithContext(ctx).Order("id ASC").First(&a).Error)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
