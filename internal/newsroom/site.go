package newsroom

import (
	"context"

	"newsdesk-service/internal/models"
)

// SiteContext is the data every page of the site needs.
type SiteContext struct {
	Categories     []models.Category      `json:"categories"`
	SocialAccounts []models.SocialAccount `json:"social_accounts"`
	HeaderSettings []models.Setting       `json:"header_settings"`
	BodySettings   []models.Setting       `json:"body_settings"`
	AboutUs        *models.AboutUs        `json:"about_us,omitempty"`
}

func (s *Service) Site(ctx context.Context) (*SiteContext, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	social, err := s.store.ListSocialAccounts(ctx)
	if err != nil {
		return nil, err
	}
	header, err := s.store.SettingsByKey(ctx, models.SettingHeader)
	if err != nil {
		return nil, err
	}
	body, err := s.store.SettingsByKey(ctx, models.SettingBody)
	if err != nil {
		return nil, err
	}
	about, err := s.store.GetAboutUs(ctx)
	if err != nil {
		return nil, err
	}
	return &SiteContext{
		Categories:     categories,
		SocialAccounts: social,
		HeaderSettings: header,
		BodySettings:   body,
		AboutUs:        about,
	}, nil
}
