package newsroom

import (
	"context"
	"strings"

	"newsdesk-service/internal/media"
	"newsdesk-service/internal/models"
)

// AdCommand creates an advertisement when Previous is nil.
type AdCommand struct {
	Previous *models.Advertisement
	Title    string
	Link     string
	Size     models.BannerSize
	Image    *Upload
	IsActive bool
}

// SaveAdvertisement stores banner artwork unchanged; ad sizes are exact
// pixel formats agreed with advertisers.
func (s *Service) SaveAdvertisement(ctx context.Context, cmd AdCommand) (*models.Advertisement, error) {
	ad := &models.Advertisement{}
	if cmd.Previous != nil {
		copied := *cmd.Previous
		ad = &copied
	}
	ad.Title = strings.TrimSpace(cmd.Title)
	ad.Link = strings.TrimSpace(cmd.Link)
	ad.Size = cmd.Size
	ad.IsActive = cmd.IsActive

	if err := s.check(ad); err != nil {
		return nil, err
	}
	if cmd.Image != nil {
		if !validImageName(cmd.Image.Name) {
			return nil, invalid("image", "must be a jpg, jpeg, png or webp file")
		}
		stored, err := s.media.Save(media.BannerImages, cmd.Image.Name, cmd.Image.Data)
		if err != nil {
			return nil, err
		}
		ad.Image = stored
	}
	if err := s.save(ctx, ad, ad.ID); err != nil {
		return nil, err
	}
	return ad, nil
}

type HomeBannerCommand struct {
	Previous    *models.HomeBanner
	Title       string
	ArticleSlug string
	Image       *Upload
	IsActive    bool
}

func (s *Service) SaveHomeBanner(ctx context.Context, cmd HomeBannerCommand) (*models.HomeBanner, error) {
	b := &models.HomeBanner{}
	if cmd.Previous != nil {
		copied := *cmd.Previous
		b = &copied
	}
	b.Title = strings.TrimSpace(cmd.Title)
	b.IsActive = cmd.IsActive
	b.Article = nil

	a, err := s.store.GetArticleBySlug(ctx, cmd.ArticleSlug, false)
	if err != nil {
		return nil, invalid("article", "unknown article")
	}
	b.ArticleID = a.ID

	if cmd.Image != nil {
		if !validImageName(cmd.Image.Name) {
			return nil, invalid("image", "must be a jpg, jpeg, png or webp file")
		}
		stored, err := s.media.Save(media.BannerImages, cmd.Image.Name, cmd.Image.Data)
		if err != nil {
			return nil, err
		}
		b.Image = stored
	}
	if err := s.save(ctx, b, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) save(ctx context.Context, v any, id uint) error {
	if id == 0 {
		return conflictOr(s.store.Create(ctx, v))
	}
	return conflictOr(s.store.Update(ctx, v))
}

// Banners groups everything the front page rotates.
type Banners struct {
	Home []models.HomeBanner    `json:"home"`
	Tags []models.TagBanner     `json:"tags"`
	Ads  []models.Advertisement `json:"ads"`
}

func (s *Service) Banners(ctx context.Context) (*Banners, error) {
	home, err := s.store.ListHomeBanners(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.ListTagBanners(ctx)
	if err != nil {
		return nil, err
	}
	ads, err := s.store.ListAdvertisements(ctx, "")
	if err != nil {
		return nil, err
	}
	return &Banners{Home: home, Tags: tags, Ads: ads}, nil
}

func (s *Service) Advertisements(ctx context.Context, size models.BannerSize) ([]models.Advertisement, error) {
	if size != "" && !size.Valid() {
		return nil, invalid("size", "unknown banner size")
	}
	return s.store.ListAdvertisements(ctx, size)
}

func (s *Service) LiveUpdates(ctx context.Context) ([]models.LiveUpdate, error) {
	return s.store.ListLiveUpdates(ctx)
}
