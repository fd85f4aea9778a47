package store

import (
	"context"

	"gorm.io/gorm"

	"newsdesk-service/internal/models"
)

func orderedSlides(db *gorm.DB) *gorm.DB {
	return db.Order("slide_order ASC").Order("id ASC")
}

func (s *Store) GetWebStoryBySlug(ctx context.Context, slug string, activeOnly bool) (*models.WebStory, error) {
	q := s.db.WithContext(ctx).Preload("Slides", orderedSlides).Where("slug = ?", slug)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var story models.WebStory
	if err := q.First(&story).Error; err != nil {
		return nil, translate(err)
	}
	return &story, nil
}

func (s *Store) ListWebStories(ctx context.Context, limit int) ([]models.WebStory, error) {
	limit, _ = pageBounds(limit, 0)
	var out []models.WebStory
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) GetSlide(ctx context.Context, id uint) (*models.WebStorySlide, error) {
	var slide models.WebStorySlide
	if err := s.db.WithContext(ctx).First(&slide, id).Error; err != nil {
		return nil, translate(err)
	}
	return &slide, nil
}

// SaveWebStory writes story columns only; slides are saved separately.
func (s *Store) SaveWebStory(ctx context.Context, story *models.WebStory) error {
	q := s.db.WithContext(ctx).Omit("Slides")
	if story.ID == 0 {
		return translate(q.Create(story).Error)
	}
	return translate(q.Save(story).Error)
}

func (s *Store) SaveSlide(ctx context.Context, slide *models.WebStorySlide) error {
	if slide.ID == 0 {
		return translate(s.db.WithContext(ctx).Create(slide).Error)
	}
	return translate(s.db.WithContext(ctx).Save(slide).Error)
}
