package store

import (
	"context"

	"newsdesk-service/internal/models"
)

// ListCategories returns categories by ascending order with subcategories.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.db.WithContext(ctx).
		Preload("SubCategories").
		Order("sort_order ASC").Order("name ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).Preload("SubCategories").Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) GetSubCategoryBySlug(ctx context.Context, slug string) (*models.SubCategory, error) {
	var c models.SubCategory
	if err := s.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var t models.Tag
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// TagsBySlugs returns the tags that exist among slugs; unknown slugs are skipped.
func (s *Store) TagsBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var out []models.Tag
	err := s.db.WithContext(ctx).Where("slug IN ?", slugs).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

// CountArticlesInCategory counts published, active articles in a category.
func (s *Store) CountArticlesInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := s.published(ctx).Where("category_id = ?", categoryID).Count(&n).Error
	return n, translate(err)
}

func (s *Store) CountArticlesWithTag(ctx context.Context, tagID uint) (int64, error) {
	var n int64
	err := s.published(ctx).
		Joins("JOIN article_tags ON article_tags.article_id = articles.id").
		Where("article_tags.tag_id = ?", tagID).
		Count(&n).Error
	return n, translate(err)
}
