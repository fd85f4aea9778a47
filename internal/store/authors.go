package store

import (
	"context"

	"newsdesk-service/internal/models"
)

func (s *Store) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	var a models.Author
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) GetAuthorByUsername(ctx context.Context, username string) (*models.Author, error) {
	var a models.Author
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}
