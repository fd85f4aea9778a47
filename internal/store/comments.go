package store

import (
	"context"

	"newsdesk-service/internal/models"
)

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListApprovedComments returns approved top-level comments, newest first, each
// with its approved replies at any depth, oldest first. A reply under an
// unapproved comment stays hidden.
func (s *Store) ListApprovedComments(ctx context.Context, articleID uint) ([]models.Comment, error) {
	var rows []models.Comment
	err := s.db.WithContext(ctx).
		Where("article_id = ? AND is_approved = ?", articleID, true).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	children := make(map[uint][]int, len(rows))
	var roots []int
	for i := range rows {
		if rows[i].ParentID == nil {
			roots = append(roots, i)
			continue
		}
		children[*rows[i].ParentID] = append(children[*rows[i].ParentID], i)
	}

	var build func(i int) models.Comment
	build = func(i int) models.Comment {
		c := rows[i]
		c.Replies = nil
		for _, j := range children[c.ID] {
			c.Replies = append(c.Replies, build(j))
		}
		return c
	}

	out := make([]models.Comment, 0, len(roots))
	for k := len(roots) - 1; k >= 0; k-- {
		out = append(out, build(roots[k]))
	}
	return out, nil
}

func (s *Store) CountApprovedComments(ctx context.Context, articleID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("article_id = ? AND is_approved = ?", articleID, true).
		Count(&n).Error
	return n, translate(err)
}

func (s *Store) ApproveComment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("is_approved", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListPendingComments(ctx context.Context, limit int) ([]models.Comment, error) {
	limit, _ = pageBounds(limit, 0)
	var out []models.Comment
	err := s.db.WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}
