package newsroom

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"newsdesk-service/internal/models"
)

type CommentCommand struct {
	ArticleSlug string
	AuthorName  string
	AuthorEmail string
	Content     string
	ParentID    *uint
}

// PostComment stores a reader comment as plain text, pending moderation.
func (s *Service) PostComment(ctx context.Context, cmd CommentCommand) (*models.Comment, error) {
	article, err := s.store.GetArticleBySlug(ctx, cmd.ArticleSlug, true)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		ArticleID:   article.ID,
		AuthorName:  strings.TrimSpace(s.plain.Sanitize(cmd.AuthorName)),
		AuthorEmail: strings.TrimSpace(cmd.AuthorEmail),
		Content:     strings.TrimSpace(s.plain.Sanitize(cmd.Content)),
		ParentID:    cmd.ParentID,
	}
	if err := s.check(c); err != nil {
		return nil, err
	}

	if cmd.ParentID != nil {
		parent, err := s.store.GetComment(ctx, *cmd.ParentID)
		if err != nil || parent.ArticleID != article.ID {
			return nil, invalid("parent_id", "reply must target a comment on the same article")
		}
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("comment received", zap.Uint("id", c.ID), zap.String("article", article.Slug))
	return c, nil
}

func (s *Service) ApproveComment(ctx context.Context, id uint) error {
	return s.store.ApproveComment(ctx, id)
}

func (s *Service) PendingComments(ctx context.Context, limit int) ([]models.Comment, error) {
	return s.store.ListPendingComments(ctx, limit)
}

// ListComments returns approved comments of a published article.
func (s *Service) ListComments(ctx context.Context, slug string) ([]models.Comment, error) {
	article, err := s.store.GetArticleBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	return s.store.ListApprovedComments(ctx, article.ID)
}
