package newsroom

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"newsdesk-service/internal/media"
	"newsdesk-service/internal/models"
	"newsdesk-service/internal/store"
)

// ArticleCommand creates an article when Previous is nil and otherwise
// updates Previous. Image is set only when a new file was uploaded.
type ArticleCommand struct {
	Previous *models.Article

	Title           string
	Slug            string
	Content         string
	Summary         string
	FeaturedVideo   string
	AuthorID        uint
	CategorySlug    string
	SubCategorySlug string
	TagSlugs        []string
	Image           *Upload
	PublishedAt     *time.Time
	IsPublished     bool
	IsFeatured      bool
	IsActive        bool
}

func (s *Service) SaveArticle(ctx context.Context, cmd ArticleCommand) (*models.Article, error) {
	a := &models.Article{}
	if cmd.Previous != nil {
		copied := *cmd.Previous
		a = &copied
	}

	a.Title = strings.TrimSpace(cmd.Title)
	a.Content = strings.TrimSpace(s.rich.Sanitize(cmd.Content))
	a.Summary = strings.TrimSpace(cmd.Summary)
	a.FeaturedVideo = strings.TrimSpace(cmd.FeaturedVideo)
	a.AuthorID = cmd.AuthorID
	a.IsPublished = cmd.IsPublished
	a.IsFeatured = cmd.IsFeatured
	a.IsActive = cmd.IsActive

	a.Slug = strings.TrimSpace(cmd.Slug)
	if a.Slug == "" {
		if cmd.Previous != nil {
			a.Slug = cmd.Previous.Slug
		} else {
			a.Slug = Slugify(a.Title, 280)
		}
	}

	a.PublishedAt = cmd.PublishedAt
	if a.PublishedAt == nil && cmd.Previous != nil {
		a.PublishedAt = cmd.Previous.PublishedAt
	}
	if a.PublishedAt == nil && a.IsPublished {
		now := s.now()
		a.PublishedAt = &now
	}

	if err := s.resolveTaxonomy(ctx, a, cmd); err != nil {
		return nil, err
	}
	if err := s.checkArticle(a, cmd); err != nil {
		return nil, err
	}
	if _, err := s.store.GetAuthor(ctx, a.AuthorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid("author_id", "unknown author")
		}
		return nil, err
	}

	stored := ""
	if cmd.Image != nil {
		var err error
		stored, err = s.storeImage(media.NewsImages, cmd.Image, "")
		if err != nil {
			return nil, err
		}
		a.FeaturedImage = stored
	}

	a.Author, a.Category, a.SubCategory = nil, nil, nil
	if err := s.store.SaveArticle(ctx, a); err != nil {
		if stored != "" {
			if rmErr := s.media.Delete(stored); rmErr != nil {
				s.logger.Warn("remove orphaned image failed", zap.String("path", stored), zap.Error(rmErr))
			}
		}
		return nil, conflictOr(err)
	}
	s.logger.Info("article saved",
		zap.Uint("id", a.ID),
		zap.String("slug", a.Slug),
		zap.Bool("image_changed", cmd.Image != nil),
	)
	return a, nil
}

func (s *Service) resolveTaxonomy(ctx context.Context, a *models.Article, cmd ArticleCommand) error {
	a.CategoryID, a.SubCategoryID = nil, nil

	if slug := strings.TrimSpace(cmd.CategorySlug); slug != "" {
		c, err := s.store.GetCategoryBySlug(ctx, slug)
		if errors.Is(err, store.ErrNotFound) {
			return invalid("category", "unknown category")
		}
		if err != nil {
			return err
		}
		a.CategoryID = &c.ID
	}
	if slug := strings.TrimSpace(cmd.SubCategorySlug); slug != "" {
		c, err := s.store.GetSubCategoryBySlug(ctx, slug)
		if errors.Is(err, store.ErrNotFound) {
			return invalid("subcategory", "unknown subcategory")
		}
		if err != nil {
			return err
		}
		a.SubCategoryID = &c.ID
	}

	tags, err := s.store.TagsBySlugs(ctx, cmd.TagSlugs)
	if err != nil {
		return err
	}
	if len(tags) != len(uniqueNonEmpty(cmd.TagSlugs)) {
		return invalid("tags", "unknown tag")
	}
	a.Tags = tags
	return nil
}

func (s *Service) checkArticle(a *models.Article, cmd ArticleCommand) error {
	if a.CategoryID != nil && a.SubCategoryID != nil {
		return invalid("subcategory", "choose either a category or a subcategory, not both")
	}
	hasImage := a.FeaturedImage != "" || cmd.Image != nil
	if hasImage && a.FeaturedVideo != "" {
		return invalid("featured_video", "provide a featured image or a featured video, not both")
	}
	if cmd.Image != nil && !validImageName(cmd.Image.Name) {
		return invalid("featured_image", "must be a jpg, jpeg, png or webp file")
	}
	return s.check(a)
}

func uniqueNonEmpty(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ArticleDetail is an article as shown to readers, with FeaturedImage as a
// public URL.
type ArticleDetail struct {
	*models.Article
	Published string `json:"published"`
	Comments  int64  `json:"comment_count"`
	Views     int64  `json:"view_count"`
}

// ReadArticle loads a published article and records a view from ip. A failed
// view write is logged and does not fail the read.
func (s *Service) ReadArticle(ctx context.Context, slug, ip string) (*ArticleDetail, error) {
	a, err := s.store.GetArticleBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	if err := s.store.RecordView(ctx, a.ID, ip); err != nil {
		s.logger.Warn("record view failed", zap.String("slug", slug), zap.Error(err))
	}

	comments, err := s.store.CountApprovedComments(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	views, err := s.store.ViewCount(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.FeaturedImage = s.media.URL(a.FeaturedImage)
	return &ArticleDetail{
		Article:   a,
		Published: models.TimeSince(s.now(), a.PublishedAt),
		Comments:  comments,
		Views:     views,
	}, nil
}

// GetArticle returns any article, published or not, for editing.
func (s *Service) GetArticle(ctx context.Context, slug string) (*models.Article, error) {
	return s.store.GetArticleBySlug(ctx, slug, false)
}

type ListOptions struct {
	CategorySlug string
	TagSlug      string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

// ArticleSummary is the list form of an article.
type ArticleSummary struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Summary       string     `json:"summary,omitempty"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	FeaturedVideo string     `json:"featured_video,omitempty"`
	Category      string     `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	Published     string     `json:"published"`
	IsFeatured    bool       `json:"is_featured"`
}

func (s *Service) ListArticles(ctx context.Context, opts ListOptions) ([]ArticleSummary, error) {
	filter := store.ArticleFilter{FeaturedOnly: opts.FeaturedOnly, Limit: opts.Limit, Offset: opts.Offset}

	if opts.CategorySlug != "" {
		c, err := s.store.GetCategoryBySlug(ctx, opts.CategorySlug)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = &c.ID
	}
	if opts.TagSlug != "" {
		t, err := s.store.GetTagBySlug(ctx, opts.TagSlug)
		if err != nil {
			return nil, err
		}
		filter.TagID = &t.ID
	}

	articles, err := s.store.ListArticles(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.summaries(articles), nil
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]ArticleSummary, error) {
	articles, err := s.store.SearchArticles(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return s.summaries(articles), nil
}

func (s *Service) summaries(articles []models.Article) []ArticleSummary {
	now := s.now()
	out := make([]ArticleSummary, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		sum := ArticleSummary{
			ID:            a.ID,
			Title:         a.Title,
			Slug:          a.Slug,
			Summary:       a.Summary,
			FeaturedImage: s.media.URL(a.FeaturedImage),
			FeaturedVideo: a.FeaturedVideo,
			PublishedAt:   a.PublishedAt,
			Published:     models.TimeSince(now, a.PublishedAt),
			IsFeatured:    a.IsFeatured,
		}
		switch {
		case a.Category != nil:
			sum.Category = a.Category.Name
		case a.SubCategory != nil:
			sum.Category = a.SubCategory.Name
		}
		for _, t := range a.Tags {
			sum.Tags = append(sum.Tags, t.Slug)
		}
		out = append(out, sum)
	}
	return out
}
