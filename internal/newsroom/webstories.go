package newsroom

import (
	"context"
	"errors"
	"strings"

	"newsdesk-service/internal/media"
	"newsdesk-service/internal/models"
	"newsdesk-service/internal/store"
)

const (
	storySlugLength   = 15
	storySlugAttempts = 3
)

// WebStoryCommand creates a story when Previous is nil. Cover is set only
// for a new upload.
type WebStoryCommand struct {
	Previous *models.WebStory
	Title    string
	Cover    *Upload
	IsActive bool
}

func (s *Service) SaveWebStory(ctx context.Context, cmd WebStoryCommand) (*models.WebStory, error) {
	story := &models.WebStory{}
	if cmd.Previous != nil {
		copied := *cmd.Previous
		story = &copied
	}
	story.Title = strings.TrimSpace(cmd.Title)
	story.IsActive = cmd.IsActive
	story.Slides = nil

	if cmd.Cover != nil {
		if !validImageName(cmd.Cover.Name) {
			return nil, invalid("cover_image", "must be a jpg, jpeg, png or webp file")
		}
		stored, err := s.storeImage(media.StoryCovers, cmd.Cover, previousCover(cmd.Previous))
		if err != nil {
			return nil, err
		}
		story.CoverImage = stored
	}

	if story.ID != 0 {
		if err := s.store.SaveWebStory(ctx, story); err != nil {
			return nil, err
		}
		return story, nil
	}

	// The slug is generated once and never edited; retry on the rare collision.
	var err error
	for attempt := 0; attempt < storySlugAttempts; attempt++ {
		story.Slug = ShortID(storySlugLength)
		if err = s.store.SaveWebStory(ctx, story); !errors.Is(err, store.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, conflictOr(err)
	}
	return story, nil
}

func previousCover(prev *models.WebStory) string {
	if prev == nil {
		return ""
	}
	return prev.CoverImage
}

// SlideCommand adds a slide to StorySlug when Previous is nil.
type SlideCommand struct {
	Previous  *models.WebStorySlide
	StorySlug string
	Order     int
	Caption   string
	Image     *Upload
}

func (s *Service) SaveSlide(ctx context.Context, cmd SlideCommand) (*models.WebStorySlide, error) {
	slide := &models.WebStorySlide{}
	fallback := ""
	if cmd.Previous != nil {
		copied := *cmd.Previous
		slide = &copied
		fallback = cmd.Previous.Image
	} else {
		story, err := s.store.GetWebStoryBySlug(ctx, cmd.StorySlug, false)
		if err != nil {
			return nil, err
		}
		slide.StoryID = story.ID
	}
	slide.Order = cmd.Order
	if slide.Order <= 0 {
		slide.Order = 1
	}
	slide.Caption = strings.TrimSpace(s.plain.Sanitize(cmd.Caption))

	if err := s.check(slide); err != nil {
		return nil, err
	}
	if cmd.Image != nil {
		if !validImageName(cmd.Image.Name) {
			return nil, invalid("image", "must be a jpg, jpeg, png or webp file")
		}
		stored, err := s.storeImage(media.StorySlides, cmd.Image, fallback)
		if err != nil {
			return nil, err
		}
		slide.Image = stored
	}

	if err := s.store.SaveSlide(ctx, slide); err != nil {
		return nil, err
	}
	return slide, nil
}

func (s *Service) GetWebStory(ctx context.Context, slug string) (*models.WebStory, error) {
	return s.store.GetWebStoryBySlug(ctx, slug, true)
}

func (s *Service) GetSlide(ctx context.Context, id uint) (*models.WebStorySlide, error) {
	return s.store.GetSlide(ctx, id)
}

func (s *Service) ListWebStories(ctx context.Context, limit int) ([]models.WebStory, error) {
	return s.store.ListWebStories(ctx, limit)
}
