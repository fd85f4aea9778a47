package newsroom

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsdesk-service/internal/imageopt"
	"newsdesk-service/internal/media"
	"newsdesk-service/internal/models"
	"newsdesk-service/internal/store"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	store  *store.Store
	fs     afero.Fs
	author *models.Author
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "newsroom.sqlite3"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	fs := afero.NewMemMapFs()
	svc := New(st, media.NewStorageFs(fs, "/media/"), imageopt.New(imageopt.DefaultConfig()),
		WithClock(func() time.Time { return fixedNow }))

	author := &models.Author{Username: "editor", FullName: "Night Editor", IsActive: true}
	require.NoError(t, st.Create(context.Background(), author))
	return &fixture{svc: svc, store: st, fs: fs, author: author}
}

func pngUpload(t *testing.T, name string, w, h int) *Upload {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 200})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &Upload{Name: name, Data: buf.Bytes()}
}

func (f *fixture) article(t *testing.T, mutate func(*ArticleCommand)) *models.Article {
	t.Helper()
	cmd := ArticleCommand{
		Title:       "Budget 2026: What's new",
		Content:     "<p>Numbers</p>",
		AuthorID:    f.author.ID,
		IsPublished: true,
		IsActive:    true,
	}
	if mutate != nil {
		mutate(&cmd)
	}
	a, err := f.svc.SaveArticle(context.Background(), cmd)
	require.NoError(t, err)
	return a
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "budget-2026-what-s-new", Slugify("Budget 2026: What's new", 0))
	assert.Equal(t, "cafe-creme", Slugify("  Café Crème ", 0))
	assert.Equal(t, "abc", Slugify("abc-def", 4))
}

func TestShortID(t *testing.T) {
	id := ShortID(15)
	assert.Len(t, id, 15)
	assert.Regexp(t, `^[A-Za-z0-9]+$`, id)
	assert.NotEqual(t, id, ShortID(15))
}

func TestSaveArticleGeneratesSlugAndSanitizes(t *testing.T) {
	f := newFixture(t)

	a := f.article(t, func(c *ArticleCommand) {
		c.Content = `<p onclick="x()">Hi</p><script>alert(1)</script>`
	})

	assert.Equal(t, "budget-2026-what-s-new", a.Slug)
	assert.Equal(t, "<p>Hi</p>", a.Content)
	require.NotNil(t, a.PublishedAt)
	assert.True(t, a.PublishedAt.Equal(fixedNow))
}

func TestSaveArticleOptimizesNewImage(t *testing.T) {
	f := newFixture(t)

	a := f.article(t, func(c *ArticleCommand) {
		c.Image = pngUpload(t, "cover.png", 1600, 900)
	})

	assert.Equal(t, "news_images/cover.jpg", a.FeaturedImage)
	data, err := afero.ReadFile(f.fs, a.FeaturedImage)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1000, cfg.Width)
	assert.Equal(t, 562, cfg.Height)
}

func TestSaveArticleKeepsOriginalWhenOptimizationFails(t *testing.T) {
	f := newFixture(t)

	a := f.article(t, func(c *ArticleCommand) {
		c.Image = &Upload{Name: "broken.png", Data: []byte("not an image")}
	})

	assert.Equal(t, "news_images/broken.png", a.FeaturedImage)
	data, err := afero.ReadFile(f.fs, a.FeaturedImage)
	require.NoError(t, err)
	assert.Equal(t, []byte("not an image"), data)
}

func TestSaveArticleUnchangedImageIsNotReprocessed(t *testing.T) {
	f := newFixture(t)
	first := f.article(t, func(c *ArticleCommand) {
		c.Image = pngUpload(t, "cover.png", 400, 300)
	})

	updated, err := f.svc.SaveArticle(context.Background(), ArticleCommand{
		Previous:    first,
		Title:       "Budget 2026, revised",
		Slug:        first.Slug,
		Content:     first.Content,
		AuthorID:    f.author.ID,
		IsPublished: true,
		IsActive:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, first.FeaturedImage, updated.FeaturedImage)
	entries, err := afero.ReadDir(f.fs, media.NewsImages)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveArticleUpdateWithoutSlugKeepsSlug(t *testing.T) {
	f := newFixture(t)
	first := f.article(t, nil)

	updated, err := f.svc.SaveArticle(context.Background(), ArticleCommand{
		Previous:    first,
		Title:       "Edited headline",
		Content:     first.Content,
		AuthorID:    f.author.ID,
		IsPublished: true,
		IsActive:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.Slug, updated.Slug)
	assert.Equal(t, "Edited headline", updated.Title)
}

func TestSaveArticleFailureRemovesStoredImage(t *testing.T) {
	f := newFixture(t)
	f.article(t, nil)

	_, err := f.svc.SaveArticle(context.Background(), ArticleCommand{
		Title:    "Budget 2026: What's new",
		Content:  "<p>again</p>",
		AuthorID: f.author.ID,
		Image:    pngUpload(t, "dup.png", 40, 40),
	})
	require.ErrorIs(t, err, ErrConflict)

	exists, err := afero.Exists(f.fs, "news_images/dup.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveArticleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	politics := &models.Category{Name: "Politics", Slug: "politics"}
	require.NoError(t, f.store.Create(ctx, politics))
	require.NoError(t, f.store.Create(ctx, &models.SubCategory{Name: "Polls", Slug: "polls", CategoryID: politics.ID}))

	tests := []struct {
		name   string
		mutate func(*ArticleCommand)
		field  string
	}{
		{"missing title", func(c *ArticleCommand) { c.Title = "" }, "title"},
		{"missing content", func(c *ArticleCommand) { c.Content = "<script></script>" }, "content"},
		{"category and subcategory", func(c *ArticleCommand) {
			c.CategorySlug, c.SubCategorySlug = "politics", "polls"
		}, "subcategory"},
		{"image and video", func(c *ArticleCommand) {
			c.Image = pngUpload(t, "a.png", 10, 10)
			c.FeaturedVideo = "dQw4w9WgXcQ"
		}, "featured_video"},
		{"bad extension", func(c *ArticleCommand) {
			c.Image = &Upload{Name: "a.gif", Data: []byte("GIF89a")}
		}, "featured_image"},
		{"unknown category", func(c *ArticleCommand) { c.CategorySlug = "weather" }, "category"},
		{"unknown tag", func(c *ArticleCommand) { c.TagSlugs = []string{"nope"} }, "tags"},
		{"unknown author", func(c *ArticleCommand) { c.AuthorID = 999 }, "author_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ArticleCommand{Title: "Valid", Content: "<p>ok</p>", AuthorID: f.author.ID}
			tt.mutate(&cmd)

			_, err := f.svc.SaveArticle(ctx, cmd)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestSaveArticleDuplicateSlugConflicts(t *testing.T) {
	f := newFixture(t)
	f.article(t, nil)

	_, err := f.svc.SaveArticle(context.Background(), ArticleCommand{
		Title: "Budget 2026: What's new", Content: "again", AuthorID: f.author.ID,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReadArticleRecordsViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.article(t, func(c *ArticleCommand) {
		at := fixedNow.Add(-3 * time.Hour)
		c.PublishedAt = &at
	})

	_, err := f.svc.ReadArticle(ctx, a.Slug, "10.0.0.1")
	require.NoError(t, err)
	_, err = f.svc.ReadArticle(ctx, a.Slug, "10.0.0.2")
	require.NoError(t, err)
	detail, err := f.svc.ReadArticle(ctx, a.Slug, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), detail.Views)
	assert.Equal(t, "3 hours ago", detail.Published)
}

func TestReadArticleExposesImageURL(t *testing.T) {
	f := newFixture(t)
	a := f.article(t, func(c *ArticleCommand) {
		c.Image = pngUpload(t, "lead.png", 30, 30)
	})

	detail, err := f.svc.ReadArticle(context.Background(), a.Slug, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "/media/news_images/lead.jpg", detail.FeaturedImage)

	list, err := f.svc.ListArticles(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, detail.FeaturedImage, list[0].FeaturedImage)
}

func TestReadArticleHidesDrafts(t *testing.T) {
	f := newFixture(t)
	a := f.article(t, func(c *ArticleCommand) { c.IsPublished = false })

	_, err := f.svc.ReadArticle(context.Background(), a.Slug, "10.0.0.1")
	assert.ErrorIs(t, err, ErrNotFound)

	draft, err := f.svc.GetArticle(context.Background(), a.Slug)
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)
}

func TestListAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Create(ctx, &models.Tag{Name: "Economy", Slug: "economy"}))
	f.article(t, func(c *ArticleCommand) { c.TagSlugs = []string{"economy"} })
	f.article(t, func(c *ArticleCommand) { c.Title = "Monsoon arrives"; c.IsFeatured = true })

	all, err := f.svc.ListArticles(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tagged, err := f.svc.ListArticles(ctx, ListOptions{TagSlug: "economy"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, []string{"economy"}, tagged[0].Tags)

	featured, err := f.svc.ListArticles(ctx, ListOptions{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "monsoon-arrives", featured[0].Slug)

	found, err := f.svc.Search(ctx, "MONSOON", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = f.svc.ListArticles(ctx, ListOptions{CategorySlug: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentsModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.article(t, nil)

	c, err := f.svc.PostComment(ctx, CommentCommand{
		ArticleSlug: a.Slug,
		AuthorName:  "Reader",
		Content:     "<b>Great</b> piece<script>x</script>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Great piece", c.Content)
	assert.False(t, c.IsApproved)

	listed, err := f.svc.ListComments(ctx, a.Slug)
	require.NoError(t, err)
	assert.Empty(t, listed)

	pending, err := f.svc.PendingComments(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, f.svc.ApproveComment(ctx, c.ID))
	listed, err = f.svc.ListComments(ctx, a.Slug)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	assert.ErrorIs(t, f.svc.ApproveComment(ctx, 9999), ErrNotFound)
}

func TestCommentReplyMustStayOnArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.article(t, nil)
	other := f.article(t, func(c *ArticleCommand) { c.Title = "Other story" })

	parent, err := f.svc.PostComment(ctx, CommentCommand{ArticleSlug: first.Slug, AuthorName: "A", Content: "first"})
	require.NoError(t, err)

	_, err = f.svc.PostComment(ctx, CommentCommand{
		ArticleSlug: other.Slug, AuthorName: "B", Content: "reply", ParentID: &parent.ID,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "parent_id")

	reply, err := f.svc.PostComment(ctx, CommentCommand{
		ArticleSlug: first.Slug, AuthorName: "B", Content: "reply", ParentID: &parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *reply.ParentID)
}

func TestNestedRepliesAreListed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.article(t, nil)

	top, err := f.svc.PostComment(ctx, CommentCommand{ArticleSlug: a.Slug, AuthorName: "A", Content: "top"})
	require.NoError(t, err)
	r1, err := f.svc.PostComment(ctx, CommentCommand{ArticleSlug: a.Slug, AuthorName: "B", Content: "r1", ParentID: &top.ID})
	require.NoError(t, err)
	r2, err := f.svc.PostComment(ctx, CommentCommand{ArticleSlug: a.Slug, AuthorName: "C", Content: "r2", ParentID: &r1.ID})
	require.NoError(t, err)
	for _, id := range []uint{top.ID, r1.ID, r2.ID} {
		require.NoError(t, f.svc.ApproveComment(ctx, id))
	}

	listed, err := f.svc.ListComments(ctx, a.Slug)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Replies, 1)
	require.Len(t, listed[0].Replies[0].Replies, 1)
	assert.Equal(t, "r2", listed[0].Replies[0].Replies[0].Content)
}

func TestWebStoryLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	story, err := f.svc.SaveWebStory(ctx, WebStoryCommand{
		Title:    "Election night",
		Cover:    pngUpload(t, "night.png", 1200, 1600),
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z0-9]{15}$`, story.Slug)
	assert.Equal(t, "webstories/cover_images/night.jpg", story.CoverImage)

	_, err = f.svc.SaveSlide(ctx, SlideCommand{StorySlug: story.Slug, Order: 2, Caption: "second", Image: pngUpload(t, "b.png", 50, 50)})
	require.NoError(t, err)
	_, err = f.svc.SaveSlide(ctx, SlideCommand{StorySlug: story.Slug, Order: 1, Caption: "first", Image: pngUpload(t, "a.png", 50, 50)})
	require.NoError(t, err)

	loaded, err := f.svc.GetWebStory(ctx, story.Slug)
	require.NoError(t, err)
	require.Len(t, loaded.Slides, 2)
	assert.Equal(t, "first", loaded.Slides[0].Caption)

	// Slug survives an edit.
	edited, err := f.svc.SaveWebStory(ctx, WebStoryCommand{Previous: loaded, Title: "Results night", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, story.Slug, edited.Slug)
	assert.Equal(t, story.CoverImage, edited.CoverImage)
}

func TestWebStoryBadReplacementKeepsPreviousImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	story, err := f.svc.SaveWebStory(ctx, WebStoryCommand{Title: "T", Cover: pngUpload(t, "c.png", 20, 20), IsActive: true})
	require.NoError(t, err)

	updated, err := f.svc.SaveWebStory(ctx, WebStoryCommand{
		Previous: story,
		Title:    "T",
		Cover:    &Upload{Name: "c2.png", Data: []byte("garbage")},
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, story.CoverImage, updated.CoverImage)

	slide, err := f.svc.SaveSlide(ctx, SlideCommand{StorySlug: story.Slug, Image: &Upload{Name: "s.png", Data: []byte("garbage")}})
	require.NoError(t, err)
	assert.Equal(t, "webstories/slides/s.png", slide.Image)
	assert.Equal(t, 1, slide.Order)
}

func TestSaveSlideUnknownStory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SaveSlide(context.Background(), SlideCommand{StorySlug: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdvertisements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveAdvertisement(ctx, AdCommand{Title: "Bad", Size: "Poster"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "size")

	ad, err := f.svc.SaveAdvertisement(ctx, AdCommand{
		Title:    "Sale",
		Link:     "https://shop.example.com",
		Size:     models.BannerHomeWide,
		Image:    &Upload{Name: "sale.png", Data: []byte("raw-bytes")},
		IsActive: true,
	})
	require.NoError(t, err)
	data, err := afero.ReadFile(f.fs, ad.Image)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-bytes"), data)

	wide, err := f.svc.Advertisements(ctx, models.BannerHomeWide)
	require.NoError(t, err)
	assert.Len(t, wide, 1)
	tall, err := f.svc.Advertisements(ctx, models.BannerHomeTall)
	require.NoError(t, err)
	assert.Empty(t, tall)

	banners, err := f.svc.Banners(ctx)
	require.NoError(t, err)
	assert.Len(t, banners.Ads, 1)
}

func TestHomeBannerNeedsArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveHomeBanner(ctx, HomeBannerCommand{Title: "Lead", ArticleSlug: "nope"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	a := f.article(t, nil)
	b, err := f.svc.SaveHomeBanner(ctx, HomeBannerCommand{Title: "Lead", ArticleSlug: a.Slug, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ArticleID)
}

func TestEpaperPublishAndDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.PublishEpaper(ctx, EpaperCommand{Title: "Morning", Document: &Upload{Name: "x.pdf", Data: []byte("PK zip")}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	e, err := f.svc.PublishEpaper(ctx, EpaperCommand{
		Title:    "Morning edition",
		Document: &Upload{Name: "morning", Data: []byte("%PDF-1.7 body")},
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Len(t, e.ShortCode, 8)
	assert.Equal(t, "epapers/morning.pdf", e.Document)
	assert.True(t, e.EditionDate.Equal(fixedNow))

	resolved, err := f.svc.ResolveShortURL(ctx, e.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, e.PublicID, resolved.PublicID)

	_, file, err := f.svc.OpenEpaper(ctx, e.PublicID)
	require.NoError(t, err)
	body, err := io.ReadAll(file)
	require.NoError(t, file.Close())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))

	again, err := f.svc.GetEpaper(ctx, e.PublicID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), again.Downloads)
}

func TestSiteContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Create(ctx, &models.Category{Name: "World", Slug: "world", Order: 2}))
	require.NoError(t, f.store.Create(ctx, &models.Category{Name: "Local", Slug: "local", Order: 1}))
	require.NoError(t, f.store.Create(ctx, &models.Setting{Key: models.SettingHeader, Value: "<meta>"}))

	site, err := f.svc.Site(ctx)
	require.NoError(t, err)
	require.Len(t, site.Categories, 2)
	assert.Equal(t, "local", site.Categories[0].Slug)
	assert.Len(t, site.HeaderSettings, 1)
	assert.Empty(t, site.BodySettings)
	assert.Nil(t, site.AboutUs)
}
