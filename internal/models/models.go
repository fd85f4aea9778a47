// Package models holds the persistent newsroom types.
package models

import "time"

type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	Base
	Username    string `gorm:"size:150;uniqueIndex;not null" json:"username" validate:"required,max=150"`
	FullName    string `gorm:"size:255" json:"full_name"`
	Email       string `gorm:"size:254;index" json:"email,omitempty" validate:"omitempty,email"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
	IsSuperuser bool   `gorm:"not null" json:"-"`
}

type Category struct {
	Base
	Name          string        `gorm:"size:100" json:"name" validate:"required,max=100"`
	Slug          string        `gorm:"size:100;uniqueIndex" json:"slug" validate:"required,max=100,slug"`
	Description   string        `gorm:"type:text" json:"description,omitempty"`
	Order         int           `gorm:"column:sort_order;not null;default:0" json:"order" validate:"gte=0"`
	SubCategories []SubCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"subcategories,omitempty"`
}

type SubCategory struct {
	Base
	Name        string    `gorm:"size:100" json:"name" validate:"required,max=100"`
	Slug        string    `gorm:"size:100;uniqueIndex" json:"slug" validate:"required,max=100,slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id" validate:"required"`
	Category    *Category `json:"category,omitempty"`
}

type Tag struct {
	Base
	Name string `gorm:"size:100" json:"name" validate:"required,max=100"`
	Slug string `gorm:"size:100;uniqueIndex" json:"slug" validate:"required,max=100,slug"`
}

type Article struct {
	Base
	Title         string       `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	Slug          string       `gorm:"size:280;uniqueIndex;not null" json:"slug" validate:"required,max=280,slug"`
	Content       string       `gorm:"type:text" json:"content" validate:"required"`
	Summary       string       `gorm:"size:200" json:"summary,omitempty" validate:"max=200"`
	FeaturedImage string       `gorm:"size:255" json:"featured_image,omitempty"`
	FeaturedVideo string       `gorm:"size:100" json:"featured_video,omitempty" validate:"max=100"`
	AuthorID      uint         `gorm:"not null;index" json:"author_id" validate:"required"`
	Author        *Author      `json:"author,omitempty"`
	CategoryID    *uint        `gorm:"index" json:"category_id,omitempty"`
	Category      *Category    `json:"category,omitempty"`
	SubCategoryID *uint        `gorm:"index" json:"subcategory_id,omitempty"`
	SubCategory   *SubCategory `json:"subcategory,omitempty"`
	Tags          []Tag        `gorm:"many2many:article_tags" json:"tags,omitempty"`
	PublishedAt   *time.Time   `gorm:"index" json:"published_at,omitempty"`
	IsPublished   bool         `gorm:"not null" json:"is_published"`
	IsFeatured    bool         `gorm:"not null" json:"is_featured"`
	IsActive      bool         `gorm:"not null" json:"is_active"`
}

// ArticleView is one row per article and client address.
type ArticleView struct {
	Base
	ArticleID   uint   `gorm:"not null;uniqueIndex:idx_article_view_ip" json:"article_id"`
	IPAddr      string `gorm:"size:50;uniqueIndex:idx_article_view_ip" json:"ip_addr"`
	Count       uint   `gorm:"not null" json:"count"`
	Impressions uint   `gorm:"not null" json:"impressions"`
	TotalClicks uint   `gorm:"not null" json:"total_clicks"`
}

type Comment struct {
	Base
	ArticleID   uint      `gorm:"not null;index" json:"article_id"`
	AuthorName  string    `gorm:"size:150;not null" json:"author_name" validate:"required,max=150"`
	AuthorEmail string    `gorm:"size:254" json:"-" validate:"omitempty,email"`
	Content     string    `gorm:"type:text;not null" json:"content" validate:"required,max=5000"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	Replies     []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	IsApproved  bool      `gorm:"not null;index" json:"is_approved"`
}

type HomeBanner struct {
	Base
	Title     string   `gorm:"size:100" json:"title"`
	ArticleID uint     `gorm:"not null" json:"article_id"`
	Article   *Article `json:"article,omitempty"`
	Image     string   `gorm:"size:255" json:"image,omitempty"`
	IsActive  bool     `gorm:"not null" json:"is_active"`
}

type TagBanner struct {
	Base
	TagName  string `gorm:"size:100" json:"tag_name"`
	NewsLink string `gorm:"size:200" json:"news_link,omitempty" validate:"omitempty,url"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

type BannerSize string

const (
	BannerHomeTall    BannerSize = "Home Banner 640x926"
	BannerHomeWide    BannerSize = "Home Banner 2496x300"
	BannerArticleSide BannerSize = "News Article Banner 600x700"
)

func (s BannerSize) Valid() bool {
	switch s {
	case BannerHomeTall, BannerHomeWide, BannerArticleSide:
		return true
	}
	return false
}

type Advertisement struct {
	Base
	Title    string     `gorm:"size:100" json:"title"`
	Link     string     `gorm:"size:200" json:"link,omitempty" validate:"omitempty,url"`
	Image    string     `gorm:"size:255" json:"image,omitempty"`
	Size     BannerSize `gorm:"size:50;index" json:"size" validate:"omitempty,banner_size"`
	IsActive bool       `gorm:"not null" json:"is_active"`
}

type LiveUpdate struct {
	Base
	Title     string `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	ArticleID *uint  `gorm:"index" json:"article_id,omitempty"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
}

type SocialAccount struct {
	Base
	Facebook  string `gorm:"size:200" json:"facebook,omitempty" validate:"omitempty,url"`
	Twitter   string `gorm:"size:200" json:"twitter,omitempty" validate:"omitempty,url"`
	Instagram string `gorm:"size:200" json:"instagram,omitempty" validate:"omitempty,url"`
	Youtube   string `gorm:"size:200" json:"youtube,omitempty" validate:"omitempty,url"`
}

type AboutUs struct {
	Base
	Title   string `gorm:"size:255" json:"title"`
	Content string `gorm:"type:text" json:"content" validate:"min=5"`
}

type SettingKey string

const (
	SettingHeader SettingKey = "Header"
	SettingBody   SettingKey = "Body"
)

// Setting holds raw markup injected into the page header or body.
type Setting struct {
	Base
	Key   SettingKey `gorm:"size:255;not null;index" json:"key" validate:"oneof=Header Body"`
	Value string     `gorm:"type:text;not null" json:"value"`
}

type WebStory struct {
	Base
	Title      string          `gorm:"size:255" json:"title"`
	Slug       string          `gorm:"size:20;uniqueIndex;not null" json:"slug"`
	CoverImage string          `gorm:"size:255" json:"cover_image,omitempty"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	Slides     []WebStorySlide `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE" json:"slides,omitempty"`
}

type WebStorySlide struct {
	Base
	StoryID uint   `gorm:"not null;index" json:"story_id"`
	Order   int    `gorm:"column:slide_order;not null;default:1" json:"order" validate:"gte=0"`
	Image   string `gorm:"size:255" json:"image,omitempty"`
	Caption string `gorm:"type:text" json:"caption,omitempty"`
}

// Epaper is one printed edition distributed as a PDF.
type Epaper struct {
	Base
	PublicID    string    `gorm:"size:36;uniqueIndex;not null" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	EditionDate time.Time `gorm:"index" json:"edition_date"`
	Document    string    `gorm:"size:255;not null" json:"-"`
	ShortCode   string    `gorm:"size:12;uniqueIndex;not null" json:"short_code"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	Downloads   uint      `gorm:"not null" json:"downloads"`
}

// All lists every model for migrations.
func All() []any {
	return []any{
		&Author{},
		&Category{},
		&SubCategory{},
		&Tag{},
		&Article{},
		&ArticleView{},
		&Comment{},
		&HomeBanner{},
		&TagBanner{},
		&Advertisement{},
		&LiveUpdate{},
		&SocialAccount{},
		&AboutUs{},
		&Setting{},
		&WebStory{},
		&WebStorySlide{},
		&Epaper{},
	}
}
