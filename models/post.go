package models

import (
	"time"

	"gorm.io/gorm"
)

// Post statuses accepted by the API.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Post represents a blog post owned by a user. The Image column holds a
// relative storage path; presentation expands it into a public URL.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Slug        string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Excerpt     string         `gorm:"size:500" json:"excerpt"`
	Image       string         `gorm:"size:1024" json:"image"`
	Status      string         `gorm:"size:16;default:'draft'" json:"status"`
	IsFeatured  bool           `gorm:"default:false" json:"is_featured"`
	PublishedAt *time.Time     `json:"published_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	User        User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// SearchFields lists the columns matched by free-text search.
func (Post) SearchFields() []string {
	return []string{"title", "content", "excerpt"}
}

// FileFields lists the columns that hold uploaded file paths.
func (Post) FileFields() []string {
	return []string{"image"}
}

// StoragePath is the directory prefix for this entity's files.
func (Post) StoragePath() string {
	return "posts"
}

// FileRef returns the stored path for a declared file field.
func (p *Post) FileRef(field string) string {
	if field == "image" {
		return p.Image
	}
	return ""
}

// SetFileRef records the stored path for a declared file field.
func (p *Post) SetFileRef(field, path string) {
	if field == "image" {
		p.Image = path
	}
}

// ValidStatus reports whether s is one of the accepted post statuses.
func ValidStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}
