package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/storage"
	"github.com/mpurcell/contentapi/utils"
)

// PostRepository specializes the generic repository with post defaulting:
// owner injection and published_at stamping.
type PostRepository struct {
	*Repository[models.Post]
}

// NewPostRepository creates a PostRepository. The author association is
// preloaded on reads so the presentation layer can embed it.
func NewPostRepository(db *gorm.DB, files *storage.Service) *PostRepository {
	return &PostRepository{Repository: New[models.Post](db, files, "User")}
}

// PostInput is the validated post payload. Pointer fields distinguish
// "absent" from zero values on partial updates.
type PostInput struct {
	Title      *string
	Slug       *string
	Content    *string
	Excerpt    *string
	Status     *string
	IsFeatured *bool
}

// Save creates a post owned by actingUserID. PublishedAt is stamped with
// the current time iff the post is created as published.
func (p *PostRepository) Save(in PostInput, actingUserID uint, uploads map[string]storage.Pending) (*models.Post, error) {
	post := models.Post{
		UserID:     actingUserID,
		Title:      utils.Sanitize(deref(in.Title)),
		Slug:       deref(in.Slug),
		Content:    utils.Sanitize(deref(in.Content)),
		Excerpt:    utils.Sanitize(deref(in.Excerpt)),
		Status:     models.PostStatusDraft,
		IsFeatured: in.IsFeatured != nil && *in.IsFeatured,
	}
	if in.Status != nil {
		post.Status = *in.Status
	}
	if post.Status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := p.Repository.Save(&post, uploads); err != nil {
		return nil, err
	}
	return p.Find(post.ID)
}

// Update applies a partial update. Setting status to published (re-)stamps
// PublishedAt regardless of its prior value.
func (p *PostRepository) Update(id uint, in PostInput, uploads map[string]storage.Pending) (*models.Post, error) {
	updated, err := p.Repository.Update(id, func(post *models.Post) {
		if in.Title != nil {
			post.Title = utils.Sanitize(*in.Title)
		}
		if in.Slug != nil {
			post.Slug = *in.Slug
		}
		if in.Content != nil {
			post.Content = utils.Sanitize(*in.Content)
		}
		if in.Excerpt != nil {
			post.Excerpt = utils.Sanitize(*in.Excerpt)
		}
		if in.IsFeatured != nil {
			post.IsFeatured = *in.IsFeatured
		}
		if in.Status != nil {
			post.Status = *in.Status
			if *in.Status == models.PostStatusPublished {
				now := time.Now()
				post.PublishedAt = &now
			}
		}
	}, uploads)
	if err != nil || updated == nil {
		return nil, err
	}
	return p.Find(updated.ID)
}

// SlugTaken reports whether another post already uses slug. excludeID skips
// the post being updated.
func (p *PostRepository) SlugTaken(slug string, excludeID uint) (bool, error) {
	var count int64
	query := p.DB().Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
