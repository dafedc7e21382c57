package resources

import (
	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/storage"
)

// PostResource builds the post transformer. The stored image path is
// expanded into its public URL and the author embedded as a user
// representation.
func PostResource(files *storage.Service) Transformer {
	return func(v any) any {
		post, ok := v.(*models.Post)
		if !ok {
			return v
		}
		var image any
		if post.Image != "" {
			image = files.PublicURL(post.Image)
		}
		return map[string]any{
			"id":           post.ID,
			"title":        post.Title,
			"slug":         post.Slug,
			"content":      post.Content,
			"image":        image,
			"excerpt":      post.Excerpt,
			"status":       post.Status,
			"is_featured":  post.IsFeatured,
			"published_at": post.PublishedAt,
			"author":       UserResource(&post.User),
			"created_at":   post.CreatedAt,
			"updated_at":   post.UpdatedAt,
		}
	}
}

// UserResource is the external representation of a user. The password hash
// never leaves the model, but the explicit shape keeps the contract obvious.
func UserResource(user *models.User) map[string]any {
	if user == nil {
		return nil
	}
	return map[string]any{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}
}
