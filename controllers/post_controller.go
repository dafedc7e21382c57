package controllers

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mpurcell/contentapi/middleware"
	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/repository"
	"github.com/mpurcell/contentapi/resources"
	"github.com/mpurcell/contentapi/storage"
	"github.com/mpurcell/contentapi/utils"
)

const maxImageBytes = 2 << 20 // 2MB

var imageExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
}

// PostController exposes the posts resource.
type PostController struct {
	repo *repository.PostRepository
}

// NewPostController creates a PostController.
func NewPostController(db *gorm.DB, files *storage.Service) *PostController {
	return &PostController{repo: repository.NewPostRepository(db, files)}
}

// postForm binds both JSON and multipart payloads. Pointer fields keep
// "absent" distinguishable from zero values for partial updates.
type postForm struct {
	Title      *string `json:"title" form:"title"`
	Slug       *string `json:"slug" form:"slug"`
	Content    *string `json:"content" form:"content"`
	Excerpt    *string `json:"excerpt" form:"excerpt"`
	Status     *string `json:"status" form:"status"`
	IsFeatured *bool   `json:"is_featured" form:"is_featured"`
}

func (f postForm) input() repository.PostInput {
	return repository.PostInput{
		Title:      f.Title,
		Slug:       f.Slug,
		Content:    f.Content,
		Excerpt:    f.Excerpt,
		Status:     f.Status,
		IsFeatured: f.IsFeatured,
	}
}

// List returns one page of posts. The page body is the raw
// {data, pagination} shape, not the standard envelope.
func (p *PostController) List(ctx *gin.Context) {
	params := repository.ParseListParams(ctx.Request.URL.Query(), ctx.Request.URL.Path)
	page, err := p.repo.PaginatedList(params)
	if err != nil {
		utils.Sugar.Errorf("post listing failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	ctx.JSON(http.StatusOK, resources.PageResponse(page))
}

// Create stores a new post owned by the authenticated user.
func (p *PostController) Create(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.UnauthorizedResponse(ctx, "")
		return
	}

	var form postForm
	if err := ctx.ShouldBind(&form); err != nil {
		utils.ValidationErrorResponse(ctx, "", utils.ValidationMessages(err))
		return
	}
	file := formImage(ctx)

	if errs := p.validate(form, file, false, 0); len(errs) > 0 {
		utils.ValidationErrorResponse(ctx, "", errs)
		return
	}

	uploads, closeFn, err := pendingImage(file)
	if err != nil {
		utils.Sugar.Errorf("image open failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	defer closeFn()

	post, err := p.repo.Save(form.input(), userID, uploads)
	if err != nil {
		utils.Sugar.Errorf("post creation failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}

	utils.CreatedResponse(ctx, "Successfully created post", resources.Resolve(post))
}

// Show returns a single post by id.
func (p *PostController) Show(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		utils.NotFoundResponse(ctx, "Post not found")
		return
	}
	post, err := p.repo.Find(id)
	if err != nil {
		utils.Sugar.Errorf("post lookup failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	if post == nil {
		utils.NotFoundResponse(ctx, "Post not found")
		return
	}
	utils.SuccessResponse(ctx, "Successfully retrieved post", resources.Resolve(post))
}

// Update applies a partial update to a post.
func (p *PostController) Update(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		utils.NotFoundResponse(ctx, "Post not found")
		return
	}

	var form postForm
	if err := ctx.ShouldBind(&form); err != nil {
		utils.ValidationErrorResponse(ctx, "", utils.ValidationMessages(err))
		return
	}
	file := formImage(ctx)

	if errs := p.validate(form, file, true, id); len(errs) > 0 {
		utils.ValidationErrorResponse(ctx, "", errs)
		return
	}

	uploads, closeFn, err := pendingImage(file)
	if err != nil {
		utils.Sugar.Errorf("image open failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	defer closeFn()

	post, err := p.repo.Update(id, form.input(), uploads)
	if err != nil {
		utils.Sugar.Errorf("post update failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	if post == nil {
		utils.NotFoundResponse(ctx, "Post not found")
		return
	}
	utils.SuccessResponse(ctx, "Successfully updated post", resources.Resolve(post))
}

// Delete soft-deletes a post and its stored files.
func (p *PostController) Delete(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		utils.NotFoundResponse(ctx, "Post not found")
		return
	}
	post, err := p.repo.Find(id)
	if err != nil {
		utils.Sugar.Errorf("post lookup failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	if post == nil {
		utils.NotFoundResponse(ctx, "Post not found")
		return
	}
	if err := p.repo.Delete(id); err != nil {
		utils.Sugar.Errorf("post deletion failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	utils.SuccessResponse(ctx, "Successfully deleted post", nil)
}

// validate mirrors the create/update rules; partial skips required checks
// for absent fields.
func (p *PostController) validate(form postForm, file *multipart.FileHeader, partial bool, excludeID uint) map[string]string {
	errs := map[string]string{}

	if form.Title == nil && !partial {
		errs["title"] = "The title is required."
	} else if form.Title != nil {
		if strings.TrimSpace(*form.Title) == "" {
			errs["title"] = "The title is required."
		} else if len(*form.Title) > 255 {
			errs["title"] = "The title must not exceed 255 characters."
		}
	}

	if form.Slug == nil && !partial {
		errs["slug"] = "The slug is required."
	} else if form.Slug != nil {
		slug := strings.TrimSpace(*form.Slug)
		switch {
		case slug == "":
			errs["slug"] = "The slug is required."
		case len(slug) > 255:
			errs["slug"] = "The slug must not exceed 255 characters."
		default:
			taken, err := p.repo.SlugTaken(slug, excludeID)
			if err != nil {
				utils.Sugar.Errorf("slug lookup failed: %v", err)
			} else if taken {
				errs["slug"] = "The slug must be unique."
			}
		}
	}

	if form.Content == nil && !partial {
		errs["content"] = "The content field is required."
	} else if form.Content != nil && strings.TrimSpace(*form.Content) == "" {
		errs["content"] = "The content field is required."
	}

	if form.Excerpt != nil && len(*form.Excerpt) > 500 {
		errs["excerpt"] = "The excerpt must not exceed 500 characters."
	}

	if form.Status != nil && !models.ValidStatus(*form.Status) {
		errs["status"] = "Invalid status. Allowed values: draft, published, archived."
	}

	if file != nil {
		if !imageExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
			errs["image"] = "The image must be a file of type: jpeg, png, jpg, gif, webp."
		} else if file.Size > maxImageBytes {
			errs["image"] = "The image must not be larger than 2MB."
		}
	}

	return errs
}

// formImage extracts the optional multipart image field.
func formImage(ctx *gin.Context) *multipart.FileHeader {
	file, err := ctx.FormFile("image")
	if err != nil {
		return nil
	}
	return file
}

// pendingImage opens the upload stream for the repository. The returned
// close function is a no-op when there is no file.
func pendingImage(file *multipart.FileHeader) (map[string]storage.Pending, func(), error) {
	if file == nil {
		return nil, func() {}, nil
	}
	f, err := file.Open()
	if err != nil {
		return nil, func() {}, err
	}
	uploads := map[string]storage.Pending{
		"image": {Filename: file.Filename, Content: f},
	}
	return uploads, func() { _ = f.Close() }, nil
}

func paramID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
