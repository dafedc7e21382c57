// Package repository implements entity-agnostic CRUD with pagination,
// search/sort and uploaded-file lifecycle management on top of GORM. Domain
// repositories specialize it with entity defaults.
package repository

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/storage"
)

// DefaultPageSize is applied when the caller omits the size parameter.
const DefaultPageSize = 25

var (
	// ErrConstraintViolation marks persistence failures caused by schema
	// constraints such as unique indexes.
	ErrConstraintViolation = errors.New("constraint violation")
)

// ListParams carries listing options parsed from request query values.
type ListParams struct {
	Search   string
	Sort     string
	Order    string
	Page     int
	Size     int
	BasePath string
}

// ParseListParams extracts listing options from query values, applying the
// repository defaults. basePath is used to build next/previous page URLs.
func ParseListParams(q url.Values, basePath string) ListParams {
	p := ListParams{
		Search:   strings.TrimSpace(q.Get("search")),
		Sort:     strings.TrimSpace(q.Get("sort")),
		Order:    strings.ToLower(strings.TrimSpace(q.Get("order"))),
		Page:     1,
		Size:     DefaultPageSize,
		BasePath: basePath,
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil && v > 0 {
		p.Size = v
	}
	return p
}

// Page is an ordered bounded slice of entities plus total-count metadata.
type Page[T any] struct {
	Items        []T
	TotalItems   int64
	ItemsPerPage int
	CurrentPage  int
	LastPage     int
	NextPageURL  string
	PrevPageURL  string
}

// Repository provides CRUD operations for a single entity type.
type Repository[T any] struct {
	db       *gorm.DB
	files    *storage.Service
	preloads []string
}

// New creates a repository for T. preloads name associations loaded on every
// read, e.g. the post author.
func New[T any](db *gorm.DB, files *storage.Service, preloads ...string) *Repository[T] {
	return &Repository[T]{db: db, files: files, preloads: preloads}
}

// DB exposes the underlying gorm handle for domain repositories.
func (r *Repository[T]) DB() *gorm.DB {
	return r.db
}

// Files exposes the storage service for domain repositories.
func (r *Repository[T]) Files() *storage.Service {
	return r.files
}

// PaginatedList returns one page of entities. Search applies only when T is
// Searchable and a non-empty term is present; wildcard characters in the
// term match literally. An empty result set yields an empty page, not an
// error.
func (r *Repository[T]) PaginatedList(params ListParams) (*Page[T], error) {
	var model T
	query := r.db.Model(&model)

	if s, ok := any(&model).(models.Searchable); ok && params.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(params.Search)) + "%"
		conds := make([]string, 0, len(s.SearchFields()))
		args := make([]interface{}, 0, len(s.SearchFields()))
		for _, col := range s.SearchFields() {
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", col))
			args = append(args, pattern)
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	size := params.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	lastPage := int(math.Ceil(float64(total) / float64(size)))
	if lastPage < 1 {
		lastPage = 1
	}

	query = query.Order(fmt.Sprintf("%s %s", sortField(params.Sort), sortOrder(params.Order)))
	for _, preload := range r.preloads {
		query = query.Preload(preload)
	}

	items := []T{}
	if err := query.Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	result := &Page[T]{
		Items:        items,
		TotalItems:   total,
		ItemsPerPage: size,
		CurrentPage:  page,
		LastPage:     lastPage,
	}
	if page < lastPage {
		result.NextPageURL = pageURL(params.BasePath, page+1)
	}
	if page > 1 {
		result.PrevPageURL = pageURL(params.BasePath, page-1)
	}
	return result, nil
}

// Find returns the entity with the given id, or (nil, nil) when absent.
// Soft-deleted rows count as absent.
func (r *Repository[T]) Find(id uint) (*T, error) {
	var entity T
	query := r.db
	for _, preload := range r.preloads {
		query = query.Preload(preload)
	}
	if err := query.First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find: %w", err)
	}
	return &entity, nil
}

// Save persists a new entity inside one transaction. Pending uploads are
// stored first under <storage path>/<field> and the resulting path written
// back through SetFileRef. Files uploaded during a failed attempt are
// deleted best-effort, since the blob store is not transactional.
func (r *Repository[T]) Save(entity *T, uploads map[string]storage.Pending) error {
	var uploaded []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.storeUploads(entity, uploads, &uploaded, nil); err != nil {
			return err
		}
		return tx.Create(entity).Error
	})
	if err != nil {
		r.removeFiles(uploaded)
		return r.classify(err, "create")
	}
	return nil
}

// Update mutates an existing entity via apply and persists it with the same
// transactional and upload semantics as Save. Replaced files are removed
// only after the transaction commits. Returns (nil, nil) when id is absent,
// with no side effects.
func (r *Repository[T]) Update(id uint, apply func(*T), uploads map[string]storage.Pending) (*T, error) {
	var entity T
	var uploaded, replaced []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entity, id).Error; err != nil {
			return err
		}
		if apply != nil {
			apply(&entity)
		}
		if err := r.storeUploads(&entity, uploads, &uploaded, &replaced); err != nil {
			return err
		}
		return tx.Save(&entity).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.removeFiles(uploaded)
		return nil, r.classify(err, "update")
	}
	r.removeFiles(replaced)
	return &entity, nil
}

// Delete removes the entity and every file its declared file fields point
// at, in one transaction. A missing id is a no-op. Entities carrying
// gorm.DeletedAt are soft-deleted.
func (r *Repository[T]) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var entity T
		if err := tx.First(&entity, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if fb, ok := any(&entity).(models.FileBearing); ok {
			for _, field := range fb.FileFields() {
				path := fb.FileRef(field)
				if path == "" || !r.files.Exists(path) {
					continue
				}
				if err := r.files.Delete(path); err != nil {
					return err
				}
			}
		}
		return tx.Delete(&entity).Error
	})
}

// storeUploads persists pending uploads and rewires the entity's file
// fields. Uploaded paths are appended to uploaded for compensation; prior
// paths of overwritten fields go to replaced when non-nil.
func (r *Repository[T]) storeUploads(entity *T, uploads map[string]storage.Pending, uploaded *[]string, replaced *[]string) error {
	if len(uploads) == 0 {
		return nil
	}
	fb, ok := any(entity).(models.FileBearing)
	if !ok {
		return fmt.Errorf("entity %T does not declare file fields", entity)
	}
	for _, field := range fb.FileFields() {
		pending, present := uploads[field]
		if !present {
			continue
		}
		if replaced != nil {
			if old := fb.FileRef(field); old != "" {
				*replaced = append(*replaced, old)
			}
		}
		path, err := r.files.Upload(pending.Content, pending.Filename, fb.StoragePath()+"/"+field)
		if err != nil {
			return fmt.Errorf("upload %s: %w", field, err)
		}
		*uploaded = append(*uploaded, path)
		fb.SetFileRef(field, path)
	}
	return nil
}

func (r *Repository[T]) removeFiles(paths []string) {
	for _, path := range paths {
		_ = r.files.Delete(path)
	}
}

// classify converts raw persistence errors into the typed failures exposed
// at the repository boundary.
func (r *Repository[T]) classify(err error, op string) error {
	if isDuplicateKey(err) {
		return fmt.Errorf("%s: %w", op, ErrConstraintViolation)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}

// escapeLike makes LIKE wildcards match literally, using '!' as the escape
// character since it is portable across MySQL string literals.
func escapeLike(term string) string {
	replacer := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return replacer.Replace(term)
}

// sortField validates the requested sort column. Only identifier-shaped
// names are interpolated into ORDER BY; anything else falls back to the
// creation timestamp.
func sortField(field string) string {
	if field == "" || !isIdentifier(field) {
		return "created_at"
	}
	return field
}

func sortOrder(order string) string {
	if order == "asc" || order == "desc" {
		return order
	}
	return "desc"
}

func isIdentifier(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return false
	}
	return true
}

func pageURL(basePath string, page int) string {
	if basePath == "" {
		return ""
	}
	return fmt.Sprintf("%s?page=%d", basePath, page)
}
