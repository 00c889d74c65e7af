package repository

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// PostSort selects the ordering of a post listing.
type PostSort string

const (
	// SortDefault keeps insertion order (ascending id).
	SortDefault    PostSort = ""
	SortTitle      PostSort = "title"
	SortDate       PostSort = "date"
	SortPopularity PostSort = "popularity"
)

// PostFilter narrows and pages a post listing. Zero values mean "no filter".
type PostFilter struct {
	Category string
	Tag      string
	Sort     PostSort
	Limit    int
	Offset   int
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	Search(ctx context.Context, query string) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create stores post and its tags in one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "posts")

	post.TagRows = models.TagRowsFor(post.Tags)
	post.Tags = models.TagNames(post.TagRows)

	err := r.db.WithContext(ctx).Create(post).Error
	observability.EndSpan(span, err)
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	ctx, span := observability.StartRepositorySpan(ctx, "GetByID", "posts")

	var post models.Post
	err := r.db.WithContext(ctx).Scopes(withTags).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		observability.EndSpan(span, nil)
		return nil, models.NewNotFoundError("Post", id)
	}
	observability.EndSpan(span, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// List returns one page of posts matching filter and the total number of
// matches across all pages.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	defer observability.TrackQuery("select", "posts")()
	ctx, span := observability.StartRepositorySpan(ctx, "List", "posts")

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(matching(filter)).Count(&total).Error; err != nil {
		observability.EndSpan(span, err)
		return nil, 0, models.NewInternalError(err)
	}

	posts := make([]models.Post, 0)
	err := r.db.WithContext(ctx).
		Scopes(matching(filter), withTags, ordered(filter.Sort)).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	observability.EndSpan(span, err)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// Search returns every post whose title or content contains query as a
// literal, case-insensitive substring.
func (r *postRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	ctx, span := observability.StartRepositorySpan(ctx, "Search", "posts")

	pattern := containsPattern(query)
	db := r.db.WithContext(ctx).Scopes(withTags).Order("posts.id ASC")
	foldInGo := false
	switch {
	case r.db.Dialector.Name() == "postgres":
		db = db.Where(`posts.title ILIKE ? ESCAPE '\' OR posts.content ILIKE ? ESCAPE '\'`, pattern, pattern)
	case isASCII(query):
		db = db.Where(`LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\'`, pattern, pattern)
	default:
		// SQLite's LOWER only folds ASCII letters.
		foldInGo = true
	}

	posts := make([]models.Post, 0)
	err := db.Find(&posts).Error
	observability.EndSpan(span, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if foldInGo {
		posts = filterContaining(posts, query)
	}
	return posts, nil
}

func filterContaining(posts []models.Post, query string) []models.Post {
	needle := strings.ToLower(query)
	out := posts[:0]
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) || strings.Contains(strings.ToLower(p.Content), needle) {
			out = append(out, p)
		}
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func withTags(db *gorm.DB) *gorm.DB {
	return db.Preload("TagRows", func(db *gorm.DB) *gorm.DB {
		return db.Order("post_tags.id ASC")
	})
}

func matching(filter PostFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			db = db.Where("posts.category = ?", filter.Category)
		}
		if filter.Tag != "" {
			db = db.Where("EXISTS (SELECT 1 FROM post_tags WHERE post_tags.post_id = posts.id AND post_tags.name = ?)", filter.Tag)
		}
		return db
	}
}

func ordered(sort PostSort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch sort {
		case SortTitle:
			db = db.Order("posts.title ASC")
		case SortDate:
			db = db.Order("posts.created_at DESC")
		case SortPopularity:
			db = db.Order("posts.likes DESC")
		}
		return db.Order("posts.id ASC")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern that matches q literally anywhere.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
