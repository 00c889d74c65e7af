package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostCache is the read-through cache used for single posts.
type PostCache interface {
	Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() (any, error)) error
	Invalidate(ctx context.Context, key string)
}

type PostService struct {
	posts repository.PostRepository
	cache PostCache
	flags *featureflags.Manager
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  string
	Category string
	Tags     []string
}

// ListPostsInput carries already-parsed query parameters.
type ListPostsInput struct {
	Page     int
	Limit    int
	Sort     string
	Category string
	Tag      string
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts       []models.Post `json:"posts"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// NewPostService builds the service; cache may be nil.
func NewPostService(posts repository.PostRepository, cache PostCache, flags *featureflags.Manager) *PostService {
	return &PostService{posts: posts, cache: cache, flags: flags}
}

// CreatePost stores a post authored by in.AuthorID.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Tags:     in.Tags,
		AuthorID: in.AuthorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	// Ids can be reused once the tables are cleared; anything cached under this one is stale.
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.PostKey(post.ID))
	}
	observability.ContentCreated.WithLabelValues("post").Inc()
	return post, nil
}

// ListPosts validates paging and sort options and returns the requested page.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	if in.Page < 1 {
		return nil, models.NewInvalidQueryError("page must be a positive integer")
	}
	if in.Limit < 1 || in.Limit > MaxPageSize {
		return nil, models.NewInvalidQueryError("limit must be between 1 and 100")
	}
	if in.Page > math.MaxInt/in.Limit {
		return nil, models.NewInvalidQueryError("page is out of range")
	}
	sort, err := parseSort(in.Sort)
	if err != nil {
		return nil, err
	}

	posts, total, err := s.posts.List(ctx, repository.PostFilter{
		Category: in.Category,
		Tag:      in.Tag,
		Sort:     sort,
		Limit:    in.Limit,
		Offset:   (in.Page - 1) * in.Limit,
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return &PostPage{
		Posts:       posts,
		TotalPages:  int((total + int64(in.Limit) - 1) / int64(in.Limit)),
		CurrentPage: in.Page,
	}, nil
}

// GetPost returns one post, through the cache when post_cache is on.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	if id == 0 {
		return nil, models.NewValidationError("Invalid post ID")
	}
	if s.cache == nil || !s.flags.EnabledFor(featureflags.PostCache, strconv.FormatUint(uint64(id), 10)) {
		return s.posts.GetByID(ctx, id)
	}

	var post models.Post
	err := s.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() (any, error) {
		return s.posts.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// SearchPosts returns every post whose title or content contains query.
func (s *PostService) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewInvalidQueryError("query is required")
	}
	posts, err := s.posts.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func parseSort(raw string) (repository.PostSort, error) {
	switch sort := repository.PostSort(raw); sort {
	case repository.SortDefault, repository.SortTitle, repository.SortDate, repository.SortPopularity:
		return sort, nil
	}
	return "", models.NewInvalidQueryError("sort must be one of title, date, popularity")
}
