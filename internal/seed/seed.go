// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

var (
	categories = []string{"go", "databases", "devops", "frontend", "career", "security"}
	tagPool    = []string{"tutorial", "opinion", "news", "deep-dive", "beginner", "release", "howto", "tools"}
)

// Options configuration for the seeder
type Options struct {
	Users    int
	Posts    int
	Comments int
	Clean    bool
	// RandSeed makes runs reproducible when non-zero.
	RandSeed int64
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
	// MaxDays spreads post timestamps over this many past days.
	MaxDays int
}

// Summary counts the rows a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
}

// Seeder fills the database with fake users, posts and comments.
type Seeder struct {
	db       *gorm.DB
	opts     Options
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewSeeder binds a seeder to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	randSeed := opts.RandSeed
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	return &Seeder{
		db:       db,
		opts:     opts,
		faker:    gofakeit.New(randSeed),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
	}
}

// Run optionally clears existing data, then creates users, posts and comments.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return sum, err
		}
	}

	users, err := s.seedUsers(ctx)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	posts, err := s.seedPosts(ctx, users)
	if err != nil {
		return sum, err
	}
	sum.Posts = len(posts)
	if len(posts) == 0 {
		return sum, nil
	}

	sum.Comments, err = s.seedComments(ctx, users, posts)
	if err != nil {
		return sum, err
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		"users", sum.Users, "posts", sum.Posts, "comments", sum.Comments)
	return sum, nil
}

// ClearAll removes every comment, tag, post and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Comment{}, &models.PostTag{}, &models.Post{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.opts.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		username := fmt.Sprintf("%s%d", s.faker.Username(), i)
		user := &models.User{
			Username: username,
			Email:    strings.ToLower(username) + "@" + s.faker.DomainName(),
			Password: string(hash),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User) ([]*models.Post, error) {
	now := time.Now()
	oldest := now.Add(-time.Duration(s.opts.MaxDays) * 24 * time.Hour)

	posts := make([]*models.Post, 0, s.opts.Posts)
	for i := 0; i < s.opts.Posts; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		post := &models.Post{
			Title:     strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), "."),
			Content:   s.faker.Paragraph(2, 4, 12, "\n\n"),
			Category:  s.faker.RandomString(categories),
			Tags:      s.pickTags(),
			AuthorID:  author.ID,
			Likes:     s.faker.Number(0, 250),
			CreatedAt: s.faker.DateRange(oldest, now),
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return nil, fmt.Errorf("create post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, posts []*models.Post) (int, error) {
	for i := 0; i < s.opts.Comments; i++ {
		comment := &models.Comment{
			Content:  s.faker.Sentence(s.faker.Number(4, 20)),
			PostID:   posts[s.faker.Number(0, len(posts)-1)].ID,
			AuthorID: users[s.faker.Number(0, len(users)-1)].ID,
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			return i, fmt.Errorf("create comment %d: %w", i, err)
		}
	}
	return s.opts.Comments, nil
}

func (s *Seeder) pickTags() []string {
	n := s.faker.Number(0, 3)
	tags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tags = append(tags, s.faker.RandomString(tagPool))
	}
	return tags
}
