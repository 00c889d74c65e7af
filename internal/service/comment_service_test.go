package service

import (
	"context"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopPostRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateCommentInput
		code string
	}{
		{"anonymous", CreateCommentInput{PostID: 1, Content: "hi"}, models.CodeUnauthenticated},
		{"missing post", CreateCommentInput{AuthorID: 1, Content: "hi"}, models.CodeValidation},
		{"empty content", CreateCommentInput{AuthorID: 1, PostID: 1, Content: "  "}, models.CodeValidation},
		{"content too long", CreateCommentInput{AuthorID: 1, PostID: 1, Content: strings.Repeat("x", 10001)}, models.CodeValidation},
		{"multibyte content too long", CreateCommentInput{AuthorID: 1, PostID: 1, Content: strings.Repeat("é", 10001)}, models.CodeValidation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateComment(ctx, tt.in)
			assertAppErrorCode(t, err, tt.code)
		})
	}
}

func TestCommentService_CreateComment_UnknownPost(t *testing.T) {
	created := false
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, _ *models.Comment) error {
		created = true
		return nil
	}
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := NewCommentService(comments, posts)

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{AuthorID: 1, PostID: 99, Content: "hi"})
	assertAppErrorCode(t, err, models.CodeNotFound)
	assert.False(t, created)
}

func TestCommentService_CreateComment_Success(t *testing.T) {
	var stored *models.Comment
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 11
		stored = c
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo())

	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{AuthorID: 4, PostID: 2, Content: "nice"})
	require.NoError(t, err)
	assert.Same(t, stored, comment)
	assert.Equal(t, uint(4), comment.AuthorID)
	assert.Equal(t, uint(2), comment.PostID)
}

func TestCommentService_CreateComment_LengthCountsCharacters(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopPostRepo())
	content := strings.Repeat("é", 10000)

	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{AuthorID: 1, PostID: 1, Content: content})
	require.NoError(t, err)
	assert.Equal(t, content, comment.Content)
}

func TestCommentService_ListComments(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopPostRepo())

	comments, err := svc.ListComments(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	_, err = svc.ListComments(context.Background(), 0)
	assertAppErrorCode(t, err, models.CodeValidation)
}
