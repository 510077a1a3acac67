package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"pulsegram/internal/app/feed"
	"pulsegram/internal/pkg/auth/jwt"
	"pulsegram/internal/pkg/errs"
)

func TestValidDisplayName(t *testing.T) {
	assert.True(t, validDisplayName("alice"))
	assert.True(t, validDisplayName("日本語の名前"))
	assert.True(t, validDisplayName(strings.Repeat("a", 50)))

	assert.False(t, validDisplayName(""))
	assert.False(t, validDisplayName(strings.Repeat("a", 51)))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, validPassword("secret1"))
	assert.True(t, validPassword(strings.Repeat("p", 50)))

	assert.False(t, validPassword("short"))
	assert.False(t, validPassword(strings.Repeat("p", 51)))
}

func TestEmailRegex(t *testing.T) {
	assert.True(t, emailRegex.MatchString("alice@example.com"))
	assert.True(t, emailRegex.MatchString("a.b+tag@sub.example.io"))

	assert.False(t, emailRegex.MatchString("alice"))
	assert.False(t, emailRegex.MatchString("alice@"))
	assert.False(t, emailRegex.MatchString("@example.com"))
	assert.False(t, emailRegex.MatchString("alice @example.com"))
}

func TestPostInputValidate(t *testing.T) {
	tests := []struct {
		name     string
		input    PostInput
		wantCode int
	}{
		{"valid", PostInput{Title: "Hello", Content: "World"}, 0},
		{"trims whitespace", PostInput{Title: "  Hello  ", Content: "  World  "}, 0},
		{"missing title", PostInput{Title: "   ", Content: "World"}, errs.ErrTitleRequired},
		{"missing content", PostInput{Title: "Hello", Content: ""}, errs.ErrContentRequired},
		{"title too long", PostInput{Title: strings.Repeat("t", MaxPostTitleLength+1), Content: "World"}, errs.ErrContentTooLong},
		{"content too long", PostInput{Title: "Hello", Content: strings.Repeat("c", MaxPostContentLength+1)}, errs.ErrContentTooLong},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			customErr := tc.input.Validate()
			if tc.wantCode == 0 {
				assert.Nil(t, customErr)
				assert.Equal(t, strings.TrimSpace(tc.input.Title), tc.input.Title)
				return
			}
			if assert.NotNil(t, customErr) {
				assert.Equal(t, tc.wantCode, customErr.Code)
			}
		})
	}
}

func TestCommentInputValidate(t *testing.T) {
	valid := CommentInput{Text: " nice post "}
	assert.Nil(t, valid.Validate())
	assert.Equal(t, "nice post", valid.Text)

	empty := CommentInput{Text: "   "}
	if customErr := empty.Validate(); assert.NotNil(t, customErr) {
		assert.Equal(t, errs.ErrContentRequired, customErr.Code)
	}

	long := CommentInput{Text: strings.Repeat("x", MaxCommentLength+1)}
	if customErr := long.Validate(); assert.NotNil(t, customErr) {
		assert.Equal(t, errs.ErrContentTooLong, customErr.Code)
	}
}

func TestCanModify(t *testing.T) {
	owner := &jwt.Payload{ID: "u1", Role: feed.RoleUser}
	stranger := &jwt.Payload{ID: "u2", Role: feed.RoleUser}
	admin := &jwt.Payload{ID: "u3", Role: feed.RoleAdmin}

	assert.True(t, canModify(owner, "u1"))
	assert.False(t, canModify(stranger, "u1"))
	assert.True(t, canModify(admin, "u1"))
}
