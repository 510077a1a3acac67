package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAvatarType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		wantErr  bool
	}{
		{"jpeg ok", "me.jpg", "image/jpeg", false},
		{"jpeg alt extension", "me.jpeg", "image/jpeg", false},
		{"png ok", "me.png", "image/png", false},
		{"webp ok", "me.webp", "image/webp", false},
		{"mime case insensitive", "me.png", "IMAGE/PNG", false},
		{"gif rejected", "me.gif", "image/gif", true},
		{"mime mismatch", "me.png", "image/jpeg", true},
		{"no extension", "avatar", "image/png", true},
		{"unknown extension", "me.bmp", "image/png", true},
		{"empty mime", "me.png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAvatarType(tt.fileName, tt.mimeType)
			if tt.wantErr {
				assert.NotNil(t, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}
