package validation

import (
	"strings"
	"testing"

	"socialvibe/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestStruct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   any
		wantMsg string
	}{
		{"Valid Registration", Registration{Username: "alice", Email: "alice@example.com", Password: "pw"}, ""},
		{"Blank Username", Registration{Username: "   ", Email: "a@example.com", Password: "pw"}, "Username is required"},
		{"Bad Email", Registration{Username: "alice", Email: "nope", Password: "pw"}, "Email must be a valid email address"},
		{"Missing Password", Registration{Username: "alice", Email: "a@example.com"}, "Password is required"},
		{"Profile Nil Fields", Profile{}, ""},
		{"Profile Blank Username", Profile{Username: strPtr("")}, "Username is required"},
		{"Profile Long Bio", Profile{Bio: strPtr(strings.Repeat("x", 501))}, "Bio must be at most 500 characters"},
		{"Listing Too Many Images", Listing{Title: "t", Description: "d", ImageURLs: make([]string, 6)}, "ImageURLs allows at most 5 items"},
		{"Listing Missing Title", Listing{Description: "d"}, "Title is required"},
		{"Report Valid", Report{PostID: "p1", Reason: "spam"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, tt.wantMsg, models.UserMessage(err))
		})
	}
}
