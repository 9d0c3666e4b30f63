package lesson

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Validation runs before any database access, so a nil db is safe here.
func TestCreateValidation(t *testing.T) {
	valid := CreateInput{
		CourseID:  uuid.New(),
		Title:     "Getting started",
		VideoURL:  "https://cdn.example.net/courses/x/lessons/a.mp4",
		VideoPath: "courses/x/lessons/a.mp4",
	}

	cases := []struct {
		name    string
		mutate  func(in *CreateInput)
		wantErr error
	}{
		{"empty title", func(in *CreateInput) { in.Title = "  " }, ErrTitleRequired},
		{"title too short", func(in *CreateInput) { in.Title = "ab" }, ErrTitleLength},
		{"title too long", func(in *CreateInput) { in.Title = strings.Repeat("x", 121) }, ErrTitleLength},
		{"missing video url", func(in *CreateInput) { in.VideoURL = "" }, ErrVideoRequired},
		{"missing video path", func(in *CreateInput) { in.VideoPath = "" }, ErrVideoRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)

			_, err := Create(nil, input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateTitleCountsRunes(t *testing.T) {
	// 120 multibyte runes are within the limit even though the byte
	// length exceeds it.
	require.NoError(t, validateTitle(strings.Repeat("é", 120)))
	require.ErrorIs(t, validateTitle(strings.Repeat("é", 121)), ErrTitleLength)
	require.NoError(t, validateTitle("abc"))
}
