package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTag(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"golang", "golang", false},
		{"  Web Development ", "web-development", false},
		{"data_science", "data-science", false},
		{"UI/UX", "uiux", false},
		{"c", "", true},
		{"", "", true},
		{"   ", "", true},
		{"!!!", "", true},
		{strings.Repeat("a", 31), "", true},
		{strings.Repeat("a", 30), strings.Repeat("a", 30), false},
	}

	for _, tc := range cases {
		got, err := NormalizeTag(tc.input)
		if tc.wantErr {
			require.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		require.Equal(t, tc.want, got)
	}
}

func TestNormalizeTagsDeduplicates(t *testing.T) {
	tags, err := NormalizeTags([]string{"Go", "Web Dev", "go", "GO "})
	require.NoError(t, err)
	require.Equal(t, []string{"go", "web-dev"}, tags)
}

func TestNormalizeTagsFailsOnFirstInvalid(t *testing.T) {
	_, err := NormalizeTags([]string{"golang", "!"})
	require.Error(t, err)
}
