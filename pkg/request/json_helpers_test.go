package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadString(t *testing.T) {
	value, err := ReadString("  hello  ")
	require.NoError(t, err)
	require.Equal(t, "hello", value)

	_, err = ReadString("   ")
	require.Error(t, err)

	_, err = ReadString(42)
	require.Error(t, err)
}

func TestReadInt(t *testing.T) {
	// JSON numbers decode as float64.
	value, err := ReadInt(float64(499))
	require.NoError(t, err)
	require.Equal(t, 499, value)

	value, err = ReadInt(7)
	require.NoError(t, err)
	require.Equal(t, 7, value)

	_, err = ReadInt("499")
	require.Error(t, err)
}

func TestReadStringSlice(t *testing.T) {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"tags":["go","backend"]}`), &body))

	tags, err := ReadStringSlice(body["tags"])
	require.NoError(t, err)
	require.Equal(t, []string{"go", "backend"}, tags)

	tags, err = ReadStringSlice([]string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, tags)

	_, err = ReadStringSlice([]interface{}{"a", 1})
	require.Error(t, err)

	_, err = ReadStringSlice("a,b")
	require.Error(t, err)
}

func TestReadBool(t *testing.T) {
	value, err := ReadBool(true)
	require.NoError(t, err)
	require.True(t, value)

	_, err = ReadBool("true")
	require.Error(t, err)
}

func TestParseRFC3339Ptr(t *testing.T) {
	parsed, err := ParseRFC3339Ptr(nil)
	require.NoError(t, err)
	require.Nil(t, parsed)

	empty := "  "
	parsed, err = ParseRFC3339Ptr(&empty)
	require.NoError(t, err)
	require.Nil(t, parsed)

	valid := "2026-01-02T15:04:05Z"
	parsed, err = ParseRFC3339Ptr(&valid)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	require.Equal(t, 2026, parsed.Year())

	bad := "yesterday"
	_, err = ParseRFC3339Ptr(&bad)
	require.Error(t, err)
}
