package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m 30s"},
		{3661 * time.Second, "1h 1m"},
		{59*time.Minute + 59*time.Second, "59m 59s"},
		{26*time.Hour + 5*time.Minute + 9*time.Second, "26h 5m"},
		{1500 * time.Millisecond, "1s"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, FormatDuration(c.in), c.in.String())
	}
}

func TestFrameDuration(t *testing.T) {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Hour)

	f := Frame{Project: "p", Start: start}
	require.True(t, f.IsOpen())
	require.Equal(t, 2*time.Hour, f.Duration(now))

	end := start.Add(30 * time.Minute)
	f.End = &end
	require.False(t, f.IsOpen())
	require.Equal(t, 30*time.Minute, f.Duration(now))
}

func TestLabelAndFirstTag(t *testing.T) {
	f := Frame{Project: "timer"}
	require.Equal(t, "timer", f.Label())
	require.Equal(t, "", f.FirstTag())

	f.Tags = []string{"main", "cli"}
	require.Equal(t, "timer +main +cli", f.Label())
	require.Equal(t, "main", f.FirstTag())
}

func TestTagEncoding(t *testing.T) {
	require.Nil(t, JoinTags(nil))
	require.Nil(t, JoinTags([]string{}))

	joined := JoinTags([]string{"b", "a"})
	require.NotNil(t, joined)
	require.Equal(t, "b,a", *joined)
	require.Equal(t, []string{"b", "a"}, SplitTags(joined))

	empty := ""
	require.Equal(t, []string{}, SplitTags(&empty))
	require.Equal(t, []string{}, SplitTags(nil))
}

func TestParseTags(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, ParseTags([]string{"+a", "b"}))
	require.Equal(t, []string{}, ParseTags([]string{"+", " "}))
	require.Equal(t, []string{}, ParseTags(nil))
}
