package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/timer/internal/models"
)

var loc = time.FixedZone("UTC+1", 3600)

func sample() []models.Frame {
	start := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	return []models.Frame{
		{ID: 1, Project: "web", Start: start, End: &end, Tags: []string{"ui", "bug"}},
		{ID: 2, Project: `say "hi"`, Start: end, Tags: nil},
	}
}

func TestRecords(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	recs := Records(sample(), now, loc)
	require.Len(t, recs, 2)

	require.Equal(t, "2025-01-10T09:00:00", recs[0].StartTime)
	require.NotNil(t, recs[0].EndTime)
	require.Equal(t, "2025-01-10T10:30:00", *recs[0].EndTime)
	require.Equal(t, int64(5400), recs[0].DurationSeconds)

	require.Nil(t, recs[1].EndTime)
	require.Equal(t, []string{}, recs[1].Tags)
	require.Equal(t, int64(30*60), recs[1].DurationSeconds)
}

func TestWriteJSON(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, Records(sample(), now, loc)))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	require.Nil(t, got[1]["end_time"])
	require.Equal(t, []any{"ui", "bug"}, got[0]["tags"])
}

func TestWriteCSV(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, Records(sample(), now, loc)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{
		"id,project,start_time,end_time,tags,duration_seconds",
		`1,web,2025-01-10T09:00:00,2025-01-10T10:30:00,"ui,bug",5400`,
		`2,"say ""hi""",2025-01-10T10:30:00,,,1800`,
	}, lines)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	require.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}
