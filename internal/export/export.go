// Package export serializes frames as JSON or CSV records.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/starford/timer/internal/models"
)

// TimeLayout is the local ISO-8601 form used for exported instants.
const TimeLayout = "2006-01-02T15:04:05"

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected json or csv)", s)
}

// Record is one exported frame.
type Record struct {
	ID              int64    `json:"id"`
	Project         string   `json:"project"`
	StartTime       string   `json:"start_time"`
	EndTime         *string  `json:"end_time"`
	Tags            []string `json:"tags"`
	DurationSeconds int64    `json:"duration_seconds"`
}

// Records converts frames, measuring open frames against now and rendering
// times in loc.
func Records(frames []models.Frame, now time.Time, loc *time.Location) []Record {
	out := make([]Record, 0, len(frames))
	for i := range frames {
		f := &frames[i]
		r := Record{
			ID:              f.ID,
			Project:         f.Project,
			StartTime:       f.Start.In(loc).Format(TimeLayout),
			Tags:            f.Tags,
			DurationSeconds: int64(f.Duration(now) / time.Second),
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
		if f.End != nil {
			end := f.End.In(loc).Format(TimeLayout)
			r.EndTime = &end
		}
		out = append(out, r)
	}
	return out
}

// Write encodes records to w in the given format.
func Write(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

var csvHeader = []string{"id", "project", "start_time", "end_time", "tags", "duration_seconds"}

// WriteCSV writes records with a header row. Tags share one field, joined
// by commas; fields containing separators are quoted.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		end := ""
		if r.EndTime != nil {
			end = *r.EndTime
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Project,
			r.StartTime,
			end,
			strings.Join(r.Tags, ","),
			strconv.FormatInt(r.DurationSeconds, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
