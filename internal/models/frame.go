// Package models defines the domain types for timer.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Frame is one tracked interval of work on a project.
// A nil End means the frame is still open.
type Frame struct {
	ID      int64      `json:"id"`
	Project string     `json:"project"`
	Start   time.Time  `json:"start_time"`
	End     *time.Time `json:"end_time,omitempty"`
	Tags    []string   `json:"tags"`
}

// IsOpen reports whether the frame is still being tracked.
func (f *Frame) IsOpen() bool {
	return f.End == nil
}

// Duration returns the elapsed time of the frame. Open frames are measured
// against now.
func (f *Frame) Duration(now time.Time) time.Duration {
	end := now
	if f.End != nil {
		end = *f.End
	}
	return end.Sub(f.Start)
}

// FirstTag returns the first tag, or "" when the frame is untagged.
func (f *Frame) FirstTag() string {
	if len(f.Tags) == 0 {
		return ""
	}
	return f.Tags[0]
}

// Label renders "project +tag1 +tag2".
func (f *Frame) Label() string {
	if len(f.Tags) == 0 {
		return f.Project
	}
	return f.Project + " +" + strings.Join(f.Tags, " +")
}

// FormatDuration renders d using only the largest applicable unit pair:
// "2h 5m", "5m 30s" or "30s".
func FormatDuration(d time.Duration) string {
	hours := int64(d / time.Hour)
	mins := int64(d/time.Minute) % 60
	secs := int64(d/time.Second) % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// JoinTags encodes tags for storage. An empty list is stored as NULL.
func JoinTags(tags []string) *string {
	if len(tags) == 0 {
		return nil
	}
	s := strings.Join(tags, ",")
	return &s
}

// SplitTags decodes the stored tag column.
func SplitTags(s *string) []string {
	if s == nil || *s == "" {
		return []string{}
	}
	return strings.Split(*s, ",")
}

// ParseTags strips the optional "+" prefix from each word and drops empty
// results, so "+a b" and "a +b" both yield [a b].
func ParseTags(words []string) []string {
	tags := []string{}
	for _, w := range words {
		if t := strings.TrimPrefix(strings.TrimSpace(w), "+"); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
