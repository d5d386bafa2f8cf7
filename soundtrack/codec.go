package soundtrack

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Delimiters shared with the host save format.
const (
	FieldSeparator = ":"
	EntrySeparator = "|"
)

// ResumePoints maps a track ID to the sample frame it was last displaced at.
type ResumePoints map[int]int

func (r ResumePoints) clone() ResumePoints {
	out := make(ResumePoints, len(r))
	for id, s := range r {
		out[id] = s
	}
	return out
}

// IDs returns the track IDs in ascending order.
func (r ResumePoints) IDs() []int {
	ids := make([]int, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FormatQueue encodes entries as id:loop:fade:crossfade:overlap joined by
// EntrySeparator. StartSample and ResumeFromSaved are not persisted.
func FormatQueue(entries []QueueEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, strings.Join([]string{
			strconv.Itoa(e.TrackID),
			formatBool(e.Loop),
			formatFloat(e.FadeTime),
			formatBool(e.IsCrossfade),
			formatFloat(e.LoopOverlapTime),
		}, FieldSeparator))
	}
	return strings.Join(parts, EntrySeparator)
}

// ParseQueue decodes a FormatQueue string. Missing or malformed fields read as
// zero/false; empty entries are skipped.
func ParseQueue(s string) []QueueEntry {
	var entries []QueueEntry
	for _, raw := range strings.Split(s, EntrySeparator) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		f := strings.Split(raw, FieldSeparator)
		entry := QueueEntry{
			TrackID:         parseInt(field(f, 0)),
			Loop:            parseBool(field(f, 1)),
			FadeTime:        parseFloat(field(f, 2)),
			IsCrossfade:     parseBool(field(f, 3)),
			LoopOverlapTime: parseFloat(field(f, 4)),
		}
		entries = append(entries, entry.normalized())
	}
	return entries
}

// FormatResumePoints encodes points as id:sample joined by EntrySeparator, in
// ascending track ID order.
func FormatResumePoints(points ResumePoints) string {
	ids := points.IDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id)+FieldSeparator+strconv.Itoa(points[id]))
	}
	return strings.Join(parts, EntrySeparator)
}

// ParseResumePoints decodes a FormatResumePoints string. Later duplicates win;
// negative samples clamp to 0.
func ParseResumePoints(s string) ResumePoints {
	points := ResumePoints{}
	for _, raw := range strings.Split(s, EntrySeparator) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		f := strings.Split(raw, FieldSeparator)
		sample := parseInt(field(f, 1))
		if sample < 0 {
			sample = 0
		}
		points[parseInt(field(f, 0))] = sample
	}
	return points
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseBool(s string) bool {
	return s == "1" || strings.EqualFold(s, "true")
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
