package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultSearchLimit applies when a caller passes a non-positive limit.
	DefaultSearchLimit = 10

	sampleTextLimit    = 200
	summaryMatchLimit  = 50
	summaryExampleSize = 150
	summaryExamples    = 3
)

// ErrNoData is the statistics error marker for an empty dataset.
const ErrNoData = "No data available"

// KeywordGroup is a named slice of the frequency vocabulary.
type KeywordGroup struct {
	Name  string
	Words []string
}

// SentimentVocabulary is the fixed keyword set counted by KeywordFrequency.
var SentimentVocabulary = []KeywordGroup{
	{Name: "Positive", Words: []string{"good", "better", "recovered", "healing", "hope", "positive", "mild"}},
	{Name: "Negative", Words: []string{"bad", "worse", "sick", "severe", "death", "fear", "worried", "negative"}},
	{Name: "Symptoms", Words: []string{"fever", "cough", "tired", "headache", "loss", "taste", "smell", "sore", "throat"}},
}

// Search returns up to limit records whose text contains term,
// case-insensitively, in original order. Without a text column every column
// is searched.
func (d *Dataset) Search(term string, limit int) []Record {
	if d.IsEmpty() {
		return []Record{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	needle := strings.ToLower(term)
	searchAll := !d.HasColumn(ColumnText)

	out := make([]Record, 0, min(limit, d.Len()))
	for _, rec := range d.Records {
		if !rec.matches(needle, searchAll, d.Columns) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (r Record) matches(needle string, searchAll bool, columns []string) bool {
	if !searchAll {
		return strings.Contains(strings.ToLower(r.Values[ColumnText]), needle)
	}
	for _, c := range columns {
		if strings.Contains(strings.ToLower(r.Values[c]), needle) {
			return true
		}
	}
	return false
}

// DateRange is the span of parsed dates, formatted as YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Statistics summarizes the dataset. Error is set, and nothing else, when the
// dataset is empty.
type Statistics struct {
	Error      string
	TotalRows  int
	Columns    []string
	DateRange  *DateRange
	SampleText *string
}

// MarshalJSON renders {"error": ...} alone for the empty case.
func (s Statistics) MarshalJSON() ([]byte, error) {
	if s.Error != "" {
		return json.Marshal(map[string]string{"error": s.Error})
	}
	return json.Marshal(struct {
		TotalRows  int        `json:"total_tweets"`
		Columns    []string   `json:"columns"`
		DateRange  *DateRange `json:"date_range"`
		SampleText *string    `json:"sample_tweet"`
	}{s.TotalRows, s.Columns, s.DateRange, s.SampleText})
}

// HasError reports whether the statistics carry the empty-dataset marker.
func (s Statistics) HasError() bool {
	return s.Error != ""
}

// Statistics returns row count, columns, date span and a sample text.
func (d *Dataset) Statistics() Statistics {
	if d.IsEmpty() {
		return Statistics{Error: ErrNoData}
	}

	stats := Statistics{
		TotalRows: d.Len(),
		Columns:   append([]string(nil), d.Columns...),
	}

	var first, last time.Time
	found := false
	for _, rec := range d.Records {
		if rec.Date == nil {
			continue
		}
		if !found || rec.Date.Before(first) {
			first = *rec.Date
		}
		if !found || rec.Date.After(last) {
			last = *rec.Date
		}
		found = true
	}
	if found {
		stats.DateRange = &DateRange{
			Start: first.Format("2006-01-02"),
			End:   last.Format("2006-01-02"),
		}
	}

	if d.HasColumn(ColumnText) {
		for _, rec := range d.Records {
			if text := rec.Text(); strings.TrimSpace(text) != "" {
				sample := truncate(text, sampleTextLimit)
				stats.SampleText = &sample
				break
			}
		}
	}
	return stats
}

// KeywordFrequency counts raw substring occurrences of every vocabulary word
// across all text, lowercased and joined with spaces. Matches inside longer
// words are counted too ("sad" in "sadly"); the count is an approximation.
func (d *Dataset) KeywordFrequency() map[string]int {
	counts := map[string]int{}
	if d.IsEmpty() || !d.HasColumn(ColumnText) {
		return counts
	}

	texts := make([]string, len(d.Records))
	for i, rec := range d.Records {
		texts[i] = rec.Text()
	}
	all := strings.ToLower(strings.Join(texts, " "))

	for _, group := range SentimentVocabulary {
		for _, word := range group.Words {
			counts[word] = strings.Count(all, word)
		}
	}
	return counts
}

// TopicSummary describes up to three matching posts for topic.
func (d *Dataset) TopicSummary(topic string) string {
	matches := d.Search(topic, summaryMatchLimit)
	if len(matches) == 0 {
		return fmt.Sprintf("No posts found related to '%s'", topic)
	}

	var texts []string
	for _, rec := range matches {
		switch {
		case rec.Text() != "":
			texts = append(texts, rec.Text())
		case rec.Get(ColumnTextClean) != "":
			texts = append(texts, rec.Get(ColumnTextClean))
		}
	}
	if len(texts) == 0 {
		return fmt.Sprintf("Found %d posts about '%s' but no readable text content", len(matches), topic)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d posts about '%s':\n\n", len(matches), topic)
	for i, text := range texts {
		if i == summaryExamples {
			break
		}
		fmt.Fprintf(&b, "Example %d: %s...\n\n", i+1, prefix(text, summaryExampleSize))
	}
	return b.String()
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// truncate is prefix with "..." appended when s was cut.
func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return prefix(s, n) + "..."
}
