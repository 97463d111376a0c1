package dataset

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFeverReturnsFirstFiveInOrder(t *testing.T) {
	ds := parseSample(t)

	results := ds.Search("fever", 5)

	require.Len(t, results, 5)
	wantUsers := []string{"@alice", "bob", "dave", "erin", "frank"}
	for i, rec := range results {
		assert.Contains(t, strings.ToLower(rec.Text()), "fever")
		assert.Equal(t, wantUsers[i], rec.Get("user"))
	}
}

func TestSearchCaps(t *testing.T) {
	ds := parseSample(t)

	assert.Len(t, ds.Search("FEVER", 2), 2)
	assert.Len(t, ds.Search("cough", 0), 2, "non-positive limit uses default")
	assert.Empty(t, ds.Search("measles", 10))
}

func TestSearchEmptyDataset(t *testing.T) {
	results := Empty().Search("fever", 5)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchWithoutTextColumnScansAllColumns(t *testing.T) {
	ds, err := Parse(strings.NewReader("title,body\nFlu season,stay home\nNews,Fever clinic opens\n"), ',')
	require.NoError(t, err)

	results := ds.Search("fever", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "News", results[0].Get("title"))
}

func TestStatistics(t *testing.T) {
	ds := parseSample(t)

	stats := ds.Statistics()

	assert.False(t, stats.HasError())
	assert.Equal(t, 7, stats.TotalRows)
	assert.Equal(t, ds.Columns, stats.Columns)
	require.NotNil(t, stats.DateRange)
	assert.Equal(t, "2022-01-01", stats.DateRange.Start)
	assert.Equal(t, "2022-01-05", stats.DateRange.End)
	require.NotNil(t, stats.SampleText)
	assert.Equal(t, ds.Records[0].Text(), *stats.SampleText)
}

func TestStatisticsTruncatesSample(t *testing.T) {
	long := strings.Repeat("x", 250)
	ds, err := Parse(strings.NewReader("text\n\"\"\n"+long+"\n"), ',')
	require.NoError(t, err)

	stats := ds.Statistics()
	require.NotNil(t, stats.SampleText)
	assert.Equal(t, strings.Repeat("x", 200)+"...", *stats.SampleText)
	assert.Nil(t, stats.DateRange)
}

func TestStatisticsEmptyDatasetReturnsMarker(t *testing.T) {
	stats := Empty().Statistics()

	assert.True(t, stats.HasError())
	assert.Equal(t, ErrNoData, stats.Error)

	raw, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No data available"}`, string(raw))
}

func TestStatisticsJSONKeys(t *testing.T) {
	raw, err := json.Marshal(parseSample(t).Statistics())
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.EqualValues(t, 7, body["total_tweets"])
	assert.Contains(t, body, "sample_tweet")
	assert.Contains(t, body, "date_range")
	assert.Contains(t, body, "columns")
}

func TestKeywordFrequencyCountsRawSubstrings(t *testing.T) {
	ds := parseSample(t)

	counts := ds.KeywordFrequency()

	assert.Equal(t, 6, counts["fever"])
	assert.Equal(t, 2, counts["cough"])
	assert.Equal(t, 2, counts["tired"])
	assert.Equal(t, 1, counts["recovered"])
	assert.Equal(t, 1, counts["hope"])
	assert.Equal(t, 0, counts["death"])

	vocab := 0
	for _, g := range SentimentVocabulary {
		vocab += len(g.Words)
	}
	assert.Len(t, counts, vocab)
}

func TestKeywordFrequencyOvercountsInsideWords(t *testing.T) {
	ds, err := Parse(strings.NewReader("text\nbadly worded but goodness prevails\n"), ',')
	require.NoError(t, err)

	counts := ds.KeywordFrequency()
	assert.Equal(t, 1, counts["bad"])
	assert.Equal(t, 1, counts["good"])
}

func TestKeywordFrequencyEmpty(t *testing.T) {
	assert.Empty(t, Empty().KeywordFrequency())
}

func TestTopicSummary(t *testing.T) {
	ds := parseSample(t)

	summary := ds.TopicSummary("cough")
	assert.True(t, strings.HasPrefix(summary, "Found 2 posts about 'cough':"))
	assert.Contains(t, summary, "Example 1: sore throat and cough www.example.com...")
	assert.NotContains(t, summary, "Example 3")

	assert.Equal(t, "No posts found related to 'measles'", ds.TopicSummary("measles"))
}
