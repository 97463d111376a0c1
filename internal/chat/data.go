package chat

import (
	"fmt"
	"strings"

	"github.com/Skufu/medicare-assistant/internal/classify"
	"github.com/Skufu/medicare-assistant/internal/dataset"
)

const (
	answerSearchLimit = 5
	answerShown       = 3
	answerPreview     = 150
)

const (
	msgNoData     = "I'm sorry, I couldn't load the omicron data. Please make sure the CSV file is available."
	msgNoTerms    = "Please specify what you'd like to search for in the omicron data."
	msgNoKeywords = "I couldn't analyze sentiment from the current data."
	msgDataHelp   = "I can help you analyze the omicron data. Try asking for statistics, searching for specific topics, or requesting summaries!"
)

// DataAnswerer answers questions about the loaded dataset without calling a
// generator.
type DataAnswerer struct {
	data DatasetSource
}

func NewDataAnswerer(data DatasetSource) *DataAnswerer {
	return &DataAnswerer{data: data}
}

// Answer dispatches on the detected data intent.
func (a *DataAnswerer) Answer(query string) string {
	ds := a.data.Current()
	switch classify.DetectDataIntent(query) {
	case classify.IntentStatistics:
		return answerStatistics(ds)
	case classify.IntentSearch:
		return answerSearch(ds, query)
	case classify.IntentSummary:
		topic := classify.ExtractTopic(query)
		return fmt.Sprintf("📝 **Summary about '%s':**\n\n%s", topic, ds.TopicSummary(topic))
	case classify.IntentSentiment:
		return answerSentiment(ds)
	default:
		return msgDataHelp
	}
}

func answerStatistics(ds *dataset.Dataset) string {
	stats := ds.Statistics()
	if stats.HasError() {
		return msgNoData
	}

	var b strings.Builder
	b.WriteString("📊 **Omicron Data Statistics:**\n\n")
	fmt.Fprintf(&b, "• Total posts: %d\n", stats.TotalRows)
	fmt.Fprintf(&b, "• Data columns: %s\n", strings.Join(stats.Columns, ", "))
	if stats.DateRange != nil {
		fmt.Fprintf(&b, "• Date range: %s to %s\n", stats.DateRange.Start, stats.DateRange.End)
	}
	if stats.SampleText != nil {
		fmt.Fprintf(&b, "• Sample post: %s\n", *stats.SampleText)
	}
	return b.String()
}

func answerSearch(ds *dataset.Dataset, query string) string {
	terms := classify.ExtractSearchTerms(query)
	if len(terms) == 0 {
		return msgNoTerms
	}
	joined := strings.Join(terms, ", ")

	var results []dataset.Record
	for _, term := range terms {
		results = append(results, ds.Search(term, answerSearchLimit)...)
	}
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any posts related to '%s' in the omicron data.", joined)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Found %d posts about '%s':**\n\n", len(results), joined)
	for i, rec := range results {
		if i == answerShown {
			break
		}
		text := rec.Text()
		if text == "" {
			text = rec.Get(dataset.ColumnTextClean)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		preview := clip(text, answerPreview)
		if preview != text {
			preview += "..."
		}
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, preview)
	}
	if len(results) > answerShown {
		fmt.Fprintf(&b, "... and %d more posts found.", len(results)-answerShown)
	}
	return b.String()
}

func answerSentiment(ds *dataset.Dataset) string {
	counts := ds.KeywordFrequency()
	if len(counts) == 0 {
		return msgNoKeywords
	}

	var b strings.Builder
	b.WriteString("😊 **Sentiment Analysis of Omicron Posts:**\n\n")
	for _, group := range dataset.SentimentVocabulary {
		fmt.Fprintf(&b, "**%s mentions:**\n", group.Name)
		for _, word := range group.Words {
			if n := counts[word]; n > 0 {
				fmt.Fprintf(&b, "• %s: %d times\n", word, n)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
