package classify

import "strings"

// DataIntent is what a dataset question asks for.
type DataIntent string

const (
	IntentStatistics DataIntent = "statistics"
	IntentSearch     DataIntent = "search"
	IntentSummary    DataIntent = "summary"
	IntentSentiment  DataIntent = "sentiment"
	IntentNone       DataIntent = "none"
)

var intentRules = []struct {
	intent   DataIntent
	keywords []string
}{
	{IntentStatistics, []string{"statistics", "stats", "how many", "count", "total"}},
	{IntentSearch, []string{"search", "find", "about", "related to"}},
	{IntentSummary, []string{"summary", "summarize", "tell me about"}},
	{IntentSentiment, []string{"sentiment", "feeling", "emotion", "positive", "negative"}},
}

// DetectDataIntent returns the first matching intent, in table order.
func DetectDataIntent(text string) DataIntent {
	lower := strings.ToLower(text)
	for _, r := range intentRules {
		if containsAny(lower, r.keywords) {
			return r.intent
		}
	}
	return IntentNone
}

// symptomSampleKeywords trigger inclusion of sample posts in prompt context.
var symptomSampleKeywords = []string{"symptom", "experience", "recovery", "fever", "cough"}

// WantsSamples reports whether a data-related query should carry example posts.
func WantsSamples(text string) bool {
	return containsAny(strings.ToLower(text), symptomSampleKeywords)
}

var topicContextKeywords = []string{"omicron", "covid"}

// MentionsOmicron reports whether text names the Omicron/COVID topic.
func MentionsOmicron(text string) bool {
	return containsAny(strings.ToLower(text), topicContextKeywords)
}
