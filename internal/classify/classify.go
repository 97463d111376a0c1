// Package classify maps free text to categories and query fragments using
// fixed keyword tables.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Category is the coarse class of a user message.
type Category string

const (
	CategoryMedical      Category = "medical"
	CategoryDataAnalysis Category = "data-analysis"
	CategoryGeneral      Category = "general"
)

// Rule pairs a category with the keywords that select it.
type Rule struct {
	Category Category
	Keywords []string
}

// Rules is evaluated in order; the first rule with any substring match wins.
// The general rule has no keywords and is reached only by fall-through.
var Rules = []Rule{
	{Category: CategoryMedical, Keywords: []string{"symptom", "omicron", "covid", "fever", "cough", "health"}},
	{Category: CategoryDataAnalysis, Keywords: []string{"analyze", "data", "statistics", "trend"}},
	{Category: CategoryGeneral},
}

// Classify returns the category of text. Every input maps to exactly one category.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, rule := range Rules {
		if containsAny(lower, rule.Keywords) {
			return rule.Category
		}
	}
	return CategoryGeneral
}

// medicalKeywords and dataKeywords are disjoint.
var (
	medicalKeywords = []string{
		"symptom", "disease", "medicine", "treatment", "doctor", "hospital",
		"health", "medical", "diagnosis", "cure", "therapy", "medication",
		"virus", "vaccine", "infection", "fever", "cough", "pain", "sick",
		"illness", "patient", "clinic", "headache", "fatigue", "sore throat",
		"body ache", "recovery", "quarantine", "isolation", "test", "positive",
		"negative", "healthcare",
	}
	dataKeywords = []string{
		"omicron", "covid", "coronavirus", "experience", "people", "tweet",
		"social media", "report", "dataset", "csv",
	}
)

// IsMedicalQuery reports whether text mentions a clinical term.
func IsMedicalQuery(text string) bool {
	return containsAny(strings.ToLower(text), medicalKeywords)
}

// IsDataRelatedQuery reports whether text could use dataset context.
func IsDataRelatedQuery(text string) bool {
	return containsAny(strings.ToLower(text), dataKeywords)
}

const maxSearchTerms = 3

var (
	searchStopWords = map[string]struct{}{
		"search": {}, "find": {}, "about": {}, "related": {}, "to": {}, "for": {},
		"tweets": {}, "posts": {}, "data": {}, "omicron": {}, "show": {}, "me": {},
	}
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	quotedPattern = regexp.MustCompile(`"([^"]*)"`)
)

// ExtractSearchTerms returns at most three terms: lowercased words that are
// not stop words and longer than two characters, followed by double-quoted
// phrases verbatim.
func ExtractSearchTerms(text string) []string {
	var terms []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := searchStopWords[word]; stop || utf8.RuneCountInString(word) <= 2 {
			continue
		}
		terms = append(terms, word)
	}
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			terms = append(terms, m[1])
		}
	}
	if len(terms) > maxSearchTerms {
		terms = terms[:maxSearchTerms]
	}
	return terms
}

// DefaultTopic is returned when no topic can be extracted.
const DefaultTopic = "omicron"

// topicWords matches one or more letter/digit words separated by whitespace.
const topicWords = `[\p{L}\p{N}_]+(?:\s+[\p{L}\p{N}_]+)*`

var (
	topicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`about\s+(` + topicWords + `)`),
		regexp.MustCompile(`of\s+(` + topicWords + `)`),
		regexp.MustCompile(`regarding\s+(` + topicWords + `)`),
		regexp.MustCompile(`concerning\s+(` + topicWords + `)`),
	}
	topicTerms = []string{"symptom", "vaccine", "treatment", "recovery", "isolation", "testing"}
)

// ExtractTopic finds the subject of a summary request.
func ExtractTopic(text string) string {
	lower := strings.ToLower(text)
	for _, p := range topicPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	for _, term := range topicTerms {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return DefaultTopic
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
