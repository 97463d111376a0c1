package chat

import (
	"fmt"
	"strings"

	"github.com/Skufu/medicare-assistant/internal/classify"
	"github.com/Skufu/medicare-assistant/internal/dataset"
)

const (
	recentTurns        = 4
	recentTurnLength   = 100
	minTurnsForContext = 2
	sampleSearchLimit  = 3
	sampleTexts        = 2
	sampleTextLength   = 100
)

const omicronContext = "Brief Omicron Reference: Mild COVID variant with sore throat, fatigue, runny nose. Recovery in 3-7 days typically."

var categoryGuidance = map[classify.Category]string{
	classify.CategoryMedical: `Guidance:
- Provide evidence-based medical information
- Be empathetic and supportive
- Explain medical concepts clearly
- Always recommend consulting healthcare professionals for serious concerns`,
	classify.CategoryDataAnalysis: `Guidance:
- The user is asking about trends or data; summarize any dataset context provided
- Say plainly when the data does not cover the question`,
	classify.CategoryGeneral: `Guidance:
- Be friendly and informative
- If discussing health topics, remind the user to consult healthcare professionals when appropriate`,
}

const promptInstructions = `Instructions:
- Be professional, caring, and comprehensive
- Prioritize general health guidance and service-specific help
- Provide actionable, practical advice
- Use emojis and clear formatting
- Include appropriate medical disclaimers
- If omicron/COVID mentioned, give brief helpful info but focus on general health
- Tailor response to selected service when relevant

Response format: Professional, well-structured with clear sections and helpful guidance.`

// PromptInput is everything BuildPrompt embeds.
type PromptInput struct {
	Query       string
	UserName    string
	Service     Service
	Category    classify.Category
	DataContext string
	History     []Turn
}

// BuildPrompt composes the text sent to a generator.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("You are MediCare AI, a comprehensive healthcare assistant.\n\n")
	fmt.Fprintf(&b, "User: %s\n", displayName(in.UserName))
	fmt.Fprintf(&b, "Service Selected: %s\n\n", in.Service.Label())
	b.WriteString(in.Service.Context())
	b.WriteString("\n\n")

	b.WriteString(`PRIORITY ORDER:
1. GENERAL HEALTH QUERIES (highest priority)
2. Service-specific assistance
3. Emergency medical guidance
4. Insurance and appointment help
5. Omicron/COVID info (lowest priority - only if specifically asked)

`)

	if guidance, ok := categoryGuidance[in.Category]; ok {
		b.WriteString(guidance)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "User Query: %s\n\n", in.Query)

	if classify.MentionsOmicron(in.Query) {
		b.WriteString(omicronContext)
		b.WriteString("\n\n")
	}
	if in.DataContext != "" {
		fmt.Fprintf(&b, "Available data context: %s\n\n", in.DataContext)
	}
	if len(in.History) > minTurnsForContext {
		b.WriteString("Recent conversation:\n")
		for _, turn := range NewHistory(in.History...).Recent(recentTurns) {
			role := "User"
			if turn.Role == RoleAssistant {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s...\n", role, clip(turn.Content, recentTurnLength))
		}
		b.WriteString("\n")
	}

	b.WriteString(promptInstructions)
	return b.String()
}

// DataContext summarizes the dataset for a data-related query, or returns ""
// when the query is unrelated or no data is loaded.
func DataContext(ds *dataset.Dataset, query string) string {
	if !classify.IsDataRelatedQuery(query) {
		return ""
	}
	stats := ds.Statistics()
	if stats.HasError() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset context: %d omicron-related posts available.", stats.TotalRows)

	if !classify.WantsSamples(query) {
		return b.String()
	}
	terms := classify.ExtractSearchTerms(query)
	if len(terms) == 0 {
		return b.String()
	}

	written := 0
	for _, rec := range ds.Search(terms[0], sampleSearchLimit) {
		if written == sampleTexts {
			break
		}
		text := clip(rec.Text(), sampleTextLength)
		if text == "" {
			continue
		}
		if written == 0 {
			b.WriteString(" Sample experiences from data:")
		}
		fmt.Fprintf(&b, " %q...", text)
		written++
	}
	return b.String()
}
