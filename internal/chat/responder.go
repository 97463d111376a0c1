package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Skufu/medicare-assistant/internal/classify"
	"github.com/Skufu/medicare-assistant/internal/dataset"
	"github.com/Skufu/medicare-assistant/internal/llm"
	"github.com/Skufu/medicare-assistant/internal/logging"
)

// SourceTemplate marks a reply that came from the static templates.
const SourceTemplate = "template"

const medicalDisclaimer = "\n\n⚠️ **Medical Disclaimer**: This information is for educational purposes only. Always consult qualified healthcare professionals for medical advice, diagnosis, or treatment."

var disclaimerKeywords = []string{"treatment", "cure", "medication", "diagnosis"}

// TextGenerator produces generated text for a prompt. *llm.Chain implements it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (llm.Result, error)
}

// DatasetSource exposes the currently loaded dataset. *dataset.Store
// implements it.
type DatasetSource interface {
	Current() *dataset.Dataset
}

// Request is one user message with its session context.
type Request struct {
	Message  string
	UserName string
	Service  Service
	History  []Turn
}

// Reply is the text returned to the user and where it came from.
type Reply struct {
	Text     string
	Source   string
	Category classify.Category
}

// Responder answers chat messages: generation first, templates on failure.
type Responder struct {
	generator TextGenerator
	data      DatasetSource
	logger    *zap.Logger
}

func NewResponder(generator TextGenerator, data DatasetSource, logger *zap.Logger) *Responder {
	return &Responder{
		generator: generator,
		data:      data,
		logger:    logger.Named("chat"),
	}
}

// Respond always returns text. Generation failures of any kind produce the
// service template.
func (r *Responder) Respond(ctx context.Context, req Request) Reply {
	category := classify.Classify(req.Message)
	fallback := Reply{
		Text:     Template(req.Service, req.UserName, req.Message),
		Source:   SourceTemplate,
		Category: category,
	}
	if r.generator == nil {
		return fallback
	}

	var dataContext string
	if r.data != nil {
		dataContext = DataContext(r.data.Current(), req.Message)
	}
	prompt := BuildPrompt(PromptInput{
		Query:       req.Message,
		UserName:    req.UserName,
		Service:     req.Service,
		Category:    category,
		DataContext: dataContext,
		History:     req.History,
	})

	res, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			r.logger.Debug("no generator configured, using template",
				zap.Stringer("service", req.Service))
		} else {
			r.logger.Info("generation unavailable, using template",
				zap.Stringer("service", req.Service),
				zap.String("error", logging.RedactError(err)))
		}
		return fallback
	}

	text := res.Text
	if classify.IsMedicalQuery(req.Message) && mentionsAny(req.Message, disclaimerKeywords) {
		text += medicalDisclaimer
	}
	return Reply{Text: text, Source: res.Provider, Category: category}
}

func mentionsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
