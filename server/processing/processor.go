package processing

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/errors"
	"github.com/teilomillet/chatintel/server/middleware"
	"github.com/teilomillet/chatintel/server/provider"
	"go.uber.org/zap"
)

// FeedbackAck is the fixed reply to every accepted feedback.
const FeedbackAck = "Thank you for your feedback!"

// Processor builds prompts, calls the completion provider and wraps the
// result in response envelopes. It keeps no per-request state, so a single
// instance serves all requests concurrently.
//
// Provider failures are reported inside the envelope as "Error: <message>"
// unless StrictProviderErrors is set, in which case a ProviderError is
// returned instead.
type Processor struct {
	completer provider.Completer
	config    *config.ProcessingConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewProcessor creates a processor around completer.
func NewProcessor(cfg *config.ProcessingConfig, completer provider.Completer, logger *zap.Logger) (*Processor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("processing config is required")
	}
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Processor{
		completer: completer,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// SetClock replaces the time source used for timestamps.
func (p *Processor) SetClock(now func() time.Time) {
	p.now = now
}

// Ask answers query in the persona of mode. mode is echoed back unchanged;
// a mode without its own template is answered with DefaultMode's.
func (p *Processor) Ask(ctx context.Context, query, mode string) (*AskResult, error) {
	requestID := middleware.GetRequestID(ctx)
	if query == "" {
		return nil, errors.NewValidationError(requestID, "Query is required.", map[string]interface{}{
			"field": "query",
		})
	}
	if !IsKnownMode(mode) {
		p.logger.Debug("Unknown mode, using default template",
			zap.String(errors.RequestIDKey, requestID),
			zap.String("mode", mode),
			zap.String("template", DefaultMode),
		)
	}

	prompt, err := BuildPrompt(mode, query)
	if err != nil {
		return nil, errors.NewInternalError(requestID, err)
	}

	response, err := p.complete(ctx, prompt,
		zap.String(errors.RequestIDKey, requestID),
		zap.String("query", query),
		zap.String("mode", mode),
	)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Query processed",
		zap.String(errors.RequestIDKey, requestID),
		zap.String("query", query),
		zap.String("mode", mode),
		zap.String("response", response),
	)

	return &AskResult{
		Query:     query,
		Response:  response,
		Mode:      mode,
		Timestamp: p.timestamp(),
	}, nil
}

// Translate asks the provider to translate text into language. Callers
// resolve a missing language to DefaultLanguage; language is used as given.
func (p *Processor) Translate(ctx context.Context, text, language string) (*TranslateResult, error) {
	requestID := middleware.GetRequestID(ctx)
	if text == "" {
		return nil, errors.NewValidationError(requestID, "Text is required.", map[string]interface{}{
			"field": "text",
		})
	}
	prompt, err := BuildTranslatePrompt(text, language)
	if err != nil {
		return nil, errors.NewInternalError(requestID, err)
	}

	translated, err := p.complete(ctx, prompt,
		zap.String(errors.RequestIDKey, requestID),
		zap.String("text", text),
		zap.String("language", language),
	)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Translation processed",
		zap.String(errors.RequestIDKey, requestID),
		zap.String("text", text),
		zap.String("language", language),
		zap.String("translation", translated),
	)

	return &TranslateResult{
		OriginalText:   text,
		TranslatedText: translated,
		Language:       language,
	}, nil
}

// Feedback logs text and acknowledges it. Nothing is stored.
func (p *Processor) Feedback(ctx context.Context, text string) (*FeedbackResult, error) {
	requestID := middleware.GetRequestID(ctx)
	if text == "" {
		return nil, errors.NewValidationError(requestID, "Feedback is required.", map[string]interface{}{
			"field": "feedback",
		})
	}

	p.logger.Info("Feedback received",
		zap.String(errors.RequestIDKey, requestID),
		zap.String("feedback", text),
	)

	return &FeedbackResult{Message: FeedbackAck}, nil
}

// ListModes returns the modes that have their own template.
func (p *Processor) ListModes() *ModesResult {
	return &ModesResult{AvailableModes: Modes()}
}

// HealthCheck is a constant liveness signal; it does not contact the provider.
func (p *Processor) HealthCheck() *HealthResult {
	return &HealthResult{
		Status:    "ok",
		Timestamp: p.timestamp(),
	}
}

// complete calls the provider and applies the provider error policy.
// fields describe the interaction for the failure log line.
func (p *Processor) complete(ctx context.Context, prompt string, fields ...zap.Field) (string, error) {
	text, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		p.logger.Error("Provider call failed", append(fields, zap.Error(err))...)
		if p.config.StrictProviderErrors {
			return "", errors.NewProviderError(middleware.GetRequestID(ctx), err)
		}
		return "Error: " + err.Error(), nil
	}
	return p.formatResponse(text), nil
}

// formatResponse trims and truncates the completion as configured.
// Truncation never splits a UTF-8 sequence.
func (p *Processor) formatResponse(content string) string {
	if p.config.ResponseFormatting.TrimWhitespace {
		content = strings.TrimSpace(content)
	}
	if n := p.config.ResponseFormatting.MaxLength; n > 0 && len(content) > n {
		for n > 0 && !utf8.RuneStart(content[n]) {
			n--
		}
		content = content[:n]
	}
	return content
}

func (p *Processor) timestamp() string {
	return p.now().UTC().Format(TimestampFormat)
}
