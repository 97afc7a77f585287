// Package validation decodes and validates the JSON bodies of the API.
package validation

// The message tag holds the client-facing text reported when a field fails
// validation.

// AskRequest is the body of POST /api/ask. Mode is nil when the key is absent.
type AskRequest struct {
	Query string  `json:"query" validate:"required" message:"Query is required."`
	Mode  *string `json:"mode"`
}

// ModeOr returns the requested mode, or def when the key was absent.
func (r *AskRequest) ModeOr(def string) string {
	if r.Mode == nil {
		return def
	}
	return *r.Mode
}

// TranslateRequest is the body of POST /api/translate. Language is nil when
// the key is absent.
type TranslateRequest struct {
	Text     string  `json:"text" validate:"required" message:"Text is required."`
	Language *string `json:"language"`
}

// LanguageOr returns the requested language, or def when the key was absent.
func (r *TranslateRequest) LanguageOr(def string) string {
	if r.Language == nil {
		return def
	}
	return *r.Language
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required" message:"Feedback is required."`
}
