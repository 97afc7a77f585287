// Package processing turns validated user input into provider prompts and
// shapes the provider's answer into the response envelopes of the API.
package processing

// TimestampFormat is UTC ISO-8601 without zone suffix, microsecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000000"

// AskResult is the envelope returned by /api/ask.
type AskResult struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	Mode      string `json:"mode"`
	Timestamp string `json:"timestamp"`
}

// TranslateResult is the envelope returned by /api/translate.
type TranslateResult struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Language       string `json:"language"`
}

// FeedbackResult acknowledges a feedback submission.
type FeedbackResult struct {
	Message string `json:"message"`
}

// ModesResult lists the modes accepted by the ask endpoint.
type ModesResult struct {
	AvailableModes []string `json:"available_modes"`
}

// HealthResult is the liveness reply.
type HealthResult struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
