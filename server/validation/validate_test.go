package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/chatintel/errors"
)

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		dst     func() interface{}
		wantErr string
	}{
		{
			name: "valid ask",
			body: `{"query":"Hello","mode":"creative"}`,
			dst:  func() interface{} { return &AskRequest{} },
		},
		{
			name:    "empty body",
			body:    "",
			dst:     func() interface{} { return &AskRequest{} },
			wantErr: "Query is required.",
		},
		{
			name:    "empty object",
			body:    `{}`,
			dst:     func() interface{} { return &AskRequest{} },
			wantErr: "Query is required.",
		},
		{
			name:    "empty query",
			body:    `{"query":""}`,
			dst:     func() interface{} { return &AskRequest{} },
			wantErr: "Query is required.",
		},
		{
			name:    "null query",
			body:    `{"query":null}`,
			dst:     func() interface{} { return &AskRequest{} },
			wantErr: "Query is required.",
		},
		{
			name: "whitespace query is accepted",
			body: `{"query":"   "}`,
			dst:  func() interface{} { return &AskRequest{} },
		},
		{
			name:    "missing text",
			body:    `{"language":"fr"}`,
			dst:     func() interface{} { return &TranslateRequest{} },
			wantErr: "Text is required.",
		},
		{
			name:    "missing feedback",
			body:    `{}`,
			dst:     func() interface{} { return &FeedbackRequest{} },
			wantErr: "Feedback is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decode(newRequest(tt.body), "req-1", tt.dst())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var gwErr *errors.GatewayError
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, errors.ValidationError, gwErr.Type)
			assert.Equal(t, http.StatusBadRequest, gwErr.Code)
			assert.Equal(t, "req-1", gwErr.RequestID)
			assert.Equal(t, tt.wantErr, gwErr.Message)
		})
	}
}

func TestDecodeUndecodableBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed json", body: `{"query":`, wantMsg: "decode body: unexpected end of JSON input"},
		{name: "wrong type", body: `{"query":42}`, wantMsg: "decode body: json: cannot unmarshal number"},
		{name: "array body", body: `[]`, wantMsg: "decode body: json: cannot unmarshal array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decode(newRequest(tt.body), "req-1", &AskRequest{})

			var gwErr *errors.GatewayError
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, errors.InternalError, gwErr.Type)
			assert.Equal(t, http.StatusInternalServerError, gwErr.Code)
			assert.Equal(t, "req-1", gwErr.RequestID)
			assert.True(t, strings.HasPrefix(gwErr.Message, tt.wantMsg), gwErr.Message)
		})
	}
}

func TestDecodeFillsFields(t *testing.T) {
	var req TranslateRequest
	require.NoError(t, Decode(newRequest(`{"text":"Hola","language":"fr"}`), "", &req))
	assert.Equal(t, "Hola", req.Text)
	assert.Equal(t, "fr", req.LanguageOr("en"))
}

func TestOptionalFieldsDistinguishAbsentFromEmpty(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantMode     string
		wantLanguage string
	}{
		{name: "absent", body: `{"query":"q","text":"t"}`, wantMode: "general", wantLanguage: "en"},
		{name: "null", body: `{"query":"q","text":"t","mode":null,"language":null}`, wantMode: "general", wantLanguage: "en"},
		{name: "empty", body: `{"query":"q","text":"t","mode":"","language":""}`, wantMode: "", wantLanguage: ""},
		{name: "set", body: `{"query":"q","text":"t","mode":"creative","language":"fr"}`, wantMode: "creative", wantLanguage: "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ask AskRequest
			require.NoError(t, Decode(newRequest(tt.body), "", &ask))
			assert.Equal(t, tt.wantMode, ask.ModeOr("general"))

			var translate TranslateRequest
			require.NoError(t, Decode(newRequest(tt.body), "", &translate))
			assert.Equal(t, tt.wantLanguage, translate.LanguageOr("en"))
		})
	}
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	body := `{"query":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	err := Decode(newRequest(body), "", &AskRequest{})

	var gwErr *errors.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusInternalServerError, gwErr.Code)
	assert.Contains(t, gwErr.Message, "body exceeds")
}

func TestValidateReportsJSONFieldName(t *testing.T) {
	err := Validate("", &FeedbackRequest{})

	var gwErr *errors.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "feedback", gwErr.Details["field"])
	assert.Equal(t, "required", gwErr.Details["tag"])
}
