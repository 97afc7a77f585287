package processing

import (
	"bytes"
	"fmt"
	"text/template"
)

// DefaultMode is used when a request names no mode, and its template is
// used for any mode outside the known set.
const DefaultMode = "general"

// DefaultLanguage is the translation target when none is given.
const DefaultLanguage = "en"

// modes lists the known modes in the order they are advertised.
var modes = []string{"creative", "professional", "analytical", "general"}

var modeTemplates = map[string]*template.Template{
	"creative":     template.Must(template.New("creative").Parse("You are a creative assistant. {{.Query}}")),
	"professional": template.Must(template.New("professional").Parse("You are a professional assistant. {{.Query}}")),
	"analytical":   template.Must(template.New("analytical").Parse("You are an analytical assistant. {{.Query}}")),
	"general":      template.Must(template.New("general").Parse("You are a helpful assistant. {{.Query}}")),
}

var translateTemplate = template.Must(template.New("translate").Parse("Translate the following text to {{.Language}}: {{.Text}}"))

// Modes returns the known modes. The slice is a copy.
func Modes() []string {
	return append([]string(nil), modes...)
}

// IsKnownMode reports whether mode has its own template.
func IsKnownMode(mode string) bool {
	_, ok := modeTemplates[mode]
	return ok
}

// BuildPrompt renders the persona prefix of mode followed by query.
// Unknown modes render with the general template.
func BuildPrompt(mode, query string) (string, error) {
	tmpl, ok := modeTemplates[mode]
	if !ok {
		tmpl = modeTemplates[DefaultMode]
	}
	return render(tmpl, struct{ Query string }{query})
}

// BuildTranslatePrompt renders the translation instruction for text.
func BuildTranslatePrompt(text, language string) (string, error) {
	return render(translateTemplate, struct{ Text, Language string }{text, language})
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template %s execution failed: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
