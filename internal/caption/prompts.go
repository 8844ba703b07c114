package caption

import (
	"bytes"
	_ "embed"
	"text/template"
)

// systemPrompt frames the model's role for both calls.
const systemPrompt = "You are a creative social media caption expert."

//go:embed prompts/describe.txt
var describePrompt string

//go:embed prompts/captions.txt
var captionsTemplateText string

// template.Must panics on a malformed template, catching errors at program
// startup rather than at call time.
var captionsTmpl = template.Must(template.New("captions").Parse(captionsTemplateText))

// renderCaptionsPrompt injects the image description into the caption
// request template.
func renderCaptionsPrompt(description string) string {
	var buf bytes.Buffer
	if err := captionsTmpl.Execute(&buf, struct{ Description string }{description}); err != nil {
		// The template is static and the data is one string; execution
		// cannot fail at runtime.
		return captionsTemplateText
	}
	return buf.String()
}
