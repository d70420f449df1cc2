package mail

import (
	"bytes"
	"fmt"
	"html"
	"regexp"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

var placeholder = regexp.MustCompile(`{{\s*([a-z_]+)\s*}}`)

// Renderer fills template placeholders and turns markdown bodies into HTML.
// Raw HTML inside markdown is dropped by goldmark.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps())),
	}
}

func (r *Renderer) Render(tpl *entity.EmailTemplate, vars map[string]string) (string, string, error) {
	subject := substitute(tpl.Subject, vars, false)
	body := substitute(tpl.Body, vars, true)

	if tpl.Format != entity.TemplateFormatMarkdown {
		return subject, body, nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", "", fmt.Errorf("convert markdown: %w", err)
	}
	return subject, buf.String(), nil
}

// substitute replaces known placeholders; unknown ones are left untouched.
func substitute(text string, vars map[string]string, escape bool) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			return match
		}
		if escape {
			return html.EscapeString(value)
		}
		return value
	})
}
