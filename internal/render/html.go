package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion wraps goldmark failures.
var ErrHTMLConversion = stderrors.New("html conversion failed")

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>
`

// HTMLExporter converts the rendered Markdown into a standalone page. Raw
// HTML in the document (anchors, details blocks, tables) is kept.
type HTMLExporter struct {
	md goldmark.Markdown
}

func NewHTMLExporter() *HTMLExporter {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
			gmhtml.WithXHTML(),
		),
	)
	return &HTMLExporter{md: md}
}

// Export converts markdown. goldmark has no context support, so conversion
// runs in a goroutine and the call returns early on cancellation.
func (e *HTMLExporter) Export(ctx context.Context, title, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		page string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := e.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{page: fmt.Sprintf(htmlPage, html.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.page, r.err
	}
}
