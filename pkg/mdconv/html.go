package mdconv

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	// Space is the fixed-width placeholder for one leading space.
	Space = "&nbsp;"
	// RuleWidth is the width of the expanded horizontal rule. <hr> is left
	// for the report to separate jobs.
	RuleWidth = 80

	monospaceSpan = `<span style="font-family:monospace;white-space:pre-wrap">`
	anchorStyle   = `style="font-family:inherit"`
	imageStyle    = `style="max-width:100%;height:auto;max-height:100%"`
)

var (
	paragraphTags = regexp.MustCompile(`^<p>(?:<code>)?|(?:</code>)?</p>$`)
	headingTags   = regexp.MustCompile(`<(/?)h\d>`)
)

// Options tunes ToHTML.
type Options struct {
	// PaddedTables keeps lines containing '|' monospaced so that padded
	// table columns stay aligned.
	PaddedTables bool
}

// Transcoder converts Markdown lines to HTML fragments. It is safe for
// concurrent use once built.
type Transcoder struct {
	opts Options
	md   goldmark.Markdown
}

func New(opts Options) *Transcoder {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(newTabLinks{}, 100)),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(escapedHTML{}, 100)),
		),
	)
	return &Transcoder{opts: opts, md: md}
}

// ToHTML converts one line of Markdown to an HTML fragment.
func (t *Transcoder) ToHTML(line string) string {
	if line == "* * *" {
		return strings.Repeat("-", RuleWidth)
	}

	var pre, post string
	stripped := strings.TrimLeft(line, " ")
	indent := len(line) - len(stripped)
	switch {
	case strings.HasPrefix(stripped, "* "):
		pre += strings.Repeat(Space, indent) + bullet(indent)
		line = strings.TrimPrefix(stripped, "* ")
	case indent > 0:
		// goldmark would drop (or code-block) the indentation.
		pre += strings.Repeat(Space, indent)
		line = stripped
	}
	if t.opts.PaddedTables && strings.Contains(line, "|") {
		pre += monospaceSpan
		post += "</span>"
	}

	var buf bytes.Buffer
	if err := t.md.Convert([]byte(line), &buf); err != nil {
		// Converting an in-memory buffer does not fail in practice; fall back
		// to the escaped source.
		return pre + string(util.EscapeHTML([]byte(line))) + post
	}
	out := strings.Trim(buf.String(), "\n")
	out = strings.ReplaceAll(out, "<a ", "<a "+anchorStyle+" ")
	out = strings.ReplaceAll(out, "<img ", "<img "+imageStyle+" ")

	if paragraphTags.MatchString(out) {
		return pre + paragraphTags.ReplaceAllString(out, "") + post
	}
	// Headings never render as real headings inside a report row.
	return pre + headingTags.ReplaceAllString(out, "<${1}strong>") + post
}

func bullet(indent int) string {
	switch indent {
	case 2:
		return "● "
	case 4:
		return "⯀ "
	default:
		return "○ "
	}
}

// newTabLinks marks every link to open in a new tab.
type newTabLinks struct{}

func (newTabLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == ast.KindLink || n.Kind() == ast.KindAutoLink {
			n.SetAttributeString("rel", []byte("noopener"))
			n.SetAttributeString("target", []byte("_blank"))
		}
		return ast.WalkContinue, nil
	})
}

// escapedHTML renders raw HTML found in the source as escaped text instead
// of passing it through.
type escapedHTML struct{}

func (escapedHTML) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindRawHTML, renderRawHTML)
	reg.Register(ast.KindHTMLBlock, renderHTMLBlock)
}

func renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}

func renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.HTMLBlock)
	var raw bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw.Write(seg.Value(source))
	}
	if n.HasClosure() {
		raw.Write(n.ClosureLine.Value(source))
	}
	_, _ = w.WriteString("<p>")
	_, _ = w.Write(util.EscapeHTML(bytes.TrimRight(raw.Bytes(), "\r\n")))
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}
