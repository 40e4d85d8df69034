// Package markup turns chat message text into a small set of display
// segments: fenced code blocks, inline code spans, line breaks and plain text.
package markup

import (
	"html/template"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

type Kind int

const (
	Text Kind = iota
	InlineCode
	CodeBlock
	LineBreak
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case InlineCode:
		return "inline-code"
	case CodeBlock:
		return "code-block"
	case LineBreak:
		return "line-break"
	default:
		return "unknown"
	}
}

type Segment struct {
	Kind Kind
	Text string
}

// Patterns use ECMAScript semantics so that \w and [\s\S] behave the same as
// in the browser client this format originated from.
var (
	codeBlockRe  = compile("```(\\w+)?\\n([\\s\\S]*?)```")
	inlineCodeRe = compile("`([^`]+)`")
)

func compile(pattern string) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, regexp2.ECMAScript)
	re.MatchTimeout = time.Second
	return re
}

// Parse splits content into segments. Code blocks are matched first, then
// inline code in the remaining text, then newlines. Code block bodies are
// kept verbatim apart from one trailing newline.
func Parse(content string) []Segment {
	var segs []Segment
	each(codeBlockRe, content, func(plain string) {
		segs = appendInline(segs, plain)
	}, func(m *regexp2.Match) {
		body := m.GroupByNumber(2).String()
		segs = append(segs, Segment{Kind: CodeBlock, Text: strings.TrimSuffix(body, "\n")})
	})
	return segs
}

func appendInline(segs []Segment, s string) []Segment {
	each(inlineCodeRe, s, func(plain string) {
		segs = appendLines(segs, plain)
	}, func(m *regexp2.Match) {
		segs = append(segs, Segment{Kind: InlineCode, Text: m.GroupByNumber(1).String()})
	})
	return segs
}

func appendLines(segs []Segment, s string) []Segment {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			segs = append(segs, Segment{Kind: LineBreak})
		}
		if line != "" {
			segs = append(segs, Segment{Kind: Text, Text: line})
		}
	}
	return segs
}

// each walks the matches of re over s, calling plain for the text between
// matches and match for every match. regexp2 reports rune offsets.
func each(re *regexp2.Regexp, s string, plain func(string), match func(*regexp2.Match)) {
	runes := []rune(s)
	pos := 0
	m, err := re.FindRunesMatch(runes)
	for err == nil && m != nil {
		if m.Index > pos {
			plain(string(runes[pos:m.Index]))
		}
		match(m)
		pos = m.Index + m.Length
		m, err = re.FindNextMatch(m)
	}
	if pos < len(runes) {
		plain(string(runes[pos:]))
	}
}

// HTML renders segments as markup. All text is escaped.
func HTML(segs []Segment) template.HTML {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case Text:
			b.WriteString(template.HTMLEscapeString(seg.Text))
		case InlineCode:
			b.WriteString("<code>")
			b.WriteString(strings.ReplaceAll(template.HTMLEscapeString(seg.Text), "\n", "<br>"))
			b.WriteString("</code>")
		case CodeBlock:
			b.WriteString("<pre><code>")
			b.WriteString(template.HTMLEscapeString(seg.Text))
			b.WriteString("</code></pre>")
		case LineBreak:
			b.WriteString("<br>")
		}
	}
	return template.HTML(b.String())
}

// FormatMessage is Parse followed by HTML.
func FormatMessage(content string) template.HTML {
	return HTML(Parse(content))
}

// PlainText flattens segments back into display text without markup.
func PlainText(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case LineBreak:
			b.WriteByte('\n')
		case CodeBlock:
			b.WriteString(seg.Text)
			b.WriteByte('\n')
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
