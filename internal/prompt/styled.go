package prompt

import (
	"strings"

	"github.com/muesli/termenv"
)

// Style is the look of a span. FG is a "#rrggbb" color; empty keeps the
// terminal default.
type Style struct {
	FG   string
	Bold bool
}

// Span is a run of text with one style.
type Span struct {
	Text  string
	Style Style
}

// StyledBuf is an ordered list of spans.
type StyledBuf struct {
	spans []Span
}

// Push appends text. Empty text is dropped, so optional values can be
// pushed without checking them first.
func (b *StyledBuf) Push(text string, style Style) {
	if text == "" {
		return
	}
	b.spans = append(b.spans, Span{Text: text, Style: style})
}

// Append adds every span of other.
func (b *StyledBuf) Append(other StyledBuf) {
	b.spans = append(b.spans, other.spans...)
}

func (b StyledBuf) Spans() []Span {
	out := make([]Span, len(b.spans))
	copy(out, b.spans)
	return out
}

func (b StyledBuf) Empty() bool { return len(b.spans) == 0 }

// Plain returns the text without styling.
func (b StyledBuf) Plain() string {
	var sb strings.Builder
	for _, span := range b.spans {
		sb.WriteString(span.Text)
	}
	return sb.String()
}

// String renders the buffer for profile. The Ascii profile yields plain text.
func (b StyledBuf) String(profile termenv.Profile) string {
	var sb strings.Builder
	for _, span := range b.spans {
		style := profile.String(span.Text)
		if span.Style.FG != "" {
			style = style.Foreground(profile.Color(span.Style.FG))
		}
		if span.Style.Bold {
			style = style.Bold()
		}
		sb.WriteString(style.String())
	}
	return sb.String()
}
