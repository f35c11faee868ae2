// Package typeset renders math markup for the terminal.
//
// Result regions hold markup the way the service and the web front end
// exchange it: LaTeX inside $$…$$ (or \[…\], \(…\), $…$) mixed with plain
// text. A typeset pass replaces each math segment with its Unicode
// rendering and leaves the surrounding text alone.
package typeset

import "strings"

// Wrap marks expr as display math.
func Wrap(expr string) string {
	return "$$" + expr + "$$"
}

// Segment is a run of markup that is either math or plain text.
type Segment struct {
	Text string
	Math bool
}

var delimiters = []struct{ open, close string }{
	{"$$", "$$"},
	{`\[`, `\]`},
	{`\(`, `\)`},
	{"$", "$"},
}

// Split breaks markup into plain and math segments. An unterminated
// opening delimiter, or an empty pair, is kept as plain text. "\$" is a
// literal dollar.
func Split(markup string) []Segment {
	var segs []Segment
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			segs = append(segs, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(markup) {
		if strings.HasPrefix(markup[i:], `\$`) {
			plain.WriteByte('$')
			i += 2
			continue
		}
		matched := false
		for _, d := range delimiters {
			if !strings.HasPrefix(markup[i:], d.open) {
				continue
			}
			start := i + len(d.open)
			end := indexClose(markup[start:], d.close)
			if end <= 0 {
				continue
			}
			flush()
			segs = append(segs, Segment{Text: markup[start : start+end], Math: true})
			i = start + end + len(d.close)
			matched = true
			break
		}
		if matched {
			continue
		}
		plain.WriteByte(markup[i])
		i++
	}
	flush()
	return segs
}

// indexClose finds close in s, skipping backslash-escaped dollars.
func indexClose(s, close string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && close[0] == '$' && i+1 < len(s) && s[i+1] == '$' {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], close) {
			return i
		}
	}
	return -1
}

// Render typesets every math segment in markup.
func Render(markup string) string {
	var sb strings.Builder
	for _, seg := range Split(markup) {
		if seg.Math {
			sb.WriteString(LaTeX(seg.Text))
			continue
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// Engine is the terminal typesetter handed to the UI.
type Engine struct {
	passes int
}

// NewEngine returns a ready typesetter.
func NewEngine() *Engine {
	return &Engine{}
}

// Typeset renders the math in one region body.
func (e *Engine) Typeset(markup string) string {
	return Render(markup)
}

// Pass records that a full typeset pass ran.
func (e *Engine) Pass() {
	e.passes++
}

// Passes returns the number of typeset passes so far.
func (e *Engine) Passes() int {
	return e.passes
}
