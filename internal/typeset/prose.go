package typeset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Prose flattens markdown to plain text for a terminal region.
// Math segments are shielded from the markdown parser and come back
// as markup, so a later typeset pass still renders them.
func Prose(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}

	shielded, math := shieldMath(source)
	src := []byte(shielded)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	w := &proseWriter{source: src}
	_ = ast.Walk(doc, w.visit)

	flat := strings.ReplaceAll(strings.TrimSpace(w.sb.String()), "$", `\$`)
	return restoreMath(flat, math)
}

const (
	shieldOpen  = "\uE000"
	shieldClose = "\uE001"
)

func shieldMath(source string) (string, []string) {
	var sb strings.Builder
	var math []string
	for _, seg := range Split(source) {
		if !seg.Math {
			sb.WriteString(seg.Text)
			continue
		}
		fmt.Fprintf(&sb, "%s%d%s", shieldOpen, len(math), shieldClose)
		math = append(math, Wrap(seg.Text))
	}
	return sb.String(), math
}

func restoreMath(s string, math []string) string {
	for i, m := range math {
		s = strings.ReplaceAll(s, fmt.Sprintf("%s%d%s", shieldOpen, i, shieldClose), m)
	}
	return s
}

type proseWriter struct {
	source []byte
	sb     strings.Builder
	depth  int
}

func (w *proseWriter) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if !entering {
			w.sb.WriteString("\n\n")
		}
	case *ast.Paragraph:
		if !entering {
			if _, inItem := node.Parent().(*ast.ListItem); inItem {
				w.sb.WriteString("\n")
			} else {
				w.sb.WriteString("\n\n")
			}
		}
	case *ast.TextBlock:
		if !entering {
			w.sb.WriteString("\n")
		}
	case *ast.List:
		if entering {
			w.depth++
		} else {
			w.depth--
			if w.depth == 0 {
				w.sb.WriteString("\n")
			}
		}
	case *ast.ListItem:
		if entering {
			w.sb.WriteString(strings.Repeat("  ", w.depth-1))
			w.sb.WriteString(listMarker(node))
		}
	case *ast.Text:
		if entering {
			w.sb.Write(node.Segment.Value(w.source))
			switch {
			case node.HardLineBreak():
				w.sb.WriteString("\n")
			case node.SoftLineBreak():
				w.sb.WriteString(" ")
			}
		}
	case *ast.String:
		if entering {
			w.sb.Write(node.Value)
		}
	case *ast.AutoLink:
		if entering {
			w.sb.Write(node.URL(w.source))
			return ast.WalkSkipChildren, nil
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				w.sb.WriteString("    ")
				w.sb.Write(seg.Value(w.source))
			}
			w.sb.WriteString("\n")
			return ast.WalkSkipChildren, nil
		}
	case *ast.ThematicBreak:
		if entering {
			w.sb.WriteString("───\n\n")
		}
	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}
	index := list.Start
	for sib := item.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
		index++
	}
	return strconv.Itoa(index) + ". "
}
