package typeset

import (
	"strings"
	"testing"
)

func TestLaTeX(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`x^2+1`, "x²+1"},
		{`x^{10}`, "x¹⁰"},
		{`x_1 + x_{2}`, "x₁ + x₂"},
		{`\frac{1}{2}`, "1/2"},
		{`\frac{x+1}{2}`, "(x+1)/2"},
		{`\frac{d}{dx}`, "d/dx"},
		{`\sqrt{x}`, "√x"},
		{`\sqrt{x^2+1}`, "√(x²+1)"},
		{`\sqrt[3]{8}`, "∛8"},
		{`2 \times 3 \div 4`, "2 × 3 ÷ 4"},
		{`\alpha \leq \beta`, "α ≤ β"},
		{`\left( a \right)`, "( a )"},
		{`\int_0^1 x\,dx`, "∫₀¹ x dx"},
		{`e^{i\pi}`, "e^iπ"},
		{`\sin x + \cos y`, "sin x + cos y"},
		{`\text{area} = \pi r^2`, "area = π r²"},
		{`x - 3 = -7`, "x − 3 = −7"},
		{`\mathbb{R}`, "ℝ"},
		{`\binom{n}{k}`, "C(n, k)"},
		{`\unknown{x}`, "unknownx"},
	}
	for _, tc := range cases {
		if got := LaTeX(tc.in); got != tc.want {
			t.Errorf("LaTeX(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLaTeXUnmappableScriptIsParenthesised(t *testing.T) {
	got := LaTeX(`\lim_{x \to 0} f`)
	if got != "lim_(x → 0) f" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestWrap(t *testing.T) {
	if got := Wrap("x^2+1"); got != "$$x^2+1$$" {
		t.Fatalf("expected $$x^2+1$$, got %q", got)
	}
}

func TestSplit(t *testing.T) {
	segs := Split(`Answer: $$x^2$$ and \(y_1\) cost \$5`)
	want := []Segment{
		{Text: "Answer: "},
		{Text: "x^2", Math: true},
		{Text: " and "},
		{Text: "y_1", Math: true},
		{Text: " cost $5"},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %#v", len(want), len(segs), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d: expected %#v, got %#v", i, want[i], segs[i])
		}
	}
}

func TestSplitUnterminated(t *testing.T) {
	segs := Split("price $$ unbalanced")
	if len(segs) != 1 || segs[0].Math || segs[0].Text != "price $$ unbalanced" {
		t.Fatalf("unterminated delimiter should stay plain: %#v", segs)
	}
}

func TestRender(t *testing.T) {
	got := Render(`Result: $$\frac{1}{2}$$ (approx)`)
	if got != "Result: 1/2 (approx)" {
		t.Fatalf("unexpected render %q", got)
	}
	if Render("plain text") != "plain text" {
		t.Fatalf("plain text must be untouched")
	}
}

func TestProseFlattensMarkdownAndKeepsMath(t *testing.T) {
	src := "## Idea\n\nMove **3** to the right: $2x = 4$.\n\n1. Add 3\n2. Divide by 2\n"
	got := Prose(src)

	if strings.Contains(got, "**") || strings.Contains(got, "##") {
		t.Fatalf("markdown markers should be removed: %q", got)
	}
	if !strings.Contains(got, "Idea") {
		t.Fatalf("heading text missing: %q", got)
	}
	if !strings.Contains(got, "$$2x = 4$$") {
		t.Fatalf("math should survive as markup: %q", got)
	}
	if !strings.Contains(got, "1. Add 3") || !strings.Contains(got, "2. Divide by 2") {
		t.Fatalf("ordered list items missing: %q", got)
	}
	if rendered := Render(got); !strings.Contains(rendered, "2x = 4") || strings.Contains(rendered, "$") {
		t.Fatalf("expected math to typeset cleanly, got %q", rendered)
	}
}

func TestProseKeepsLiteralDollars(t *testing.T) {
	got := Render(Prose(`It costs \$5 today.`))
	if got != "It costs $5 today." {
		t.Fatalf("expected literal dollar, got %q", got)
	}
}

func TestProseEmpty(t *testing.T) {
	if Prose("  \n ") != "" {
		t.Fatalf("expected empty output")
	}
}

func TestEngineCountsPasses(t *testing.T) {
	e := NewEngine()
	if e.Typeset("$$x^2$$") != "x²" {
		t.Fatalf("engine should render math")
	}
	e.Pass()
	e.Pass()
	if e.Passes() != 2 {
		t.Fatalf("expected 2 passes, got %d", e.Passes())
	}
}
