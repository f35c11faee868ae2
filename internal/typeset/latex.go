package typeset

import (
	"strings"
	"unicode"
)

// LaTeX converts a LaTeX math expression to plain Unicode text.
// Unknown commands degrade to their bare names rather than failing.
func LaTeX(expr string) string {
	p := &parser{src: []rune(expr)}
	return collapseSpaces(p.sequence(false))
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// sequence renders atoms until the end of input, or until the closing
// brace of the current group when inGroup is set.
func (p *parser) sequence(inGroup bool) string {
	var sb strings.Builder
	for !p.eof() {
		c := p.peek()
		switch c {
		case '}':
			p.pos++
			if inGroup {
				return sb.String()
			}
		case '^':
			p.pos++
			sb.WriteString(superscript(p.argument()))
		case '_':
			p.pos++
			sb.WriteString(subscript(p.argument()))
		default:
			sb.WriteString(p.atom())
		}
	}
	return sb.String()
}

// atom renders one group, command or character.
func (p *parser) atom() string {
	c := p.peek()
	switch {
	case c == '{':
		p.pos++
		return p.sequence(true)
	case c == '\\':
		p.pos++
		return p.command(p.commandName())
	case c == '&':
		p.pos++
		return " "
	case c == '~':
		p.pos++
		return " "
	case c == '-':
		p.pos++
		return "−"
	case c == '*':
		p.pos++
		return "·"
	case unicode.IsSpace(c):
		p.pos++
		return " "
	default:
		p.pos++
		return string(c)
	}
}

// argument renders the next group or single atom, skipping blanks.
func (p *parser) argument() string {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
	if p.eof() {
		return ""
	}
	return strings.TrimSpace(p.atom())
}

// optional renders a [..] argument if one follows.
func (p *parser) optional() string {
	if p.peek() != '[' {
		return ""
	}
	p.pos++
	start := p.pos
	for !p.eof() && p.peek() != ']' {
		p.pos++
	}
	inner := string(p.src[start:p.pos])
	if !p.eof() {
		p.pos++
	}
	return LaTeX(inner)
}

func (p *parser) commandName() string {
	if p.eof() {
		return ""
	}
	start := p.pos
	if !unicode.IsLetter(p.peek()) {
		p.pos++
		return string(p.src[start:p.pos])
	}
	for !p.eof() && unicode.IsLetter(p.peek()) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) command(name string) string {
	if sym, ok := symbols[name]; ok {
		return sym
	}
	if functions[name] {
		return name
	}
	switch name {
	case "frac", "dfrac", "tfrac", "cfrac":
		num := p.argument()
		den := p.argument()
		return fraction(num, den)
	case "sqrt":
		index := p.optional()
		return root(index, p.argument())
	case "binom", "dbinom", "tbinom":
		n := p.argument()
		k := p.argument()
		return "C(" + n + ", " + k + ")"
	case "text", "textrm", "textbf", "textit", "mathrm", "mathbf", "mathit", "mathsf",
		"mathtt", "operatorname", "boldsymbol", "mbox":
		return p.argument()
	case "mathbb":
		arg := p.argument()
		if bb, ok := blackboard[arg]; ok {
			return bb
		}
		return arg
	case "overline", "bar":
		return accent(p.argument(), '\u0305')
	case "hat", "widehat":
		return accent(p.argument(), '\u0302')
	case "vec":
		return accent(p.argument(), '\u20d7')
	case "dot":
		return accent(p.argument(), '\u0307')
	case "tilde", "widetilde":
		return accent(p.argument(), '\u0303')
	case "left", "right", "bigl", "bigr", "Bigl", "Bigr", "big", "Big":
		if p.peek() == '.' {
			p.pos++
		}
		return ""
	case "begin", "end":
		p.argument()
		return ""
	case "displaystyle", "textstyle", "limits", "nolimits":
		return ""
	case ",", ":", ";", " ":
		return " "
	case "quad":
		return "  "
	case "qquad":
		return "    "
	case "!":
		return ""
	case "\\":
		return "; "
	case "{", "}", "$", "%", "#", "_", "&":
		return name
	case "":
		return ""
	default:
		return name
	}
}

func fraction(num, den string) string {
	return group(num) + "/" + group(den)
}

func root(index, arg string) string {
	sign := "√"
	switch index {
	case "":
	case "3":
		sign = "∛"
	case "4":
		sign = "∜"
	default:
		sign = superscript(index) + "√"
	}
	return sign + group(arg)
}

// group parenthesises s unless it is a single term.
func group(s string) string {
	if isSimple(s) {
		return s
	}
	return "(" + s + ")"
}

func isSimple(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.In(r, unicode.L, unicode.N, unicode.M) || r == '.' || r == '\'' || r == '′' {
			continue
		}
		return false
	}
	return true
}

func superscript(s string) string {
	return script(s, superscripts, "^")
}

func subscript(s string) string {
	return script(s, subscripts, "_")
}

func script(s string, table map[rune]rune, marker string) string {
	if s == "" {
		return ""
	}
	var sb strings.Builder
	for _, r := range s {
		mapped, ok := table[r]
		if !ok {
			if len([]rune(s)) == 1 || isSimple(s) {
				return marker + s
			}
			return marker + "(" + s + ")"
		}
		sb.WriteRune(mapped)
	}
	return sb.String()
}

func accent(s string, mark rune) string {
	if len([]rune(s)) != 1 {
		return s
	}
	return s + string(mark)
}

func collapseSpaces(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' {
			if !space {
				sb.WriteRune(r)
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '−': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'f': 'ᶠ',
	'g': 'ᵍ', 'h': 'ʰ', 'i': 'ⁱ', 'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ',
	'm': 'ᵐ', 'n': 'ⁿ', 'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ',
	't': 'ᵗ', 'u': 'ᵘ', 'v': 'ᵛ', 'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ',
	'′': '′', '\'': '′',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '−': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ',
	'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ',
	's': 'ₛ', 't': 'ₜ', 'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',
}

var blackboard = map[string]string{
	"R": "ℝ", "N": "ℕ", "Z": "ℤ", "Q": "ℚ", "C": "ℂ",
}

var functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true,
	"sinh": true, "cosh": true, "tanh": true, "coth": true,
	"log": true, "ln": true, "lg": true, "exp": true,
	"lim": true, "max": true, "min": true, "sup": true, "inf": true,
	"det": true, "gcd": true, "deg": true, "arg": true, "dim": true, "ker": true,
	"mod": true, "bmod": true,
}

var symbols = map[string]string{
	// Greek
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "varpi": "ϖ", "rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ",
	"phi": "φ", "varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",

	// Operators
	"times": "×", "cdot": "·", "div": "÷", "pm": "±", "mp": "∓", "ast": "∗",
	"circ": "∘", "bullet": "•", "oplus": "⊕", "otimes": "⊗",
	"cup": "∪", "cap": "∩", "setminus": "∖", "wedge": "∧", "vee": "∨", "neg": "¬",

	// Relations
	"le": "≤", "leq": "≤", "ge": "≥", "geq": "≥", "ne": "≠", "neq": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "simeq": "≃", "cong": "≅",
	"propto": "∝", "ll": "≪", "gg": "≫", "in": "∈", "notin": "∉", "ni": "∋",
	"subset": "⊂", "subseteq": "⊆", "supset": "⊃", "supseteq": "⊇",
	"perp": "⊥", "parallel": "∥", "mid": "|",

	// Arrows
	"to": "→", "rightarrow": "→", "leftarrow": "←", "gets": "←",
	"Rightarrow": "⇒", "implies": "⇒", "Leftarrow": "⇐",
	"leftrightarrow": "↔", "Leftrightarrow": "⇔", "iff": "⇔", "mapsto": "↦",

	// Big operators and calculus
	"int": "∫", "iint": "∬", "iiint": "∭", "oint": "∮",
	"sum": "∑", "prod": "∏", "partial": "∂", "nabla": "∇",

	// Misc
	"infty": "∞", "forall": "∀", "exists": "∃", "emptyset": "∅", "varnothing": "∅",
	"angle": "∠", "triangle": "△", "degree": "°", "prime": "′",
	"ldots": "…", "dots": "…", "cdots": "⋯", "vdots": "⋮", "ddots": "⋱",
	"therefore": "∴", "because": "∵", "hbar": "ℏ", "ell": "ℓ",
	"langle": "⟨", "rangle": "⟩", "lvert": "|", "rvert": "|", "vert": "|",
	"lVert": "‖", "rVert": "‖", "Vert": "‖",
	"lfloor": "⌊", "rfloor": "⌋", "lceil": "⌈", "rceil": "⌉",
	"lbrace": "{", "rbrace": "}", "|": "‖",
}
