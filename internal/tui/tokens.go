package tui

// requestKind identifies one of the three submitters.
type requestKind int

const (
	kindOCR requestKind = iota
	kindSolve
	kindDoubt
	kindCount
)

func (k requestKind) String() string {
	switch k {
	case kindOCR:
		return "ocr"
	case kindSolve:
		return "solve"
	case kindDoubt:
		return "doubt"
	default:
		return "unknown"
	}
}

// requestTokens stamps each submission so that only the newest result
// of a submitter is rendered.
type requestTokens struct {
	latest [kindCount]uint64
}

func (t *requestTokens) next(k requestKind) uint64 {
	t.latest[k]++
	return t.latest[k]
}

func (t *requestTokens) current(k requestKind, token uint64) bool {
	return t.latest[k] == token
}
