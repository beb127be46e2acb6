package webgrep

// BodyKind identifies which variant of page content a fetch produced.
type BodyKind int

const (
	// BodyHTML carries decoded HTML text; eligible for link extraction.
	BodyHTML BodyKind = iota
	// BodyPDF carries raw, undecompressed bytes. PDF content is never
	// decompressed or parsed, only pattern-matched as raw bytes.
	BodyPDF
	// BodyPlain carries decoded non-HTML text.
	BodyPlain
)

func (k BodyKind) String() string {
	switch k {
	case BodyHTML:
		return "html"
	case BodyPDF:
		return "pdf"
	case BodyPlain:
		return "plain"
	default:
		return "unknown"
	}
}

// Body is a tagged fetch payload. Exactly one of Text/Raw is populated,
// selected by Kind.
type Body struct {
	Kind BodyKind
	Text string // populated for BodyHTML and BodyPlain
	Raw  []byte // populated for BodyPDF
}

// HTMLBody constructs an Html-tagged Body.
func HTMLBody(text string) Body { return Body{Kind: BodyHTML, Text: text} }

// PDFBody constructs a Pdf-tagged Body.
func PDFBody(raw []byte) Body { return Body{Kind: BodyPDF, Raw: raw} }

// PlainBody constructs a Plain-tagged Body.
func PlainBody(text string) Body { return Body{Kind: BodyPlain, Text: text} }

// MatchableText returns the text a pattern should be tested against: the
// decoded text for Plain, or the raw bytes reinterpreted as a string for
// PDF, since PDF content is never decompressed.
func (b Body) MatchableText() string {
	if b.Kind == BodyPDF {
		return string(b.Raw)
	}
	return b.Text
}

// FetchOutcome is either a successful Body or a terminal, cacheable error.
// Err == "" means success.
type FetchOutcome struct {
	Body Body
	Err  string
}

// Success reports whether this outcome carries a usable Body.
func (o FetchOutcome) Success() bool { return o.Err == "" }

// OutcomeOK builds a successful FetchOutcome.
func OutcomeOK(b Body) FetchOutcome { return FetchOutcome{Body: b} }

// OutcomeError builds a terminal, cacheable FetchOutcome.
func OutcomeError(msg string) FetchOutcome { return FetchOutcome{Err: msg} }
