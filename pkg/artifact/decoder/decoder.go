package decoder

// Result is the authoritative output of a final decode pass.
type Result struct {
	// Payload is the extracted semantic content. On decode failure it is the
	// raw input unmodified; detection failure must never lose output.
	Payload string

	// Subtype carries kind-specific detail, currently the language tag for
	// code documents. Empty for other kinds.
	Subtype string
}

// Scratch holds per-document incremental decode state. Fields are owned
// exclusively by the decoder of the document's kind and are never read across
// kinds.
type Scratch struct {
	// code: first-line language tag handling
	TagResolved bool
	Language    string
	head        string

	// sheet: word-gap healing stops once the first complete row has arrived
	HeaderSeen bool
}

// Decoder extracts a semantic payload out of a raw fragment stream that may
// contain non-payload preamble.
type Decoder interface {
	// DeltaPayload is the incremental, best-effort pass over one raw
	// fragment. Scratch carries state between calls for the same document.
	DeltaPayload(fragment string, s *Scratch) string

	// Finalize is the authoritative pass over the complete raw content.
	Finalize(raw string) Result
}

// For returns the decoder for a document kind. Unknown kinds decode as text.
func For(kind string) Decoder {
	switch kind {
	case "code":
		return codeDecoder{}
	case "sheet":
		return sheetDecoder{}
	case "image":
		return imageDecoder{}
	default:
		return textDecoder{}
	}
}
