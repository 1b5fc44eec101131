package models

// Input encodings accepted for document content.
const (
	EncodingText   = "text"
	EncodingBase64 = "base64"
)

// Normalisation formats applied before hashing.
const (
	FormatRaw         = "raw"
	FormatText        = "text"
	FormatMarkdown    = "markdown"
	FormatReadability = "readability"
)

// HashRequest is the payload for POST /api/v1/hash.
type HashRequest struct {
	// Content is the document to hash. Required, may not be empty.
	Content string `json:"content" binding:"required"`

	// Encoding describes how Content is transported.
	// "text" (default): the UTF-8 bytes of Content are hashed.
	// "base64": Content is standard base64 and is decoded first.
	Encoding string `json:"encoding,omitempty" binding:"omitempty,oneof=text base64"`

	// Format controls normalisation before hashing.
	// "raw" (default) hashes the bytes as submitted; "text", "markdown"
	// and "readability" treat the content as HTML.
	Format string `json:"format,omitempty" binding:"omitempty,oneof=raw text markdown readability"`

	// CSSSelector is an optional CSS selector to filter HTML before
	// normalisation. Ignored for the raw format.
	CSSSelector string `json:"css_selector,omitempty"`

	// Blocksize forces the trigger blocksize. 0 picks one automatically.
	Blocksize int `json:"blocksize,omitempty" binding:"omitempty,min=1"`
}

// Defaults applies default values to unset fields.
func (r *HashRequest) Defaults() {
	if r.Encoding == "" {
		r.Encoding = EncodingText
	}
	if r.Format == "" {
		r.Format = FormatRaw
	}
}

// CompareRequest is the payload for POST /api/v1/compare.
type CompareRequest struct {
	SignatureA string `json:"signature_a" binding:"required"`
	SignatureB string `json:"signature_b" binding:"required"`
}

// MatchRequest is the payload for POST /api/v1/match.
type MatchRequest struct {
	// Signature is the probe every candidate is scored against. Required.
	Signature string `json:"signature" binding:"required"`

	// Candidates are the signatures to score. Required, at most 1000.
	Candidates []string `json:"candidates" binding:"required,min=1,max=1000"`

	// Threshold drops candidates scoring below it. Default: 1.
	Threshold int `json:"threshold,omitempty" binding:"omitempty,min=0,max=100"`
}

// Defaults applies default values to unset fields.
func (r *MatchRequest) Defaults() {
	if r.Threshold == 0 {
		r.Threshold = 1
	}
}
