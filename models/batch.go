package models

// BatchRequest is the payload for POST /api/v1/batch/hash.
type BatchRequest struct {
	// Documents is the list of documents to hash. Required.
	Documents []BatchDocument `json:"documents" binding:"required,min=1,dive"`

	// WebhookURL receives a batch.completed event when the job finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// BatchDocument is one document in a batch.
type BatchDocument struct {
	// ID is a caller-chosen identifier echoed back in the results.
	ID          string `json:"id,omitempty"`
	Content     string `json:"content" binding:"required"`
	Encoding    string `json:"encoding,omitempty" binding:"omitempty,oneof=text base64"`
	Format      string `json:"format,omitempty" binding:"omitempty,oneof=raw text markdown readability"`
	CSSSelector string `json:"css_selector,omitempty"`
}

// HashRequest converts the document to a single hash request with
// defaults applied.
func (d BatchDocument) HashRequest() HashRequest {
	r := HashRequest{
		Content:     d.Content,
		Encoding:    d.Encoding,
		Format:      d.Format,
		CSSSelector: d.CSSSelector,
	}
	r.Defaults()
	return r
}

// BatchResponse is the immediate response for POST /api/v1/batch/hash.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchResult is the outcome for one document.
type BatchResult struct {
	ID string `json:"id,omitempty"`
	*HashResponse
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Results   []*BatchResult `json:"results,omitempty"`
}

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)

// BatchJob tracks an in-progress batch hashing operation.
type BatchJob struct {
	ID         string
	Status     string // "processing", "completed", "failed", "partial"
	Total      int
	Completed  int
	Results    []*BatchResult
	WebhookURL string
	CreatedAt  int64 // unix timestamp
}
