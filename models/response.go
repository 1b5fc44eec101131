package models

// HashResponse is the response for POST /api/v1/hash.
type HashResponse struct {
	// Success indicates whether hashing completed without errors.
	Success bool `json:"success"`

	// Signature is the full "blocksize:left:right" string.
	Signature string `json:"signature"`

	// Blocksize is the trigger blocksize of the primary half.
	Blocksize int `json:"blocksize"`

	// Left is the primary half computed at Blocksize.
	Left string `json:"left"`

	// Right is the secondary half computed at twice Blocksize.
	Right string `json:"right"`

	// InputBytes is the size of the submitted document after decoding.
	InputBytes int `json:"input_bytes"`

	// CacheStatus indicates whether the signature was served from cache.
	// Values: "hit", "miss", or empty (cache disabled).
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// CompareResponse is the response for POST /api/v1/compare.
type CompareResponse struct {
	Success bool `json:"success"`

	// Score is the similarity in [0,100].
	Score int `json:"score"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// MatchResponse is the response for POST /api/v1/match.
type MatchResponse struct {
	Success bool `json:"success"`

	// Matches holds candidates at or above the threshold, best first.
	Matches []Match `json:"matches"`

	// Rejected holds candidates that could not be parsed.
	Rejected []Match `json:"rejected,omitempty"`

	// Total is the number of candidates scored.
	Total int `json:"total"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// Match is a single scored candidate.
type Match struct {
	// Index is the candidate's position in the request.
	Index     int    `json:"index"`
	Signature string `json:"signature"`
	Score     int    `json:"score"`
	Error     string `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NormalizeMs is the time spent decoding and normalising the input.
	NormalizeMs int64 `json:"normalize_ms"`

	// HashingMs is the time spent generating the signature.
	HashingMs int64 `json:"hashing_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string     `json:"status"` // "healthy"
	Uptime     string     `json:"uptime"`
	Version    string     `json:"version"`
	CacheStats CacheStats `json:"cache_stats"`
}

// CacheStats reports the state of the signature cache.
type CacheStats struct {
	Enabled    bool  `json:"enabled"`
	Entries    int   `json:"entries"`
	MaxEntries int   `json:"max_entries"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
}

// ErrorResponse is written for requests that fail before a typed response
// can be assembled (auth, rate limiting, validation).
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
