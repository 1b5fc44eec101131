package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spamsum/cache"
	"github.com/use-agent/spamsum/cleaner"
	"github.com/use-agent/spamsum/models"
	"github.com/use-agent/spamsum/spamsum"
)

// Hasher turns hash requests into signatures. It is shared by the single
// and batch endpoints.
type Hasher struct {
	Generator *spamsum.Generator
	Cleaner   *cleaner.Cleaner

	// Cache is optional; nil disables caching.
	Cache *cache.Cache

	// MaxInputBytes bounds the decoded document size.
	MaxInputBytes int
}

// bodySlack covers JSON syntax and the non-content fields of a document.
const bodySlack = 64 << 10

// maxBodyBytes bounds the raw request body for a request carrying docs
// documents. JSON may escape a byte as \u00XX, so one document can take six
// times its decoded limit on the wire.
func (h *Hasher) maxBodyBytes(docs int) int64 {
	return int64(docs) * (6*int64(h.MaxInputBytes) + bodySlack)
}

// Hash returns a handler for POST /api/v1/hash.
func Hash(h *Hasher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes(1))

		var req models.HashRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		req.Defaults()

		resp, err := h.HashOne(&req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HashOne runs one request through the pipeline.
//
// Flow:
//  1. Decode content according to its encoding, enforce the size limit.
//  2. Cache lookup keyed by content and every signature-affecting option.
//  3. Normalise (records normalize_ms).
//  4. Generate the signature (records hashing_ms).
//  5. Cache store.
func (h *Hasher) HashOne(req *models.HashRequest) (*models.HashResponse, error) {
	totalStart := time.Now()

	// ── 1. Decode ───────────────────────────────────────────────────
	data, err := decodeContent(req.Content, req.Encoding)
	if err != nil {
		return nil, err
	}
	if len(data) > h.MaxInputBytes {
		return nil, models.NewAPIError(models.ErrCodeInputTooLarge,
			fmt.Sprintf("document is %d bytes, limit is %d", len(data), h.MaxInputBytes), nil)
	}

	// ── 2. Cache lookup ─────────────────────────────────────────────
	var cacheKey string
	if h.Cache != nil {
		cacheKey = cache.Key(data, req.Format, req.CSSSelector, req.Blocksize)
		if sig, hit := h.Cache.Get(cacheKey); hit {
			resp := newHashResponse(sig, len(data))
			resp.CacheStatus = "hit"
			resp.Timing.TotalMs = time.Since(totalStart).Milliseconds()
			return resp, nil
		}
	}

	// ── 3. Normalise ────────────────────────────────────────────────
	normStart := time.Now()
	normalized, err := h.Cleaner.Normalize(data, cleaner.Options{
		Format:      req.Format,
		CSSSelector: req.CSSSelector,
	})
	normalizeMs := time.Since(normStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	// ── 4. Hash ─────────────────────────────────────────────────────
	hashStart := time.Now()
	sig := h.Generator.GenerateBlocksize(normalized, req.Blocksize)
	hashingMs := time.Since(hashStart).Milliseconds()

	resp := newHashResponse(sig, len(data))
	resp.Timing = models.TimingInfo{
		TotalMs:     time.Since(totalStart).Milliseconds(),
		NormalizeMs: normalizeMs,
		HashingMs:   hashingMs,
	}

	// ── 5. Cache store ──────────────────────────────────────────────
	if h.Cache != nil {
		h.Cache.Set(cacheKey, sig)
		resp.CacheStatus = "miss"
	}

	return resp, nil
}

func newHashResponse(sig spamsum.Signature, inputBytes int) *models.HashResponse {
	return &models.HashResponse{
		Success:    true,
		Signature:  sig.String(),
		Blocksize:  sig.Blocksize,
		Left:       sig.Left,
		Right:      sig.Right,
		InputBytes: inputBytes,
	}
}

func decodeContent(content, encoding string) ([]byte, error) {
	switch encoding {
	case "", models.EncodingText:
		return []byte(content), nil
	case models.EncodingBase64:
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, models.NewAPIError(models.ErrCodeInvalidInput, "content is not valid base64", err)
		}
		return data, nil
	default:
		return nil, models.NewAPIError(models.ErrCodeInvalidInput, "unknown encoding: "+encoding, nil)
	}
}
