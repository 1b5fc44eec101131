package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spamsum/models"
	"github.com/use-agent/spamsum/webhook"
)

// BatchStore holds all in-flight and completed batch jobs. Jobs older than
// the TTL are expired by a background goroutine until Close is called.
type BatchStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.BatchJob
	ttl  time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewBatchStore creates a store whose jobs expire after ttl.
func NewBatchStore(ttl time.Duration) *BatchStore {
	s := &BatchStore{
		jobs: make(map[string]*models.BatchJob),
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go s.cleanupLoop(max(ttl/12, time.Second))
	return s
}

// Close stops the expiry goroutine. It is safe to call more than once.
func (s *BatchStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *BatchStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.expire(time.Now().Add(-s.ttl).Unix())
		}
	}
}

// expire drops jobs created before cutoff (unix seconds).
func (s *BatchStore) expire(cutoff int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if job.CreatedAt < cutoff {
			delete(s.jobs, id)
		}
	}
}

func (s *BatchStore) create(total int, webhookURL string) *models.BatchJob {
	job := &models.BatchJob{
		ID:         "batch-" + randomID(),
		Status:     models.BatchProcessing,
		Total:      total,
		Results:    make([]*models.BatchResult, total),
		WebhookURL: webhookURL,
		CreatedAt:  time.Now().Unix(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

func (s *BatchStore) record(job *models.BatchJob, idx int, result *models.BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Results[idx] = result
	job.Completed++
}

func (s *BatchStore) finish(job *models.BatchJob, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Status = status
}

// Snapshot returns a consistent copy of the job's state.
func (s *BatchStore) Snapshot(id string) (models.BatchStatusResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.BatchStatusResponse{}, false
	}
	results := make([]*models.BatchResult, len(job.Results))
	copy(results, job.Results)
	return models.BatchStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Completed: job.Completed,
		Total:     job.Total,
		Results:   results,
	}, true
}

// PostBatch returns a handler for POST /api/v1/batch/hash.
// It validates the request, creates a batch job, and hashes the documents
// one after another in a background goroutine.
//
// notifier may be nil, in which case webhook_url is ignored.
func PostBatch(h *Hasher, store *BatchStore, notifier *webhook.Notifier, maxDocuments int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes(maxDocuments))

		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		if len(req.Documents) > maxDocuments {
			respondError(c, models.NewAPIError(models.ErrCodeInvalidInput,
				fmt.Sprintf("maximum %d documents per batch", maxDocuments), nil))
			return
		}

		job := store.create(len(req.Documents), req.WebhookURL)
		go runBatch(h, store, notifier, job, req.Documents)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.ID,
			Status: models.BatchProcessing,
			Total:  job.Total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch(store *BatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, ok := store.Snapshot(c.Param("id"))
		if !ok {
			respondError(c, models.NewAPIError(models.ErrCodeNotFound, "batch job not found", nil))
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// runBatch hashes every document of a job sequentially, then fires the
// completion webhook if one was requested.
func runBatch(h *Hasher, store *BatchStore, notifier *webhook.Notifier, job *models.BatchJob, docs []models.BatchDocument) {
	failed := 0
	for i, doc := range docs {
		req := doc.HashRequest()
		resp, err := h.HashOne(&req)
		if err != nil {
			failed++
			resp = &models.HashResponse{Error: asAPIError(err).ToDetail()}
		}
		store.record(job, i, &models.BatchResult{ID: doc.ID, HashResponse: resp})
	}

	status := models.BatchCompleted
	switch {
	case failed == job.Total:
		status = models.BatchFailed
	case failed > 0:
		status = models.BatchPartial
	}
	store.finish(job, status)

	slog.Info("batch job finished",
		"id", job.ID,
		"status", status,
		"failed", failed,
		"total", job.Total,
	)

	if job.WebhookURL != "" && notifier != nil {
		snap, _ := store.Snapshot(job.ID)
		notifier.DeliverAsync(job.WebhookURL, &webhook.Event{
			Type:      webhook.EventBatchCompleted,
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      snap,
		})
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
