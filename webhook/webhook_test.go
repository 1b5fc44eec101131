package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig, gotType string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier("s3cret")
	event := &Event{Type: EventBatchCompleted, JobID: "batch-1", Timestamp: 1700000000, Data: map[string]int{"total": 2}}
	if err := n.Deliver(context.Background(), srv.URL, event); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if want := Sign("s3cret", body); gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var decoded Event
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("body is not an event: %v", err)
	}
	if decoded.Type != EventBatchCompleted || decoded.JobID != "batch-1" {
		t.Errorf("decoded event = %+v", decoded)
	}
}

func TestDeliver_NoSecretNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SignatureHeader) != "" {
			t.Error("unsigned notifier sent a signature header")
		}
	}))
	defer srv.Close()

	if err := NewNotifier("").Deliver(context.Background(), srv.URL, &Event{Type: EventBatchCompleted}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewNotifier("").Deliver(context.Background(), srv.URL, &Event{}); err == nil {
		t.Fatal("Deliver succeeded against a 502 endpoint")
	}
}

func TestSign(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog").
	got := Sign("key", []byte("The quick brown fox jumps over the lazy dog"))
	want := "sha256=f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"
	if got != want {
		t.Errorf("Sign = %s, want %s", got, want)
	}
}

func TestDeliverAsync_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	n := NewNotifier("")
	n.RetryDelays = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}

	select {
	case err := <-n.DeliverAsync(srv.URL, &Event{Type: EventBatchCompleted}):
		if err != nil {
			t.Fatalf("DeliverAsync: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DeliverAsync did not finish")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("endpoint called %d times, want 3", got)
	}
}

func TestDeliverAsync_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier("")
	n.RetryDelays = []time.Duration{time.Millisecond}

	select {
	case err := <-n.DeliverAsync(srv.URL, &Event{}):
		if err == nil {
			t.Fatal("DeliverAsync reported success")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DeliverAsync did not finish")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("endpoint called %d times, want 2", got)
	}
}
