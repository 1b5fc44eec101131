package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFormatMatches(t *testing.T) {
	got := formatMatches(&matchResponse{
		Matches:  []match{{Index: 2, Signature: "3:abc:def", Score: 88}},
		Rejected: []match{{Index: 0, Error: "malformed signature"}},
		Total:    3,
	})

	for _, want := range []string{"1 of 3 candidates matched", " 88  #2 3:abc:def", "1 candidates rejected", "#0 malformed signature"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestFormatHash(t *testing.T) {
	got := formatHash(&hashResponse{Signature: "3::", Blocksize: 3, InputBytes: 0, CacheStatus: "miss"})
	want := "Signature: 3::\nBlocksize: 3\nInput: 0 bytes\nCache: miss"
	if got != want {
		t.Errorf("formatHash = %q, want %q", got, want)
	}
}

func TestErrorText(t *testing.T) {
	if got := errorText(nil, "fallback"); got != "fallback" {
		t.Errorf("errorText(nil) = %q", got)
	}
	if got := errorText(&apiError{Code: "INVALID_SIGNATURE", Message: "bad"}, "x"); got != "[INVALID_SIGNATURE] bad" {
		t.Errorf("errorText = %q", got)
	}
}

func TestAPIPost_SendsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "score": len(body)})
	}))
	defer srv.Close()

	body, err := apiPost(context.Background(), srv.Client(), srv.URL, "k", "/api/v1/compare", map[string]string{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("apiPost: %v", err)
	}
	var resp compareResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Score != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestPollJobCompletion(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "processing"
		if polls.Add(1) >= 3 {
			status = "completed"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, err := pollJobCompletion(ctx, srv.Client(), srv.URL, "k", "/api/v1/batch/x", time.Millisecond)
	if err != nil {
		t.Fatalf("pollJobCompletion: %v", err)
	}
	if !strings.Contains(string(body), "completed") {
		t.Errorf("body = %s", body)
	}
	if polls.Load() != 3 {
		t.Errorf("polled %d times, want 3", polls.Load())
	}
}
