package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// apiError mirrors the API error detail.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) String() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// hashResponse mirrors the API hash response.
type hashResponse struct {
	Success     bool      `json:"success"`
	Signature   string    `json:"signature"`
	Blocksize   int       `json:"blocksize"`
	InputBytes  int       `json:"input_bytes"`
	CacheStatus string    `json:"cache_status"`
	Error       *apiError `json:"error"`
}

// compareResponse mirrors the API compare response.
type compareResponse struct {
	Success bool      `json:"success"`
	Score   int       `json:"score"`
	Error   *apiError `json:"error"`
}

type match struct {
	Index     int    `json:"index"`
	Signature string `json:"signature"`
	Score     int    `json:"score"`
	Error     string `json:"error"`
}

// matchResponse mirrors the API match response.
type matchResponse struct {
	Success  bool      `json:"success"`
	Matches  []match   `json:"matches"`
	Rejected []match   `json:"rejected"`
	Total    int       `json:"total"`
	Error    *apiError `json:"error"`
}

// batchResponse mirrors the API batch creation response.
type batchResponse struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Total  int       `json:"total"`
	Error  *apiError `json:"error"`
}

// batchStatusResponse mirrors the API batch status response.
type batchStatusResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Results   []struct {
		ID string `json:"id"`
		hashResponse
	} `json:"results"`
}

func main() {
	apiURL := os.Getenv("SPAMSUM_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SPAMSUM_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SPAMSUM_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"spamsum",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	hashTextTool := mcp.NewTool("hash_text",
		mcp.WithDescription("Compute the ssdeep-compatible fuzzy hash of a document. Similar documents get similar signatures."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The document to hash"),
		),
		mcp.WithString("format",
			mcp.Description("Normalisation before hashing: 'raw' (default, bytes as given), 'text' (visible HTML text), 'markdown' (HTML converted to Markdown), or 'readability' (main article text)"),
			mcp.Enum("raw", "text", "markdown", "readability"),
		),
		mcp.WithString("css_selector",
			mcp.Description("Optional CSS selector restricting HTML formats to matching elements"),
		),
	)
	s.AddTool(hashTextTool, handleHashText(apiURL, apiKey))

	compareTool := mcp.NewTool("compare_signatures",
		mcp.WithDescription("Score the similarity of two fuzzy hash signatures from 0 (unrelated) to 100 (identical)."),
		mcp.WithString("signature_a",
			mcp.Required(),
			mcp.Description("First signature, in 'blocksize:hash:hash' form"),
		),
		mcp.WithString("signature_b",
			mcp.Required(),
			mcp.Description("Second signature, in 'blocksize:hash:hash' form"),
		),
	)
	s.AddTool(compareTool, handleCompare(apiURL, apiKey))

	matchTool := mcp.NewTool("match_signature",
		mcp.WithDescription("Score one signature against a list of known signatures and return those at or above a threshold, best first."),
		mcp.WithString("signature",
			mcp.Required(),
			mcp.Description("The signature to look up"),
		),
		mcp.WithArray("candidates",
			mcp.Required(),
			mcp.Description("Known signatures to score against"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum score to report (default: 1)"),
		),
	)
	s.AddTool(matchTool, handleMatch(apiURL, apiKey))

	batchHashTool := mcp.NewTool("batch_hash",
		mcp.WithDescription("Hash several documents in one job and return every signature."),
		mcp.WithArray("documents",
			mcp.Required(),
			mcp.Description("Documents to hash"),
		),
		mcp.WithString("format",
			mcp.Description("Normalisation applied to every document: 'raw' (default), 'text', 'markdown', or 'readability'"),
			mcp.Enum("raw", "text", "markdown", "readability"),
		),
	)
	s.AddTool(batchHashTool, handleBatchHash(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the spamsum API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string, interval time.Duration) ([]byte, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			req.Header.Set("X-API-Key", apiKey)

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

func handleHashText(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		payload := map[string]any{"content": content}
		if format := request.GetString("format", ""); format != "" {
			payload["format"] = format
		}
		if selector := request.GetString("css_selector", ""); selector != "" {
			payload["css_selector"] = selector
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/hash", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("hash request failed: %v", err)), nil
		}

		var hashResp hashResponse
		if err := json.Unmarshal(respBody, &hashResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !hashResp.Success {
			return mcp.NewToolResultError(errorText(hashResp.Error, "hash failed")), nil
		}

		return mcp.NewToolResultText(formatHash(&hashResp)), nil
	}
}

func handleCompare(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, err := request.RequireString("signature_a")
		if err != nil {
			return mcp.NewToolResultError("signature_a is required"), nil
		}
		b, err := request.RequireString("signature_b")
		if err != nil {
			return mcp.NewToolResultError("signature_b is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/compare", map[string]string{
			"signature_a": a,
			"signature_b": b,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("compare request failed: %v", err)), nil
		}

		var cmpResp compareResponse
		if err := json.Unmarshal(respBody, &cmpResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !cmpResp.Success {
			return mcp.NewToolResultError(errorText(cmpResp.Error, "compare failed")), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Similarity: %d/100", cmpResp.Score)), nil
	}
}

func handleMatch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sig, err := request.RequireString("signature")
		if err != nil {
			return mcp.NewToolResultError("signature is required"), nil
		}
		candidates, err := request.RequireStringSlice("candidates")
		if err != nil {
			return mcp.NewToolResultError("candidates is required and must be an array of strings"), nil
		}

		payload := map[string]any{
			"signature":  sig,
			"candidates": candidates,
		}
		if threshold := request.GetInt("threshold", 0); threshold > 0 {
			payload["threshold"] = threshold
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/match", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("match request failed: %v", err)), nil
		}

		var matchResp matchResponse
		if err := json.Unmarshal(respBody, &matchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !matchResp.Success {
			return mcp.NewToolResultError(errorText(matchResp.Error, "match failed")), nil
		}

		return mcp.NewToolResultText(formatMatches(&matchResp)), nil
	}
}

func handleBatchHash(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := request.RequireStringSlice("documents")
		if err != nil {
			return mcp.NewToolResultError("documents is required and must be an array of strings"), nil
		}
		format := request.GetString("format", "")

		documents := make([]map[string]string, len(docs))
		for i, d := range docs {
			documents[i] = map[string]string{
				"id":      fmt.Sprintf("doc-%d", i+1),
				"content": d,
			}
			if format != "" {
				documents[i]["format"] = format
			}
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/hash", map[string]any{"documents": documents})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var batchResp batchResponse
		if err := json.Unmarshal(respBody, &batchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}
		if batchResp.ID == "" {
			return mcp.NewToolResultError(errorText(batchResp.Error, "batch job creation failed")), nil
		}

		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/batch/"+batchResp.ID, 500*time.Millisecond)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var statusResp batchStatusResponse
		if err := json.Unmarshal(resultBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch status: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Batch %s: %s (%d/%d hashed)\n\n", statusResp.ID, statusResp.Status, statusResp.Completed, statusResp.Total)
		for _, r := range statusResp.Results {
			if r.Success {
				fmt.Fprintf(&sb, "%s: %s\n", r.ID, r.Signature)
			} else {
				fmt.Fprintf(&sb, "%s: FAILED %s\n", r.ID, errorText(r.Error, "unknown error"))
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func errorText(e *apiError, fallback string) string {
	if e == nil {
		return fallback
	}
	return e.String()
}

func formatHash(r *hashResponse) string {
	s := fmt.Sprintf("Signature: %s\nBlocksize: %d\nInput: %d bytes", r.Signature, r.Blocksize, r.InputBytes)
	if r.CacheStatus != "" {
		s += "\nCache: " + r.CacheStatus
	}
	return s
}

func formatMatches(r *matchResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d candidates matched\n", len(r.Matches), r.Total)
	for _, m := range r.Matches {
		fmt.Fprintf(&sb, "  %3d  #%d %s\n", m.Score, m.Index, m.Signature)
	}
	if len(r.Rejected) > 0 {
		fmt.Fprintf(&sb, "%d candidates rejected:\n", len(r.Rejected))
		for _, m := range r.Rejected {
			fmt.Fprintf(&sb, "  #%d %s\n", m.Index, m.Error)
		}
	}
	return sb.String()
}
