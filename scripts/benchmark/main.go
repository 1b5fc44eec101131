package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "spamsum API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per document size for averaging")
	mutate = flag.Float64("mutate", 0.01, "Fraction of words replaced in the mutated copy")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Document sizes in bytes.
var testSizes = []struct {
	Label string
	Bytes int
}{
	{"1 KiB", 1 << 10},
	{"16 KiB", 16 << 10},
	{"256 KiB", 256 << 10},
	{"1 MiB", 1 << 20},
	{"8 MiB", 8 << 20},
}

// --- Request / Response types (mirrors models package) ---

type hashRequest struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type hashResponse struct {
	Success   bool         `json:"success"`
	Signature string       `json:"signature"`
	Blocksize int          `json:"blocksize"`
	Timing    timingInfo   `json:"timing"`
	Error     *errorDetail `json:"error,omitempty"`
}

type compareRequest struct {
	SignatureA string `json:"signature_a"`
	SignatureB string `json:"signature_b"`
}

type compareResponse struct {
	Success bool         `json:"success"`
	Score   int          `json:"score"`
	Error   *errorDetail `json:"error,omitempty"`
}

type timingInfo struct {
	TotalMs   int64 `json:"total_ms"`
	HashingMs int64 `json:"hashing_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	LatencyMs  int64  `json:"latency_ms"`
	HashingMs  int64  `json:"hashing_ms"`
	Blocksize  int    `json:"blocksize"`
	Score      int    `json:"score"`
	SignatureA string `json:"signature_a"`
	SignatureB string `json:"signature_b"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type sizeAverages struct {
	LatencyMs float64 `json:"latency_ms"`
	HashingMs float64 `json:"hashing_ms"`
	Score     float64 `json:"score"`
}

type sizeResult struct {
	Label    string        `json:"label"`
	Bytes    int           `json:"bytes"`
	Runs     []runResult   `json:"runs"`
	Averages *sizeAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string       `json:"timestamp"`
	APIURL      string       `json:"api_url"`
	RunsPerSize int          `json:"runs_per_size"`
	Mutate      float64      `json:"mutate"`
	Results     []sizeResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== spamsum Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/size: %d\n", *runs)
	fmt.Printf("Mutate:    %.2f%%\n", *mutate*100)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure spamsum is running (e.g. go run ./cmd/spamsum)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerSize: *runs,
		Mutate:      *mutate,
	}

	client := &http.Client{Timeout: 120 * time.Second}
	for i, t := range testSizes {
		fmt.Printf("Benchmarking [%s] ...\n", t.Label)
		sr := sizeResult{Label: t.Label, Bytes: t.Bytes}

		rng := rand.New(rand.NewPCG(uint64(i), uint64(t.Bytes)))
		original := generateDocument(rng, t.Bytes)
		mutated := mutateDocument(rng, original, *mutate)

		for run := 1; run <= *runs; run++ {
			fmt.Printf("  Run %d/%d ... ", run, *runs)
			rr := benchmarkPair(client, original, mutated, run)
			if rr.Success {
				fmt.Printf("OK  %dms  score %d\n", rr.LatencyMs, rr.Score)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			sr.Runs = append(sr.Runs, rr)
		}

		sr.Averages = computeAverages(sr.Runs)
		report.Results = append(report.Results, sr)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

var words = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis
nostrud exercitation ullamco laboris nisi aliquip ex ea commodo consequat`)

// generateDocument returns n bytes of space-separated words.
func generateDocument(rng *rand.Rand, n int) []byte {
	var b bytes.Buffer
	b.Grow(n + 16)
	for b.Len() < n {
		b.WriteString(words[rng.IntN(len(words))])
		b.WriteByte(' ')
	}
	return b.Bytes()[:n]
}

// mutateDocument overwrites roughly fraction of the document's bytes in
// word-sized runs.
func mutateDocument(rng *rand.Rand, doc []byte, fraction float64) []byte {
	out := bytes.Clone(doc)
	edits := int(float64(len(out)) * fraction / 6)
	for range edits {
		pos := rng.IntN(len(out))
		for j := pos; j < len(out) && j < pos+6; j++ {
			out[j] = byte('A' + rng.IntN(26))
		}
	}
	return out
}

func benchmarkPair(client *http.Client, a, b []byte, run int) runResult {
	rr := runResult{Run: run}
	start := time.Now()

	var ha, hb hashResponse
	if err := post(client, "/api/v1/hash", hashRequest{Content: base64.StdEncoding.EncodeToString(a), Encoding: "base64"}, &ha); err != nil {
		rr.Error = err.Error()
		return rr
	}
	if err := post(client, "/api/v1/hash", hashRequest{Content: base64.StdEncoding.EncodeToString(b), Encoding: "base64"}, &hb); err != nil {
		rr.Error = err.Error()
		return rr
	}
	if !ha.Success || !hb.Success {
		rr.Error = "hash failed"
		if ha.Error != nil {
			rr.Error = ha.Error.Message
		} else if hb.Error != nil {
			rr.Error = hb.Error.Message
		}
		return rr
	}

	var cr compareResponse
	if err := post(client, "/api/v1/compare", compareRequest{SignatureA: ha.Signature, SignatureB: hb.Signature}, &cr); err != nil {
		rr.Error = err.Error()
		return rr
	}
	if cr.Error != nil {
		rr.Error = cr.Error.Message
		return rr
	}

	rr.Success = true
	rr.LatencyMs = time.Since(start).Milliseconds()
	rr.HashingMs = ha.Timing.HashingMs + hb.Timing.HashingMs
	rr.Blocksize = ha.Blocksize
	rr.Score = cr.Score
	rr.SignatureA = ha.Signature
	rr.SignatureB = hb.Signature
	return rr
}

func post(client *http.Client, path string, payload, out any) error {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	return nil
}

func computeAverages(runs []runResult) *sizeAverages {
	var successCount int
	var avg sizeAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.LatencyMs += float64(r.LatencyMs)
		avg.HashingMs += float64(r.HashingMs)
		avg.Score += float64(r.Score)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.LatencyMs /= n
	avg.HashingMs /= n
	avg.Score /= n
	return &avg
}

func printTable(results []sizeResult) {
	fmt.Println(strings.Repeat("─", 70))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Size\tBlocksize\tAvg Latency\tAvg Hashing\tScore\n")
	fmt.Fprintf(w, "────\t─────────\t───────────\t───────────\t─────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", r.Label)
			continue
		}

		fmt.Fprintf(w, "%s\t%s\t%dms\t%dms\t%.0f\n",
			r.Label,
			formatInt(dominantBlocksize(r.Runs)),
			int64(r.Averages.LatencyMs),
			int64(r.Averages.HashingMs),
			r.Averages.Score,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 70))
}

func dominantBlocksize(runs []runResult) int {
	counts := map[int]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.Blocksize]++
		}
	}
	best, bestCount := 0, 0
	for bs, count := range counts {
		if count > bestCount {
			best = bs
			bestCount = count
		}
	}
	return best
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
