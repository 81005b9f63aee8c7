// Command smoke probes a running instance's health surface and exits
// non-zero when any endpoint misbehaves. Intended for deploy pipelines.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type probe struct {
	Path   string
	Expect int
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	probes := []probe{
		{Path: "/health", Expect: http.StatusOK},
		{Path: "/ready", Expect: http.StatusOK},
		{Path: "/metrics", Expect: http.StatusOK},
	}

	client := &http.Client{Timeout: timeout}
	failed := 0
	for _, p := range probes {
		status, body, err := fetch(client, base+p.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", p.Path, err)
			failed++
			continue
		}
		if status != p.Expect {
			fmt.Fprintf(os.Stderr, "FAIL %s: status %d, want %d\n", p.Path, status, p.Expect)
			if len(body) > 0 {
				fmt.Fprintf(os.Stderr, "     body: %s\n", trim(body, 200))
			}
			failed++
			continue
		}
		fmt.Printf("OK   %s\n", p.Path)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func fetch(client *http.Client, url string) (int, []byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func trim(body []byte, max int) string {
	var compact json.RawMessage
	if err := json.Unmarshal(body, &compact); err == nil {
		body = compact
	}
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
