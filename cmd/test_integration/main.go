package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8080"
)

// Smoke test against a running server whose graph was loaded with
// `routegraph seed --file config/topology.toml`.
func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health check...")
	if _, ok := sendRequest(baseURL + "/healthz"); !ok {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	fmt.Println("2. Looking up interfaces...")
	body, ok := sendRequest(baseURL + "/interfaces?location=" + url.QueryEscape("Iceland, Rekjavik"))
	if !ok {
		fmt.Println("FAILED: Lookup")
		os.Exit(1)
	}

	var resp struct {
		IPs []string `json:"ips"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.IPs) == 0 {
		fmt.Printf("FAILED: Lookup returned no addresses (err=%v)\n", err)
		os.Exit(1)
	}
	fmt.Println("PASSED: Lookup")
}

func sendRequest(target string) ([]byte, bool) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(target)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
