// Command ping probes the AuctionHouse /healthz endpoint and exits non-zero
// when the API or its database is unreachable.
//
// Intended for Docker HEALTHCHECK:
//
//	HEALTHCHECK CMD ["/ping"]
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort    = 8080
	healthPath     = "/healthz"
	requestTimeout = 2 * time.Second
)

// exit codes
const (
	exitUnreachable = 2
	exitBadStatus   = 3
	exitBadBody     = 4
	exitDown        = 5
)

type healthBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type probeError struct {
	code int
	err  error
}

func (e *probeError) Error() string { return e.err.Error() }

func main() {
	target := probeURL()
	if err := probe(&http.Client{Timeout: requestTimeout}, target); err != nil {
		log.Printf("ping %s: %v", target, err)
		var pe *probeError
		if errors.As(err, &pe) {
			os.Exit(pe.code)
		}
		os.Exit(1)
	}
	log.Printf("auction api healthy at %s", target)
}

// probe returns nil only for a 200 response whose optional status is "ok".
func probe(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return &probeError{exitUnreachable, err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("close body: %v", err)
		}
	}()

	var body healthBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return &probeError{exitBadBody, fmt.Errorf("decode: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return &probeError{exitDown, fmt.Errorf("service down: %s", body.Error)}
	case resp.StatusCode != http.StatusOK:
		return &probeError{exitBadStatus, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)}
	case body.Status != "" && body.Status != "ok":
		return &probeError{exitDown, fmt.Errorf("service reported %q", body.Status)}
	}
	return nil
}

// probeURL honours PING_URL, otherwise targets localhost on APP_PORT.
func probeURL() string {
	if v := os.Getenv("PING_URL"); v != "" {
		return v
	}
	port := defaultPort
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p <= 65535 {
			port = p
		}
	}
	return fmt.Sprintf("http://localhost:%d%s", port, healthPath)
}
