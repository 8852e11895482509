// Command healthcheck probes the verifier-server health endpoint for use as a
// container HEALTHCHECK in distroless images. It exits 0 only on HTTP 200.
// Build with CGO_ENABLED=0 for a static binary.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"deployverify/internal/probe"
)

func main() {
	url := "http://localhost:8080/health"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := probe.NewChecker(probe.WithUserAgent("deployverify-healthcheck")).Check(ctx, url)
	if err != nil || code != http.StatusOK {
		os.Exit(1)
	}
}
