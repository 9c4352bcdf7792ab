// Package main is the container health probe. It exits 0 when the
// server answers the probe path with 200 and 1 otherwise.
package main

import (
	"flag"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/garyellow/ntpu-course-master/internal/config"
)

var readyFlag = flag.Bool("ready", false, "Probe /readyz (dataset loaded) instead of /livez")

func main() {
	flag.Parse()

	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = "8000"
	}
	path := "/livez"
	if *readyFlag {
		path = "/readyz"
	}
	target := url.URL{Scheme: "http", Host: "localhost:" + port, Path: path}

	client := &http.Client{Timeout: 8 * time.Second}
	resp, err := client.Get(target.String())
	if err != nil {
		os.Exit(1)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
