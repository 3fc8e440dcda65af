package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_Usage(t *testing.T) {
	for _, args := range [][]string{nil, {"a.txt", "b.txt"}, {"--nope"}} {
		if err := run(args); !errors.Is(err, errUsage) {
			t.Errorf("run(%v) = %v, want usage error", args, err)
		}
	}
}

func TestRun_StartupFailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "docqa.log")
	cfgFile := filepath.Join(dir, "config.yaml")
	cfg := "embedder:\n  type: tfidf\n" +
		"generator:\n  type: ollama\n  base_url: " + srv.URL + "\n" +
		"logging:\n  level: info\n  file: " + logFile + "\n"
	if err := os.WriteFile(cfgFile, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	missing := filepath.Join(dir, "missing.txt")
	err := run([]string{"--config", cfgFile, missing})
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Fatalf("run() = %v, want read failure", err)
	}

	data, readErr := os.ReadFile(logFile)
	if readErr != nil {
		t.Fatalf("read log file: %v", readErr)
	}
	for _, want := range []string{"generator unavailable", "docqa stopped", "missing.txt"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}
}
