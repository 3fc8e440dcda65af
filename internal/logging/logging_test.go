package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"docqa/internal/config"
)

func TestSetup_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "docqa.log")
	logger := logrus.New()
	closer, err := Setup(logger, config.LoggingConfig{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	Component(logger, "test").WithField("chunks", 3).Debug("ingested")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{`"message":"ingested"`, `"component":"test"`, `"chunks":3`, `"level":"debug"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %s", line, want)
		}
	}
}

func TestSetup_Invalid(t *testing.T) {
	if _, err := Setup(logrus.New(), config.LoggingConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := Setup(logrus.New(), config.LoggingConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
