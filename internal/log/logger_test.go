package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"firestige.xyz/wirecap/internal/config"
)

func TestNewPatternFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LogConfig{Level: "info", Format: "pattern", Pattern: "[%level] %field %msg"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.WithFields(map[string]interface{}{"b": 2, "a": "x"}).Info("hello")
	l.Debug("hidden")

	got := buf.String()
	if got != "[info] a=x,b=2 hello\n" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.WithError(errors.New("boom")).WithField("record.index", 3).Debugf("decoded %d", 3)

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("Output is not JSON: %v (%q)", err, buf.String())
	}
	if m["msg"] != "decoded 3" || m["level"] != "debug" || m["error"] != "boom" {
		t.Errorf("Unexpected JSON entry: %v", m)
	}
	if m["record.index"] != float64(3) {
		t.Errorf("Expected record.index 3, got %v", m["record.index"])
	}
	if !l.IsDebugEnabled() {
		t.Error("Expected debug enabled")
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud", Format: "json"}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("Expected invalid log level error, got %v", err)
	}
	if _, err := New(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unsupported format")
	}
	cfg := config.LogConfig{Level: "info", Format: "json"}
	cfg.Outputs.File.Enabled = true
	if _, err := New(cfg, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for file output without path")
	}
}

func TestNewWithFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	cfg := config.LogConfig{
		Level:  "info",
		Format: "pattern",
		Outputs: config.LogOutputsConfig{
			File: config.FileOutputConfig{
				Enabled: true,
				Path:    logPath,
				Rotation: config.RotationConfig{
					MaxSizeMB:  10,
					MaxBackups: 3,
					MaxAgeDays: 7,
				},
			},
		},
	}

	var buf bytes.Buffer
	l, err := New(cfg, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("to both")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Log file was not created: %v", err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(buf.String(), "to both") {
		t.Errorf("Expected line in file and stdout, got %q / %q", data, buf.String())
	}
}

func TestInitReplacesGlobal(t *testing.T) {
	before := GetLogger()
	if before == nil {
		t.Fatal("Expected a default logger before Init")
	}
	t.Cleanup(func() { SetLogger(before) })

	if err := Init(config.LogConfig{Level: "warn", Format: "json"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if GetLogger() == before {
		t.Error("Expected Init to replace the global logger")
	}
	if GetLogger().IsDebugEnabled() {
		t.Error("Expected debug disabled at warn level")
	}
}

func TestFormatterVerbs(t *testing.T) {
	f := &formatter{pattern: "%time|%level|%msg|%caller|%func", time: "15:04"}
	entry := logrus.NewEntry(logrus.New())
	entry.Time = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	entry.Level = logrus.WarnLevel
	entry.Message = "m"

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if string(out) != "09:30|warning|m|unknown|unknown\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("down") }

func TestMultiWriterContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMultiWriter().Add(failingWriter{}).Add(&buf)

	n, err := mw.Write([]byte("x"))
	if n != 1 || err == nil {
		t.Errorf("Expected n=1 and an error, got %d, %v", n, err)
	}
	if buf.String() != "x" {
		t.Errorf("Expected second writer to receive data, got %q", buf.String())
	}
	if err := mw.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
