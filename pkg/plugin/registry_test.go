package plugin

import (
	"context"
	"errors"
	"testing"

	"firestige.xyz/wirecap/internal/core"
)

type mockReporter struct {
	name    string
	initErr error
	cfg     map[string]any
	records []*core.Record
}

func (m *mockReporter) Name() string                  { return m.name }
func (m *mockReporter) Init(cfg map[string]any) error { m.cfg = cfg; return m.initErr }
func (m *mockReporter) Start(context.Context) error   { return nil }
func (m *mockReporter) Stop(context.Context) error    { return nil }
func (m *mockReporter) Flush(context.Context) error   { return nil }
func (m *mockReporter) Report(_ context.Context, rec *core.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func TestRegisterAndGetReporter(t *testing.T) {
	reporterReg.Reset()

	RegisterReporter("test_rep", func() Reporter {
		return &mockReporter{name: "test_rep"}
	})

	factory, err := GetReporterFactory("test_rep")
	if err != nil {
		t.Fatalf("GetReporterFactory failed: %v", err)
	}

	instance := factory()
	if instance.Name() != "test_rep" {
		t.Errorf("Expected name 'test_rep', got %s", instance.Name())
	}
}

func TestGetReporterNotFound(t *testing.T) {
	reporterReg.Reset()

	_, err := GetReporterFactory("missing")
	if err == nil {
		t.Fatal("Expected error for unknown reporter")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	reporterReg.Reset()
	RegisterReporter("dup", func() Reporter { return &mockReporter{name: "dup"} })

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	RegisterReporter("dup", func() Reporter { return &mockReporter{name: "dup"} })
}

func TestListReportersSorted(t *testing.T) {
	reporterReg.Reset()
	for _, name := range []string{"pcap", "console", "kafka"} {
		n := name
		RegisterReporter(n, func() Reporter { return &mockReporter{name: n} })
	}

	got := ListReporters()
	want := []string{"console", "kafka", "pcap"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}

func TestNewReporterInitialises(t *testing.T) {
	reporterReg.Reset()
	var created *mockReporter
	RegisterReporter("r", func() Reporter {
		created = &mockReporter{name: "r"}
		return created
	})

	cfg := map[string]any{"format": "json"}
	r, err := NewReporter("r", cfg)
	if err != nil {
		t.Fatalf("NewReporter failed: %v", err)
	}
	if r != Reporter(created) {
		t.Error("Expected the factory's instance")
	}
	if created.cfg["format"] != "json" {
		t.Errorf("Expected Init to receive config, got %v", created.cfg)
	}
}

func TestNewReporterInitError(t *testing.T) {
	reporterReg.Reset()
	boom := errors.New("boom")
	RegisterReporter("bad", func() Reporter { return &mockReporter{name: "bad", initErr: boom} })

	_, err := NewReporter("bad", nil)
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped init error, got %v", err)
	}
}
