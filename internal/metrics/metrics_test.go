package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/onelog/onelog-go/pkg/onelog"
)

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	cl := m.Instrument(onelog.Default())
	lines := []string{
		"[INFO] [net] up",
		"[INFO] [net] still up",
		"[WARN] [disk] sda1 { used = 91 }",
		"noise",
	}
	for _, l := range lines {
		cl.Classify(l)
	}

	if got := testutil.ToFloat64(m.records.WithLabelValues("event")); got != 2 {
		t.Errorf("event records = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.records.WithLabelValues("status")); got != 1 {
		t.Errorf("status records = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.records.WithLabelValues("other")); got != 1 {
		t.Errorf("other records = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.systems.WithLabelValues("INFO", "net")); got != 2 {
		t.Errorf("INFO/net records = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestObserve_SystemLimit(t *testing.T) {
	m := New(prometheus.NewRegistry(), WithMaxSystems(2))

	for _, sys := range []string{"net", "disk", "db", "cache", "net"} {
		m.Observe(onelog.EventRecord{Header: onelog.Header{Level: "INFO", System: sys}})
	}

	if got := testutil.CollectAndCount(m.systems); got != 3 {
		t.Errorf("system series = %d, want 3 (two tracked plus overflow)", got)
	}
	if got := testutil.ToFloat64(m.systems.WithLabelValues("INFO", "net")); got != 2 {
		t.Errorf("INFO/net records = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.systems.WithLabelValues(OverflowLabel, OverflowLabel)); got != 2 {
		t.Errorf("overflow records = %v, want 2", got)
	}
}

func TestObserve_InvalidUTF8System(t *testing.T) {
	m := New(prometheus.NewRegistry())

	// Label values must be valid UTF-8 or the client panics.
	m.Observe(onelog.Default().Classify("[INFO] [sys\xff] up"))

	if got := testutil.ToFloat64(m.systems.WithLabelValues("INFO", "sys\uFFFD")); got != 1 {
		t.Errorf("INFO/sys records = %v, want 1", got)
	}
}

func TestNew_KindsStartAtZero(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	expected := `
# HELP onelog_records_total Number of classified lines by record kind
# TYPE onelog_records_total counter
onelog_records_total{kind="event"} 0
onelog_records_total{kind="other"} 0
onelog_records_total{kind="status"} 0
`
	if err := testutil.CollectAndCompare(m.records, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestObserve_Nil(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Observe(nil)
	if got := testutil.ToFloat64(m.records.WithLabelValues("other")); got != 0 {
		t.Errorf("other records = %v, want 0", got)
	}
}

func TestObserveError(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveError(nil)
	m.ObserveError(errors.New("boom"))
	m.ObserveError(&onelog.WatchError{Op: onelog.WatchOpRotation, Err: errors.New("gone")})
	m.ObserveError(&onelog.WatchError{Op: onelog.WatchOpRotation, Err: errors.New("gone again")})

	if got := testutil.ToFloat64(m.errors.WithLabelValues("read")); got != 1 {
		t.Errorf("read errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("rotation")); got != 2 {
		t.Errorf("rotation errors = %v, want 2", got)
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("second New on the same registry did not panic")
		}
	}()
	New(reg)
}

func TestServer_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Observe(onelog.EventRecord{Header: onelog.Header{Level: "INFO", System: "net"}})

	srv := NewServer("127.0.0.1:0", reg)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `onelog_records_total{kind="event"} 1`) {
		t.Errorf("metrics body missing event counter:\n%s", body)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("healthz body = %q, want %q", body, "ok")
	}
}
