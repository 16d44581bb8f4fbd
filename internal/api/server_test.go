package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"macswap/internal/adapter"
	"macswap/internal/mac"
	"macswap/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeService struct {
	records []adapter.Record
	listErr error
	lists   int

	mu      sync.Mutex
	changes []string

	// block, when set, holds ChangeMac until closed.
	block   chan struct{}
	entered chan struct{}

	// listHook runs inside ListAdapters after the records are read.
	listHook func(call int)
	// applyChanges makes ChangeMac update the listed records.
	applyChanges bool
}

func (f *fakeService) ListAdapters(context.Context) ([]adapter.Record, error) {
	f.mu.Lock()
	f.lists++
	call, records := f.lists, f.records
	f.mu.Unlock()
	if f.listHook != nil {
		f.listHook(call)
	}
	return records, f.listErr
}

func (f *fakeService) ChangeMac(_ context.Context, name, newMac string) adapter.Outcome {
	f.mu.Lock()
	f.changes = append(f.changes, name+"="+newMac)
	if f.applyChanges {
		f.records = []adapter.Record{{Name: name, MacAddress: mac.Normalize(newMac), Status: adapter.StatusUp}}
	}
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return adapter.Outcome{Success: true, Message: "MAC address successfully changed to " + mac.Normalize(newMac), OriginalMac: "00:11:22:33:44:55"}
}

func (f *fakeService) RestoreMac(_ context.Context, _ string, originalMac string) adapter.Outcome {
	return adapter.Outcome{Success: true, Message: "original MAC address restored: " + mac.Normalize(originalMac)}
}

func (f *fakeService) RestartAdapter(context.Context, string) error { return nil }

func (f *fakeService) ValidateMac(raw string) mac.Validation { return mac.Validate(raw) }

func (f *fakeService) GenerateRandomMac() string { return "02:00:00:00:00:01" }

func newTestServer(t *testing.T, svc AdapterService) (*Server, *metrics.Collector) {
	t.Helper()
	c, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	return New(svc, c, Options{Metrics: true}), c
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListAdapters(t *testing.T) {
	s, c := newTestServer(t, &fakeService{records: []adapter.Record{{Name: "en0", MacAddress: "00:11:22:33:44:55", Status: "Up"}}})

	rec := do(t, s, "GET", "/api/adapters", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 || resp.Data[0].Name != "en0" {
		t.Errorf("unexpected response %+v", resp)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id")
	}
	if got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("/api/adapters", "200")); got != 1 {
		t.Errorf("http counter = %v", got)
	}
}

func TestListAdaptersUnsupported(t *testing.T) {
	s, _ := newTestServer(t, &fakeService{listErr: &adapter.UnsupportedPlatformError{Platform: "linux"}})

	rec := do(t, s, "GET", "/api/adapters", "")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"unsupported operating system: linux"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestChangeMac(t *testing.T) {
	svc := &fakeService{}
	s, c := newTestServer(t, svc)

	rec := do(t, s, "POST", "/api/adapters/en0/mac", `{"mac":"02-AA-BB-CC-DD-EE"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var out adapter.Outcome
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.OriginalMac != "00:11:22:33:44:55" {
		t.Errorf("unexpected outcome %+v", out)
	}
	if len(svc.changes) != 1 || svc.changes[0] != "en0=02-AA-BB-CC-DD-EE" {
		t.Errorf("changes = %v", svc.changes)
	}
	if got := testutil.ToFloat64(c.Operations.WithLabelValues("change", "success")); got != 1 {
		t.Errorf("operation counter = %v", got)
	}
}

func TestChangeMacRejectsInvalid(t *testing.T) {
	svc := &fakeService{}
	s, _ := newTestServer(t, svc)

	rec := do(t, s, "POST", "/api/adapters/en0/mac", `{"mac":"01:00:5e:00:00:01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unicast") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if len(svc.changes) != 0 {
		t.Error("service must not be called for an invalid address")
	}

	rec = do(t, s, "POST", "/api/adapters/en0/mac", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChangeMacConflict(t *testing.T) {
	svc := &fakeService{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s, _ := newTestServer(t, svc)

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- do(t, s, "POST", "/api/adapters/en0/mac", `{"mac":"02:00:00:00:00:01"}`)
	}()
	<-svc.entered

	rec := do(t, s, "POST", "/api/adapters/en0/restore", `{"mac":"00:11:22:33:44:55"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "an operation on en0 is already in progress") {
		t.Errorf("body = %s", rec.Body.String())
	}

	other := do(t, s, "POST", "/api/adapters/en1/restore", `{"mac":"00:11:22:33:44:55"}`)
	if other.Code != http.StatusOK {
		t.Errorf("different adapter should not be blocked, status = %d", other.Code)
	}

	close(svc.block)
	if first := <-done; first.Code != http.StatusOK {
		t.Errorf("first request status = %d", first.Code)
	}

	again := do(t, s, "POST", "/api/adapters/en0/restore", `{"mac":"00:11:22:33:44:55"}`)
	if again.Code != http.StatusOK {
		t.Errorf("slot should be released, status = %d", again.Code)
	}
}

func TestRestoreAndRestart(t *testing.T) {
	s, _ := newTestServer(t, &fakeService{})

	rec := do(t, s, "POST", "/api/adapters/Wi-Fi/restore", `{"mac":"001122334455"}`)
	if !strings.Contains(rec.Body.String(), "original MAC address restored: 00:11:22:33:44:55") {
		t.Errorf("restore body = %s", rec.Body.String())
	}

	rec = do(t, s, "POST", "/api/adapters/Wi-Fi/restart", "")
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("restart body = %s", rec.Body.String())
	}
}

func TestValidateAndRandom(t *testing.T) {
	s, _ := newTestServer(t, &fakeService{})

	rec := do(t, s, "POST", "/api/mac/validate", `{"mac":""}`)
	var v mac.Validation
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Valid || v.Message != "MAC address must not be empty" {
		t.Errorf("unexpected validation %+v", v)
	}

	rec = do(t, s, "GET", "/api/mac/random", "")
	if !strings.Contains(rec.Body.String(), `"mac":"02:00:00:00:00:01"`) {
		t.Errorf("random body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeService{})
	do(t, s, "GET", "/api/mac/random", "")

	rec := do(t, s, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "macswap_http_requests_total") {
		t.Errorf("metrics body missing http counter")
	}
}

func TestListCache(t *testing.T) {
	svc := &fakeService{records: []adapter.Record{{Name: "en0", MacAddress: "00:11:22:33:44:55"}}}
	s := New(svc, nil, Options{ListCache: time.Minute})

	do(t, s, "GET", "/api/adapters", "")
	do(t, s, "GET", "/api/adapters", "")
	if svc.lists != 1 {
		t.Fatalf("lists = %d, want 1 while cached", svc.lists)
	}

	do(t, s, "POST", "/api/adapters/en0/mac", `{"mac":"02:00:00:00:00:01"}`)
	do(t, s, "GET", "/api/adapters", "")
	if svc.lists != 2 {
		t.Errorf("lists = %d, want 2 after a change", svc.lists)
	}
}

func TestListCacheDropsListingOverlappingChange(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	svc := &fakeService{
		records:      []adapter.Record{{Name: "en0", MacAddress: "00:11:22:33:44:55", Status: adapter.StatusUp}},
		applyChanges: true,
		listHook: func(call int) {
			if call == 1 {
				close(entered)
				<-release
			}
		},
	}
	s := New(svc, nil, Options{ListCache: time.Minute})

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- do(t, s, "GET", "/api/adapters", "") }()
	<-entered

	if rec := do(t, s, "POST", "/api/adapters/en0/mac", `{"mac":"02:00:00:00:00:01"}`); rec.Code != http.StatusOK {
		t.Fatalf("change status = %d", rec.Code)
	}
	close(release)
	if first := <-done; !strings.Contains(first.Body.String(), "00:11:22:33:44:55") {
		t.Fatalf("in-flight listing body = %s", first.Body.String())
	}

	rec := do(t, s, "GET", "/api/adapters", "")
	if !strings.Contains(rec.Body.String(), `"macAddress":"02:00:00:00:00:01"`) {
		t.Errorf("listing after change = %s", rec.Body.String())
	}
	if svc.lists != 2 {
		t.Errorf("lists = %d, want 2", svc.lists)
	}
}

func TestListCacheSkipsErrors(t *testing.T) {
	svc := &fakeService{listErr: errors.New("boom")}
	s := New(svc, nil, Options{ListCache: time.Minute})

	if rec := do(t, s, "GET", "/api/adapters", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	do(t, s, "GET", "/api/adapters", "")
	if svc.lists != 2 {
		t.Errorf("lists = %d, errors must not be cached", svc.lists)
	}
}

func TestMetricsDisabled(t *testing.T) {
	s := New(&fakeService{}, nil, Options{})
	if rec := do(t, s, "GET", "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGuard(t *testing.T) {
	g := newGuard()
	if !g.acquire("en0") {
		t.Fatal("first acquire should succeed")
	}
	if g.acquire("en0") {
		t.Fatal("second acquire should fail")
	}
	g.release("en0")
	if !g.acquire("en0") {
		t.Fatal("acquire after release should succeed")
	}
}
