package ledger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eosim/internal/bigpanda"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "sent_alerts.json"))
}

func makePayload(host string) bigpanda.Payload {
	return bigpanda.Payload{
		Status:            bigpanda.StatusCritical,
		Host:              host,
		Check:             "synthetic_web_check",
		Description:       "Web server not responding",
		Service:           "Customer User Experience",
		Application:       "Customer Account Management",
		Cluster:           "app_srv_cluster",
		Instance:          "Port 443",
		Location:          "Dallas-Fort Worth DC1",
		Environment:       "production",
		KnownDependencies: []string{"AWS Cloud"},
		EOCorrelator:      "true",
		Timestamp:         1773144000,
	}
}

// fakeSender records every payload and fails deliveries for hosts in
// failHosts.
type fakeSender struct {
	sent      []bigpanda.Payload
	failHosts map[string]bool
}

func (f *fakeSender) Send(_ context.Context, p bigpanda.Payload) error {
	f.sent = append(f.sent, p)
	if f.failHosts[p.Host] {
		return errors.New("delivery refused")
	}
	return nil
}

func TestOpenMissingFile(t *testing.T) {
	l := testLedger(t)
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_alerts.json")
	if err := os.WriteFile(path, []byte("{{{ not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := Open(path)
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for corrupt file", l.Len())
	}
}

func TestOpenWrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_alerts.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	l := Open(path)
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for wrong shape", l.Len())
	}
}

func TestTrackPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_alerts.json")
	l := Open(path)

	rec, err := l.Track(makePayload("web-01.corp.internal"), "Grid failure in Dallas")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if rec.ID == "" {
		t.Error("record ID should not be empty")
	}
	if rec.Status != bigpanda.StatusCritical {
		t.Errorf("Status = %q, want critical", rec.Status)
	}
	if rec.BasedOnEvent != "Grid failure in Dallas" {
		t.Errorf("BasedOnEvent = %q", rec.BasedOnEvent)
	}
	if rec.SentAt.IsZero() {
		t.Error("SentAt should be set")
	}

	// A fresh ledger instance must read the same record back.
	reloaded := Open(path)
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded Len() = %d, want 1", reloaded.Len())
	}
	got := reloaded.All()[0]
	if got.ID != rec.ID || got.Host != "web-01.corp.internal" || got.Check != "synthetic_web_check" {
		t.Errorf("reloaded record = %+v", got)
	}
	if len(got.KnownDependencies) != 1 || got.KnownDependencies[0] != "AWS Cloud" {
		t.Errorf("reloaded dependencies = %v", got.KnownDependencies)
	}
}

func TestTrackDefaultsBasedOn(t *testing.T) {
	l := testLedger(t)
	rec, err := l.Track(makePayload("web-01"), "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.BasedOnEvent != "N/A" {
		t.Errorf("BasedOnEvent = %q, want N/A", rec.BasedOnEvent)
	}
}

func TestLedgerFileIsPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_alerts.json")
	l := Open(path)
	if _, err := l.Track(makePayload("web-01"), "ev"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[\n  {") {
		t.Errorf("ledger file is not indented:\n%.60s", data)
	}
	if !strings.Contains(string(data), `"host": "web-01"`) {
		t.Errorf("ledger file missing host field:\n%s", data)
	}
}

func TestSaveAfterLoadIsByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_alerts.json")
	l := Open(path)
	if _, err := l.Track(makePayload("web-01"), "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Track(makePayload("web-02"), "b"); err != nil {
		t.Fatal(err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Reloading and rewriting without any mutation must not change the
	// document.
	reloaded := Open(path)
	if err := reloaded.save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("document changed across load and save:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestActiveAndResolved(t *testing.T) {
	l := testLedger(t)
	if _, err := l.Track(makePayload("web-01"), "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Track(makePayload("web-02"), "b"); err != nil {
		t.Fatal(err)
	}

	if got := len(l.Active()); got != 2 {
		t.Errorf("Active() = %d records, want 2", got)
	}
	if got := len(l.Resolved()); got != 0 {
		t.Errorf("Resolved() = %d records, want 0", got)
	}

	sender := &fakeSender{}
	ids := l.ActiveIDs()
	if _, err := l.Resolve(context.Background(), ids[:1], sender); err != nil {
		t.Fatal(err)
	}

	if got := len(l.Active()); got != 1 {
		t.Errorf("after resolve, Active() = %d, want 1", got)
	}
	if got := len(l.Resolved()); got != 1 {
		t.Errorf("after resolve, Resolved() = %d, want 1", got)
	}
	if l.Active()[0].Host != "web-02" {
		t.Errorf("remaining active host = %q, want web-02", l.Active()[0].Host)
	}
}

func TestResolveAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_alerts.json")
	l := Open(path)
	if _, err := l.Track(makePayload("web-01"), "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Track(makePayload("web-02"), "b"); err != nil {
		t.Fatal(err)
	}

	sender := &fakeSender{}
	outcomes, err := l.Resolve(context.Background(), l.ActiveIDs(), sender)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Errorf("outcome for %s: %v", o.Record.Host, o.Err)
		}
		if o.Record.Status != bigpanda.StatusOK {
			t.Errorf("record %s status = %q, want ok", o.Record.Host, o.Record.Status)
		}
		if o.Record.ResolvedAt == nil {
			t.Errorf("record %s has no resolved_at", o.Record.Host)
		}
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sender got %d payloads, want 2", len(sender.sent))
	}
	p := sender.sent[0]
	if p.Status != bigpanda.StatusOK {
		t.Errorf("resolve payload status = %q, want ok", p.Status)
	}
	if p.Host != "web-01" || p.Check != "synthetic_web_check" {
		t.Errorf("resolve payload identity = host %q check %q", p.Host, p.Check)
	}
	if p.Description != "Resolved: Web server not responding" {
		t.Errorf("resolve payload description = %q", p.Description)
	}
	if p.EOCorrelator != "true" {
		t.Errorf("resolve payload eo_correlator = %q", p.EOCorrelator)
	}

	// Resolution must survive a reload.
	reloaded := Open(path)
	if got := len(reloaded.Active()); got != 0 {
		t.Errorf("reloaded Active() = %d, want 0", got)
	}
	if got := len(reloaded.Resolved()); got != 2 {
		t.Errorf("reloaded Resolved() = %d, want 2", got)
	}
}

func TestResolvePartialFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_alerts.json")
	l := Open(path)
	if _, err := l.Track(makePayload("web-01"), "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Track(makePayload("web-02"), "b"); err != nil {
		t.Fatal(err)
	}

	sender := &fakeSender{failHosts: map[string]bool{"web-02": true}}
	outcomes, err := l.Resolve(context.Background(), l.ActiveIDs(), sender)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			if o.Record.Host != "web-02" {
				t.Errorf("failed record = %q, want web-02", o.Record.Host)
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed outcomes = %d, want 1", failed)
	}

	// The failed record stays active for a later retry.
	reloaded := Open(path)
	active := reloaded.Active()
	if len(active) != 1 || active[0].Host != "web-02" {
		t.Errorf("reloaded active = %+v, want only web-02", active)
	}

	// Retry with a working sender resolves the remainder.
	retrySender := &fakeSender{}
	if _, err := reloaded.Resolve(context.Background(), reloaded.ActiveIDs(), retrySender); err != nil {
		t.Fatal(err)
	}
	if got := len(reloaded.Active()); got != 0 {
		t.Errorf("after retry, Active() = %d, want 0", got)
	}
}

func TestResolveSkipsUnknownAndResolved(t *testing.T) {
	l := testLedger(t)
	if _, err := l.Track(makePayload("web-01"), "a"); err != nil {
		t.Fatal(err)
	}

	ids := l.ActiveIDs()
	sender := &fakeSender{}
	if _, err := l.Resolve(context.Background(), ids, sender); err != nil {
		t.Fatal(err)
	}

	// Same IDs again plus an unknown one: nothing to do, nothing sent.
	outcomes, err := l.Resolve(context.Background(), append(ids, "no-such-id"), sender)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 0 {
		t.Errorf("outcomes = %d, want 0", len(outcomes))
	}
	if len(sender.sent) != 1 {
		t.Errorf("sender got %d payloads, want 1 (no re-sends)", len(sender.sent))
	}
}
