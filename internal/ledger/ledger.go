// Package ledger tracks alerts sent to BigPanda so they can be resolved
// later. The ledger is one pretty-printed JSON document, loaded
// fail-soft and rewritten in full after every change.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"eosim/internal/bigpanda"
)

// Record is one tracked alert: the payload fields a resolve must
// reproduce, plus bookkeeping about when and why it was sent.
type Record struct {
	ID                  string          `json:"id"`
	Host                string          `json:"host"`
	Check               string          `json:"check"`
	Description         string          `json:"description"`
	Service             string          `json:"service"`
	Application         string          `json:"application"`
	Cluster             string          `json:"cluster"`
	Instance            string          `json:"instance"`
	Location            string          `json:"location"`
	Environment         string          `json:"environment"`
	CloudRegion         string          `json:"cloud_region"`
	CloudProvider       string          `json:"cloud_provider"`
	CloudAccountID      string          `json:"cloud_account_id"`
	AssignmentGroup     string          `json:"assignment_group"`
	EscalationGroup     string          `json:"escalation_group"`
	BusinessCriticality string          `json:"business_criticality"`
	KnownDependencies   []string        `json:"known_dependencies"`
	BusinessOwner       string          `json:"business_owner"`
	SentAt              time.Time       `json:"sent_at"`
	BasedOnEvent        string          `json:"based_on_event"`
	Status              bigpanda.Status `json:"status"`
	ResolvedAt          *time.Time      `json:"resolved_at,omitempty"`
}

// Active reports whether the record still needs resolving.
func (r Record) Active() bool {
	return r.Status != bigpanda.StatusOK
}

// Snapshot returns the identity fields a resolve payload must carry.
func (r Record) Snapshot() bigpanda.Snapshot {
	return bigpanda.Snapshot{
		Host:        r.Host,
		Check:       r.Check,
		Description: r.Description,
		Service:     r.Service,
		Application: r.Application,
		Cluster:     r.Cluster,
		Instance:    r.Instance,
		Location:    r.Location,
		Environment: r.Environment,
	}
}

// Ledger is the sent-alert tracking file.
type Ledger struct {
	path    string
	records []Record
}

// Open loads the ledger at path. A missing, unreadable, or corrupt file
// yields an empty ledger rather than an error; the demo keeps working
// and the file is rewritten on the next successful send.
func Open(path string) *Ledger {
	l := &Ledger{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("ledger unreadable, starting empty", "path", path, "error", err)
		}
		return l
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		slog.Debug("ledger corrupt, starting empty", "path", path, "error", err)
		l.records = nil
	}
	return l
}

// Path returns the backing file path.
func (l *Ledger) Path() string { return l.path }

// Len returns the total number of tracked records.
func (l *Ledger) Len() int { return len(l.records) }

// All returns every tracked record in insertion order.
func (l *Ledger) All() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Active returns the records still awaiting resolution.
func (l *Ledger) Active() []Record {
	var out []Record
	for _, r := range l.records {
		if r.Active() {
			out = append(out, r)
		}
	}
	return out
}

// Resolved returns the records already resolved.
func (l *Ledger) Resolved() []Record {
	var out []Record
	for _, r := range l.records {
		if !r.Active() {
			out = append(out, r)
		}
	}
	return out
}

// ActiveIDs returns the IDs of all active records, in insertion order.
func (l *Ledger) ActiveIDs() []string {
	var ids []string
	for _, r := range l.records {
		if r.Active() {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Track records a successfully delivered alert and persists the ledger
// immediately. The record always starts critical regardless of the
// payload's status field.
func (l *Ledger) Track(p bigpanda.Payload, basedOn string) (Record, error) {
	if basedOn == "" {
		basedOn = "N/A"
	}
	deps := p.KnownDependencies
	if deps == nil {
		deps = []string{}
	}
	rec := Record{
		ID:                  uuid.NewString(),
		Host:                p.Host,
		Check:               p.Check,
		Description:         p.Description,
		Service:             p.Service,
		Application:         p.Application,
		Cluster:             p.Cluster,
		Instance:            p.Instance,
		Location:            p.Location,
		Environment:         p.Environment,
		CloudRegion:         p.CloudRegion,
		CloudProvider:       p.CloudProvider,
		CloudAccountID:      p.CloudAccountID,
		AssignmentGroup:     p.AssignmentGroup,
		EscalationGroup:     p.EscalationGroup,
		BusinessCriticality: p.BusinessCriticality,
		KnownDependencies:   deps,
		BusinessOwner:       p.BusinessOwner,
		SentAt:              time.Now().UTC(),
		BasedOnEvent:        basedOn,
		Status:              bigpanda.StatusCritical,
	}
	l.records = append(l.records, rec)
	if err := l.save(); err != nil {
		return rec, fmt.Errorf("saving ledger: %w", err)
	}
	return rec, nil
}

// Outcome is the per-record result of a resolve batch.
type Outcome struct {
	Record Record
	Err    error
}

// Resolve sends an ok-status payload for each identified record through
// sender. Records whose delivery succeeds flip to ok and get a resolved
// timestamp; failures stay active so they can be retried later. IDs that
// are unknown or already resolved are skipped. The file is written once,
// after the whole batch.
func (l *Ledger) Resolve(ctx context.Context, ids []string, sender bigpanda.Sender) ([]Outcome, error) {
	byID := make(map[string]*Record, len(l.records))
	for i := range l.records {
		byID[l.records[i].ID] = &l.records[i]
	}

	var outcomes []Outcome
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok || !rec.Active() {
			continue
		}
		if err := sender.Send(ctx, bigpanda.BuildResolve(rec.Snapshot())); err != nil {
			outcomes = append(outcomes, Outcome{Record: *rec, Err: err})
			continue
		}
		now := time.Now().UTC()
		rec.Status = bigpanda.StatusOK
		rec.ResolvedAt = &now
		outcomes = append(outcomes, Outcome{Record: *rec})
	}

	if err := l.save(); err != nil {
		return outcomes, fmt.Errorf("saving ledger: %w", err)
	}
	return outcomes, nil
}

// save rewrites the whole document. Writing a temp file and renaming it
// into place keeps an interrupt from leaving a half-written ledger.
func (l *Ledger) save() error {
	records := l.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}
