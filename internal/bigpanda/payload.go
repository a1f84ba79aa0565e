// Package bigpanda assembles and delivers OIM alert payloads, and holds
// the one-time integration configuration.
package bigpanda

import (
	"time"

	"eosim/internal/generator"
)

// Status is the alert state BigPanda correlates on.
type Status string

const (
	StatusCritical Status = "critical"
	StatusOK       Status = "ok"
)

// correlatorFlag marks payloads produced by this tool so the correlation
// engine can pick them out.
const correlatorFlag = "true"

// timeNow is swapped in tests to pin payload timestamps.
var timeNow = time.Now

// Payload is the OIM alert wire format. Field order mirrors the payload
// the integration is configured to parse.
type Payload struct {
	Status              Status   `json:"status"`
	Host                string   `json:"host"`
	Check               string   `json:"check"`
	Description         string   `json:"description"`
	Service             string   `json:"service"`
	Application         string   `json:"application"`
	Cluster             string   `json:"cluster"`
	Instance            string   `json:"instance"`
	Location            string   `json:"location"`
	Environment         string   `json:"environment"`
	CloudRegion         string   `json:"cloud_region,omitempty"`
	CloudProvider       string   `json:"cloud_provider,omitempty"`
	CloudAccountID      string   `json:"cloud_account_id,omitempty"`
	AssignmentGroup     string   `json:"assignment_group,omitempty"`
	EscalationGroup     string   `json:"escalation_group,omitempty"`
	BusinessCriticality string   `json:"business_criticality,omitempty"`
	KnownDependencies   []string `json:"known_dependencies,omitempty"`
	BusinessOwner       string   `json:"business_owner,omitempty"`
	EOCorrelator        string   `json:"eo_correlator"`
	Timestamp           int64    `json:"timestamp"`
}

// Snapshot captures the open-time fields a resolve payload must
// reproduce so BigPanda can match it to the original alert.
type Snapshot struct {
	Host        string
	Check       string
	Description string
	Service     string
	Application string
	Cluster     string
	Instance    string
	Location    string
	Environment string
}

// Snapshot extracts the matchable identity of a payload.
func (p Payload) Snapshot() Snapshot {
	return Snapshot{
		Host:        p.Host,
		Check:       p.Check,
		Description: p.Description,
		Service:     p.Service,
		Application: p.Application,
		Cluster:     p.Cluster,
		Instance:    p.Instance,
		Location:    p.Location,
		Environment: p.Environment,
	}
}

// BuildOpen assembles a critical-status payload from generated alert
// content. The identity fields the model left empty get deterministic
// defaults; missing context fields stay off the wire.
func BuildOpen(rec *generator.Record) Payload {
	return Payload{
		Status:              StatusCritical,
		Host:                orDefault(rec.Host, "unknown-host"),
		Check:               orDefault(rec.Check, "unknown_check"),
		Description:         orDefault(rec.Description, "No description"),
		Service:             rec.Service,
		Application:         rec.Application,
		Cluster:             rec.Cluster,
		Instance:            rec.Instance,
		Location:            rec.Location,
		Environment:         orDefault(rec.Environment, "production"),
		CloudRegion:         rec.CloudRegion,
		CloudProvider:       rec.CloudProvider,
		CloudAccountID:      rec.CloudAccountID,
		AssignmentGroup:     rec.AssignmentGroup,
		EscalationGroup:     rec.EscalationGroup,
		BusinessCriticality: rec.BusinessCriticality,
		KnownDependencies:   []string(rec.KnownDependencies),
		BusinessOwner:       rec.BusinessOwner,
		EOCorrelator:        correlatorFlag,
		Timestamp:           timeNow().Unix(),
	}
}

// BuildResolve assembles the ok-status payload that closes the alert the
// snapshot was taken from. The identity fields are copied verbatim and
// the cloud and ownership context is left out, so the wire payload
// carries exactly what the correlation match needs.
func BuildResolve(s Snapshot) Payload {
	desc := s.Description
	if desc == "" {
		desc = "Alert cleared"
	}
	return Payload{
		Status:       StatusOK,
		Host:         s.Host,
		Check:        s.Check,
		Description:  "Resolved: " + desc,
		Service:      s.Service,
		Application:  s.Application,
		Cluster:      s.Cluster,
		Instance:     s.Instance,
		Location:     s.Location,
		Environment:  s.Environment,
		EOCorrelator: correlatorFlag,
		Timestamp:    timeNow().Unix(),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
