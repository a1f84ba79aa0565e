// Package generator produces internal monitoring alert content aligned
// with an external disruption event.
package generator

import (
	"context"
	"encoding/json"

	"eosim/internal/event"
)

// Generator produces the content of one internal alert for an external
// event. Implementations are expected to be slow (network-bound).
type Generator interface {
	Generate(ctx context.Context, ev event.Event) (*Record, error)
}

// Record is generated alert content. Field names mirror the OIM payload
// schema the model is prompted to fill; anything the model omits stays
// at its zero value and is defaulted at payload build time.
type Record struct {
	Host                string     `json:"host"`
	Check               string     `json:"check"`
	Description         string     `json:"description"`
	Service             string     `json:"service"`
	Application         string     `json:"application"`
	Cluster             string     `json:"cluster"`
	Instance            string     `json:"instance"`
	Location            string     `json:"location"`
	Environment         string     `json:"environment"`
	CloudRegion         string     `json:"cloud_region"`
	CloudProvider       string     `json:"cloud_provider"`
	CloudAccountID      string     `json:"cloud_account_id"`
	AssignmentGroup     string     `json:"assignment_group"`
	EscalationGroup     string     `json:"escalation_group"`
	BusinessCriticality string     `json:"business_criticality"`
	KnownDependencies   StringList `json:"known_dependencies"`
	BusinessOwner       string     `json:"business_owner"`
}

// StringList tolerates the model emitting either a JSON array of strings
// or a single bare string. Any other shape decodes to nil rather than
// failing the whole record.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	*s = nil
	return nil
}
