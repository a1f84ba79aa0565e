package bigpanda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Configurator performs the one-time OIM integration setup, telling
// BigPanda how to parse this tool's alert payloads.
type Configurator struct {
	baseURL    string
	orgToken   string
	appKey     string
	httpClient *http.Client
}

// NewConfigurator creates a configurator for the given configuration
// base URL and credentials.
func NewConfigurator(baseURL, orgToken, appKey string, timeout time.Duration) *Configurator {
	return &Configurator{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		orgToken: orgToken,
		appKey:   appKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configure POSTs the parser configuration for the app key. The request
// replaces the integration's entire existing configuration. A 401
// usually means the Org Token is wrong, a 404 that the app key does not
// match an existing OIM integration; callers can inspect the returned
// *APIError to say so.
func (c *Configurator) Configure(ctx context.Context) error {
	body, err := configPayload()
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.appKey, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.orgToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("configuring integration: %w", err)
	}
	defer resp.Body.Close()

	if !successStatus(resp.StatusCode) {
		return newAPIError(resp)
	}

	slog.Debug("oim integration configured", "app_key", c.appKey)
	return nil
}

// Parser configuration wire types.
type oimConfig struct {
	Config        parserConfig `json:"config"`
	SamplePayload string       `json:"sample_payload"`
}

type parserConfig struct {
	MapRemaining              bool         `json:"map_remaining"`
	IsArray                   bool         `json:"is_array"`
	SecondaryProperty         []property   `json:"secondary_property"`
	MapRemainingFlattenArrays bool         `json:"map_remaining_flatten_arrays"`
	PrimaryProperty           []property   `json:"primary_property"`
	Version                   string       `json:"version"`
	ForceLowercase            bool         `json:"force_lowercase"`
	AdditionalAttributes      []attribute  `json:"additional_attributes"`
	Status                    statusConfig `json:"status"`
	Timestamp                 sourceConfig `json:"timestamp"`
}

type property struct {
	Name string `json:"name"`
}

type attribute struct {
	Name   string   `json:"name"`
	Source []string `json:"source"`
}

type statusConfig struct {
	DefaultTo string              `json:"default_to"`
	StatusMap map[string][]string `json:"status_map"`
	Source    []string            `json:"source"`
}

type sourceConfig struct {
	Source []string `json:"source"`
}

// oimSample is the canonical alert embedded in the configuration payload
// as a JSON string, used by BigPanda to validate the parser mapping.
type oimSample struct {
	EOCorrelator        string   `json:"eo_correlator"`
	Cluster             string   `json:"cluster"`
	Application         string   `json:"application"`
	Service             string   `json:"service"`
	Host                string   `json:"host"`
	Description         string   `json:"description"`
	Check               string   `json:"check"`
	Status              string   `json:"status"`
	Instance            string   `json:"instance"`
	CloudRegion         string   `json:"cloud_region"`
	CloudProvider       string   `json:"cloud_provider"`
	CloudAccountID      string   `json:"cloud_account_id"`
	AssignmentGroup     string   `json:"assignment_group"`
	EscalationGroup     string   `json:"escalation_group"`
	BusinessCriticality string   `json:"business_criticality"`
	KnownDependencies   []string `json:"known_dependencies"`
	BusinessOwner       string   `json:"business_owner"`
	Timestamp           int64    `json:"timestamp"`
}

// configPayload builds the full configuration request body. Primary
// properties (host, service, application, cluster) and the secondary
// property (check) drive alert matching; map_remaining turns every other
// payload field into a tag.
func configPayload() ([]byte, error) {
	sample, err := json.Marshal(oimSample{
		EOCorrelator:        correlatorFlag,
		Cluster:             "app_srv_cluster",
		Application:         "Customer Account Management",
		Service:             "Customer User Experience",
		Host:                "app-srv-1.bigpanda.io",
		Description:         "Customer Portal Application - Web server not responding",
		Check:               "Synthetic Test - Web Application Service",
		Status:              string(StatusCritical),
		Instance:            "Port 443 - https://customer-portal.bigpanda.io/",
		CloudRegion:         "us-east-1",
		CloudProvider:       "aws",
		CloudAccountID:      "1234567891011",
		AssignmentGroup:     "Application Team - Web Services",
		EscalationGroup:     "Application Team - Management",
		BusinessCriticality: "tier 1",
		KnownDependencies: []string{
			"AWS Cloud",
			"AWS Lambda",
			"Customer Identity and Access Management",
			"Point of Presence - New York | CenturyLink / Lumen T3 (1000 Mbps)",
		},
		BusinessOwner: "B. Panda",
		Timestamp:     1402302570,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(oimConfig{
		Config: parserConfig{
			MapRemaining: true,
			SecondaryProperty: []property{
				{Name: "check"},
			},
			PrimaryProperty: []property{
				{Name: "host"},
				{Name: "service"},
				{Name: "application"},
				{Name: "cluster"},
			},
			Version: "2.0",
			AdditionalAttributes: []attribute{
				{Name: "host", Source: []string{"host", "device"}},
				{Name: "check", Source: []string{"check"}},
				{Name: "service", Source: []string{"service"}},
				{Name: "application", Source: []string{"application"}},
				{Name: "cluster", Source: []string{"cluster"}},
				{Name: "description", Source: []string{"description"}},
			},
			Status: statusConfig{
				DefaultTo: string(StatusCritical),
				StatusMap: map[string][]string{
					"warning":      {"warning"},
					"acknowledged": {"acknowledged"},
					"critical":     {"critical"},
					"ok":           {"ok"},
					"unknown":      {"unknown"},
				},
				Source: []string{"status"},
			},
			Timestamp: sourceConfig{Source: []string{"timestamp"}},
		},
		SamplePayload: string(sample),
	})
}
