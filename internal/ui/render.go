package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"eosim/internal/bigpanda"
	"eosim/internal/event"
	"eosim/internal/format"
	"eosim/internal/history"
	"eosim/internal/ledger"
)

const timeDisplay = "2006-01-02 15:04"

// Banner renders the startup banner with the active model and target.
func Banner(model, target string) string {
	var b strings.Builder

	rule := strings.Repeat("=", 46)
	b.WriteString(rule + "\n")
	b.WriteString("EO Strata Demo Simulator\n")
	b.WriteString("External Observability Correlation Engine\n")
	b.WriteString(strings.Repeat("-", 46) + "\n")
	b.WriteString("Generates realistic internal alerts aligned\n")
	b.WriteString("with live external disruption events to\n")
	b.WriteString("demonstrate automatic correlation.\n\n")
	fmt.Fprintf(&b, "Model: %s  Target: %s\n", model, target)
	b.WriteString(rule + "\n")

	return b.String()
}

// Menu renders the main menu with live counts.
func Menu(activeCount, totalCount int) string {
	var b strings.Builder

	b.WriteString("\nMain Menu\n")
	b.WriteString("  1. Generate & Send Alert   (from live events)\n")
	fmt.Fprintf(&b, "  2. Resolve Previous Alerts (%d active)\n", activeCount)
	fmt.Fprintf(&b, "  3. View Sent Alerts        (%d total)\n", totalCount)
	b.WriteString("  4. Setup OIM Integration   (one-time config)\n")
	b.WriteString("  5. Exit\n")

	return b.String()
}

// TypeSummaryTable renders per-type event counts with a severity
// breakdown and one example title per type.
func TypeSummaryTable(sums []event.TypeSummary) string {
	var b strings.Builder

	b.WriteString("\nAvailable Event Types\n\n")
	fmt.Fprintf(&b, "%4s  %-16s  %5s  %-19s  %s\n", "#", "Alert Type", "Count", "Crit/High/Med/Low", "Example")

	for i, s := range sums {
		sevs := fmt.Sprintf("%d/%d/%d/%d", s.Critical, s.High, s.Medium, s.Low)
		fmt.Fprintf(&b, "%4d  %-16s  %5d  %-19s  %s\n",
			i+1, s.Type, s.Count, sevs, format.Truncate(s.Example, 43))
	}

	return b.String()
}

// EventTable renders a numbered event table, capped at limit rows.
func EventTable(events []event.Event, limit int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nActive Events (%d matching)\n\n", len(events))
	fmt.Fprintf(&b, "%4s  %-10s  %-9s  %-50s  %s\n", "#", "Type", "Sev", "Title", "Location")

	shown := events
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	for i, ev := range shown {
		sev := string(ev.Severity)
		if sev == "" {
			sev = "unknown"
		}
		fmt.Fprintf(&b, "%4d  %-10s  %-9s  %-50s  %s\n",
			i+1,
			format.Truncate(ev.Type(), 10),
			sev,
			format.Truncate(orNA(ev.Title), 48),
			format.Truncate(orNA(ev.Location.Description), 28))
	}

	if len(events) > len(shown) {
		fmt.Fprintf(&b, "\nShowing first %d of %d events. Narrow your type selection for more specific results.\n",
			len(shown), len(events))
	}

	return b.String()
}

// EventDetail renders the full view of one selected event.
func EventDetail(ev event.Event) string {
	affected := "N/A"
	if ev.AffectedCount > 0 {
		affected = format.Comma(ev.AffectedCount)
	}

	var b strings.Builder
	b.WriteString("\nSelected External Event\n\n")
	fmt.Fprintf(&b, "%s\n\n", orNA(ev.Title))
	fmt.Fprintf(&b, "Type:        %s\n", orNA(ev.AlertType))
	fmt.Fprintf(&b, "Severity:    %s\n", orNA(string(ev.Severity)))
	fmt.Fprintf(&b, "Location:    %s\n", orNA(ev.Location.Description))
	fmt.Fprintf(&b, "Start Time:  %s\n", orNA(ev.StartTime))
	fmt.Fprintf(&b, "Source:      %s\n", orNA(ev.SourceSystem))
	fmt.Fprintf(&b, "Affected:    %s\n\n", affected)
	fmt.Fprintf(&b, "Description:\n%s\n", format.Truncate(orNA(ev.Description), 300))

	return b.String()
}

// PayloadPreview renders the payload fields in wire order, skipping
// fields the generator left empty. basedOn names the external event the
// alert was derived from; empty hides the line.
func PayloadPreview(p bigpanda.Payload, basedOn string) string {
	deps := ""
	if len(p.KnownDependencies) > 0 {
		deps = strings.Join(p.KnownDependencies, ", ")
	}

	fields := []struct {
		label string
		value string
	}{
		{"status", string(p.Status)},
		{"host", p.Host},
		{"check", p.Check},
		{"description", p.Description},
		{"service", p.Service},
		{"application", p.Application},
		{"cluster", p.Cluster},
		{"instance", p.Instance},
		{"location", p.Location},
		{"environment", p.Environment},
		{"cloud_region", p.CloudRegion},
		{"cloud_provider", p.CloudProvider},
		{"cloud_account_id", p.CloudAccountID},
		{"assignment_group", p.AssignmentGroup},
		{"escalation_group", p.EscalationGroup},
		{"business_criticality", p.BusinessCriticality},
		{"known_dependencies", deps},
		{"business_owner", p.BusinessOwner},
		{"eo_correlator", p.EOCorrelator},
		{"timestamp", strconv.FormatInt(p.Timestamp, 10)},
	}

	var b strings.Builder
	b.WriteString("\nBigPanda OIM Alert Payload\n\n")
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "  %-22s%s\n", f.label, format.Truncate(f.value, 68))
	}

	if basedOn != "" {
		fmt.Fprintf(&b, "\nCorrelated to external event: %s\n", format.Truncate(basedOn, 80))
	}

	return b.String()
}

// ActiveAlertTable renders the numbered table of unresolved alerts.
func ActiveAlertTable(records []ledger.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nActive Alerts (%d)\n\n", len(records))
	fmt.Fprintf(&b, "%4s  %-36s  %-20s  %-18s  %-16s  %s\n", "#", "Host", "Check", "Location", "Sent At", "Based On")

	for i, r := range records {
		location := r.Location
		if location == "" {
			location = r.Cluster
		}
		fmt.Fprintf(&b, "%4d  %-36s  %-20s  %-18s  %-16s  %s\n",
			i+1,
			format.Truncate(orNA(r.Host), 36),
			format.Truncate(orNA(r.Check), 20),
			format.Truncate(orNA(location), 18),
			r.SentAt.Local().Format(timeDisplay),
			format.Truncate(orNA(r.BasedOnEvent), 30))
	}

	return b.String()
}

// HistoryTable renders recorded delivery attempts, newest first.
func HistoryTable(attempts []history.Attempt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nDelivery History (%d)\n\n", len(attempts))
	fmt.Fprintf(&b, "%-16s  %-9s  %-7s  %-32s  %-20s  %s\n", "Time", "Action", "Outcome", "Host", "Check", "Detail")

	for _, a := range attempts {
		fmt.Fprintf(&b, "%-16s  %-9s  %-7s  %-32s  %-20s  %s\n",
			a.Timestamp.Local().Format(timeDisplay),
			a.Action,
			a.Outcome,
			format.Truncate(a.Host, 32),
			format.Truncate(a.Check, 20),
			format.Truncate(a.Detail, 60))
	}

	return b.String()
}

// DeliverySummary renders aggregate delivery counts for the status view.
func DeliverySummary(s history.Summary) string {
	if s.Total == 0 {
		return "No deliveries recorded."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d deliveries: %d sent, %d failed (%d opens, %d resolves)",
		s.Total, s.Sent, s.Failed, s.Opens, s.Resolves)
	if !s.LastAt.IsZero() {
		fmt.Fprintf(&b, "\nLast delivery %s ago", format.Age(time.Since(s.LastAt)))
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
