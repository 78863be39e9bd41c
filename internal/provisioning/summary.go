package provisioning

import (
	"encoding/json"
	"time"
)

// ResourceOutcome records the branch one resource's reconcile took.
type ResourceOutcome struct {
	Kind    string `json:"kind"`
	Key     string `json:"key"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// Summary accumulates what a run did: every resource outcome plus the
// warnings that did not fail the run. The report phase persists it and the
// CLI renders it. Phases append through Context helpers, one at a time, so
// no locking is needed.
type Summary struct {
	Operation string            `json:"operation"`
	Cluster   string            `json:"cluster"`
	Region    string            `json:"region"`
	AccountID string            `json:"account_id"`
	StartedAt time.Time         `json:"started_at"`
	Duration  string            `json:"duration,omitempty"`
	Resources []ResourceOutcome `json:"resources"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// NewSummary creates an empty summary starting now.
func NewSummary() *Summary {
	return &Summary{StartedAt: time.Now()}
}

// Begin labels the summary with the run's identity and restarts its clock.
func (s *Summary) Begin(operation, cluster, region, accountID string) {
	s.Operation = operation
	s.Cluster = cluster
	s.Region = region
	s.AccountID = accountID
	s.StartedAt = time.Now()
}

// Record appends one resource outcome.
func (s *Summary) Record(kind, key, outcome, detail string) {
	s.Resources = append(s.Resources, ResourceOutcome{
		Kind:    kind,
		Key:     key,
		Outcome: outcome,
		Detail:  detail,
	})
}

// Warn appends a non-fatal warning.
func (s *Summary) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// Finish stamps the run duration.
func (s *Summary) Finish() {
	s.Duration = time.Since(s.StartedAt).Round(time.Millisecond).String()
}

// Counts tallies resources per outcome for rendering.
func (s *Summary) Counts() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Resources {
		counts[r.Outcome]++
	}
	return counts
}

// JSON renders the summary as the report document.
func (s *Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
