// Package report holds test case verdicts, aggregates them into run
// reports, renders them for humans or machines, and persists run history.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Result pairs a test case's identity with its verdict.
type Result struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Verdict
}

// Report aggregates the results of one conformance run.
type Report struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	NodeURL       string    `json:"node_url"`
	ConnectionURL string    `json:"connection_url"`
	Results       []Result  `json:"results"`
}

// New creates an empty report with a freshly generated, time-sortable
// run identifier.
func New(nodeURL, connectionURL string) *Report {
	return &Report{
		RunID:         uuid.Must(uuid.NewV7()).String(),
		StartedAt:     time.Now().UTC(),
		NodeURL:       nodeURL,
		ConnectionURL: connectionURL,
	}
}

// Add appends a result to the report.
func (r *Report) Add(result Result) {
	r.Results = append(r.Results, result)
}

// Counts returns the number of results per outcome.
func (r *Report) Counts() (passed, failed, notApplicable int) {
	for _, result := range r.Results {
		switch result.Outcome {
		case OutcomePass:
			passed++
		case OutcomeFail:
			failed++
		case OutcomeNotApplicable:
			notApplicable++
		}
	}
	return passed, failed, notApplicable
}

// Failed reports whether any test case failed.
func (r *Report) Failed() bool {
	_, failed, _ := r.Counts()
	return failed > 0
}

// Render writes a human-readable summary of the report.
func (r *Report) Render(w io.Writer) error {
	for _, result := range r.Results {
		line := fmt.Sprintf("%-4s %-10s %s", result.Outcome, result.ID, result.Description)
		if result.Message != "" {
			line += "\n     " + result.Message
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	passed, failed, na := r.Counts()
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d not applicable\n", passed, failed, na)
	return err
}
