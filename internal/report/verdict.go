package report

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Outcome classifies a completed test case.
type Outcome string

const (
	// OutcomePass means the device behaved as required.
	OutcomePass Outcome = "PASS"
	// OutcomeFail means a requirement was violated; the verdict message
	// names the violation.
	OutcomeFail Outcome = "FAIL"
	// OutcomeNotApplicable means the precondition for the case was not
	// met (e.g. no resources to exercise); the message explains why.
	OutcomeNotApplicable Outcome = "NA"
)

// Verdict is the terminal result of one test case. Verdicts are never
// retried or revised.
type Verdict struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}

// Pass returns a passing verdict.
func Pass() Verdict {
	return Verdict{Outcome: OutcomePass}
}

// Fail returns a failing verdict with the given message. Device-supplied
// text may appear in messages, so they are NFC-normalised for stable
// storage and golden comparison.
func Fail(message string) Verdict {
	return Verdict{Outcome: OutcomeFail, Message: norm.NFC.String(message)}
}

// Failf returns a failing verdict with a formatted message.
func Failf(format string, args ...any) Verdict {
	return Fail(fmt.Sprintf(format, args...))
}

// NotApplicable returns a not-applicable verdict with the given reason.
func NotApplicable(message string) Verdict {
	return Verdict{Outcome: OutcomeNotApplicable, Message: norm.NFC.String(message)}
}
