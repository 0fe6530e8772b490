// Package checks implements the IS-04/IS-05 interoperability test cases.
//
// A Checker is constructed once per run against a single device under
// test. It holds two per-kind resource caches (one for each API) so that
// successive test cases do not re-fetch lists they have already seen;
// cases that depend on the effects of a write force a refresh instead.
// Test cases execute strictly sequentially and each produces exactly one
// verdict. A failure in one case never aborts the run.
package checks
