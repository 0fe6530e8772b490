package checks

import (
	"net/url"
	"slices"
	"strings"

	"github.com/roach88/nmoscheck/internal/nmos"
)

// validTransports returns the transport URNs in scope for cross-API
// comparison given the Connection API version under test.
func (c *Checker) validTransports() []string {
	return nmos.ValidTransports(c.connVersion)
}

// checkIS04InIS05 reports whether every cached Node API resource of the
// given kind with an in-scope transport also appears in the Connection
// API id cache. All resources are examined; out-of-scope transports are
// skipped since the Connection API may legitimately not expose them.
func (c *Checker) checkIS04InIS05(kind nmos.ResourceKind) bool {
	valid := c.validTransports()

	result := true
	for _, resource := range c.is04.resources[kind] {
		if !slices.Contains(valid, resource.Transport()) {
			continue
		}
		if !slices.Contains(c.is05.ids[kind], resource.ID()) {
			result = false
		}
	}

	return result
}

// checkIS05InIS04 reports whether every cached Connection API id of the
// given kind matches some Node API resource. The first id with no match
// fails the whole check.
func (c *Checker) checkIS05InIS04(kind nmos.ResourceKind) bool {
	for _, id := range c.is05.ids[kind] {
		found := false
		for _, resource := range c.is04.resources[kind] {
			if resource.ID() == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// compareURLs checks that two URLs to a given API are sufficiently
// similar: scheme, hostname and path must match exactly after trailing
// slashes are stripped, and the effective ports must agree with absent
// ports normalised to the scheme default. Query and fragment are ignored.
func compareURLs(url1, url2 string) bool {
	parsed1, err := url.Parse(strings.TrimRight(url1, "/"))
	if err != nil {
		return false
	}
	parsed2, err := url.Parse(strings.TrimRight(url2, "/"))
	if err != nil {
		return false
	}

	if parsed1.Scheme != parsed2.Scheme {
		return false
	}
	if parsed1.Hostname() != parsed2.Hostname() {
		return false
	}
	if parsed1.Path != parsed2.Path {
		return false
	}

	return effectivePort(parsed1) == effectivePort(parsed2)
}

func effectivePort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	switch u.Scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}
