// Package is05 implements the Connection API utility operations the
// conformance checks depend on: performing an immediate activation,
// parking a resource, and ordering resource version stamps.
package is05

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/nmoscheck/internal/client"
	"github.com/roach88/nmoscheck/internal/nmos"
)

// ActivationModeImmediate commits staged parameters without scheduling.
const ActivationModeImmediate = "activate_immediate"

// Utils drives write operations against a Connection API.
type Utils struct {
	client  *client.Client
	baseURL string
}

// NewUtils creates a Utils bound to the Connection API base URL
// (versioned, with trailing slash).
func NewUtils(c *client.Client, connectionURL string) *Utils {
	if !strings.HasSuffix(connectionURL, "/") {
		connectionURL += "/"
	}
	return &Utils{client: c, baseURL: connectionURL}
}

// CheckActivation performs an immediate activation of the given resource
// via its staged endpoint. It reports success plus a message describing
// any failure.
func (u *Utils) CheckActivation(ctx context.Context, kind nmos.ResourceKind, id string) (bool, string) {
	body := map[string]any{
		"activation": map[string]any{"mode": ActivationModeImmediate},
	}
	return u.patchStaged(ctx, kind, id, body)
}

// ParkResource disables a resource by setting master_enable to false and
// activating the change immediately. A parked resource is expected to be
// reported as inactive and unsubscribed by the Node API.
func (u *Utils) ParkResource(ctx context.Context, kind nmos.ResourceKind, id string) (bool, string) {
	body := map[string]any{
		"master_enable": false,
		"activation":    map[string]any{"mode": ActivationModeImmediate},
	}
	return u.patchStaged(ctx, kind, id, body)
}

func (u *Utils) patchStaged(ctx context.Context, kind nmos.ResourceKind, id string, body map[string]any) (bool, string) {
	url := u.baseURL + "single/" + string(kind) + "/" + id + "/staged"

	resp, err := u.client.Patch(ctx, url, body)
	if err != nil {
		return false, fmt.Sprintf("Connection API did not respond as expected: %v", err)
	}
	if !resp.OK() {
		return false, fmt.Sprintf("Connection API returned status %d for %s %s", resp.StatusCode, kind.Singular(), id)
	}

	var staged map[string]any
	if err := resp.JSON(&staged); err != nil {
		return false, "Non-JSON response returned from Connection API"
	}

	return true, ""
}

// CompareVersions orders two "<seconds>:<nanoseconds>" version stamps.
// It returns 1 when a is newer than b, -1 when older and 0 when equal or
// when either stamp is malformed.
func (u *Utils) CompareVersions(a, b string) int {
	return CompareVersionStamps(a, b)
}

// CompareVersionStamps is the package-level form of Utils.CompareVersions.
func CompareVersionStamps(a, b string) int {
	aSec, aNano, okA := parseVersionStamp(a)
	bSec, bNano, okB := parseVersionStamp(b)
	if !okA || !okB {
		return 0
	}

	switch {
	case aSec != bSec:
		if aSec > bSec {
			return 1
		}
		return -1
	case aNano != bNano:
		if aNano > bNano {
			return 1
		}
		return -1
	}
	return 0
}

func parseVersionStamp(s string) (sec, nano int64, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	nano, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return sec, nano, true
}
