package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/nmoscheck/internal/client"
	"github.com/roach88/nmoscheck/internal/nmos"
)

// get performs a GET and treats transport failures and non-2xx statuses
// uniformly as "the API did not respond as expected".
func (c *Checker) get(ctx context.Context, url string) (*client.Response, bool, string) {
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, false, err.Error()
	}
	if !resp.OK() {
		return resp, false, fmt.Sprintf("status %d", resp.StatusCode)
	}
	return resp, true, ""
}

// getIS04Resources retrieves all Senders or Receivers from the Node API,
// keeping hold of the returned objects. A kind already fetched in this
// run is not fetched again.
func (c *Checker) getIS04Resources(ctx context.Context, kind nmos.ResourceKind) (bool, string) {
	if c.is04.requested[kind] {
		return true, ""
	}

	resp, ok, detail := c.get(ctx, c.nodeURL+string(kind))
	if !ok {
		return false, fmt.Sprintf("Node API did not respond as expected: %s", detail)
	}

	var resources []nmos.Resource
	if err := resp.JSON(&resources); err != nil {
		return false, "Non-JSON response returned from Node API"
	}

	c.is04.resources[kind] = append(c.is04.resources[kind], resources...)
	c.is04.requested[kind] = true

	return true, ""
}

// refreshIS04Resources forces a re-retrieval of the IS-04 Senders or
// Receivers, bypassing the requested marker. Cached entries are kept; the
// new fetch appends, so call this once per logical refresh.
func (c *Checker) refreshIS04Resources(ctx context.Context, kind nmos.ResourceKind) (bool, string) {
	delete(c.is04.requested, kind)
	return c.getIS04Resources(ctx, kind)
}

// getIS05Resources retrieves all Sender or Receiver ids from the
// Connection API's single listing, stripped of their trailing slash.
func (c *Checker) getIS05Resources(ctx context.Context, kind nmos.ResourceKind) (bool, string) {
	if c.is05.requested[kind] {
		return true, ""
	}

	resp, ok, detail := c.get(ctx, c.connURL+"single/"+string(kind))
	if !ok {
		return false, fmt.Sprintf("Connection API did not respond as expected: %s", detail)
	}

	var ids []string
	if err := resp.JSON(&ids); err != nil {
		return false, "Non-JSON response returned from Connection API"
	}

	for _, id := range ids {
		c.is05.ids[kind] = append(c.is05.ids[kind], strings.TrimRight(id, "/"))
	}
	c.is05.requested[kind] = true

	return true, ""
}
