package checks

import (
	"context"
	"fmt"

	"github.com/roach88/nmoscheck/internal/nmos"
)

// activateCheckVersion verifies that activating each Connection API
// resource bumps the matching Node API resource's version stamp. The
// current version is captured first; after the activation and a fixed
// settle wait the resource is re-read individually and the new stamp must
// compare strictly newer.
func (c *Checker) activateCheckVersion(ctx context.Context, kind nmos.ResourceKind) (bool, string) {
	for _, id := range c.is05.ids[kind] {
		found := false
		for _, resource := range c.is04.resources[kind] {
			if resource.ID() != id {
				continue
			}
			found = true

			currentVersion, ok := resource.Version()
			if !ok {
				return false, "Version attribute was not found in IS-04 resource"
			}

			if ok, msg := c.utils.CheckActivation(ctx, kind, id); !ok {
				return false, msg
			}

			c.sleep(settleTime)

			resp, ok, detail := c.get(ctx, c.nodeURL+string(kind)+"/"+id)
			if !ok {
				return false, fmt.Sprintf("Node API did not respond as expected: %s", detail)
			}

			var refreshed nmos.Resource
			if err := resp.JSON(&refreshed); err != nil {
				return false, "Non-JSON response returned from Node API"
			}

			newVersion, ok := refreshed.Version()
			if !ok {
				return false, "Version attribute was not found in IS-04 resource"
			}

			if c.utils.CompareVersions(newVersion, currentVersion) != 1 {
				return false, fmt.Sprintf("IS-04 resource version did not change when %s %s was activated",
					kind.Singular(), id)
			}
		}

		if !found {
			return false, fmt.Sprintf("Unable to find an IS-04 resource with ID %s", id)
		}
	}

	return true, ""
}

// activateCheckParked parks every Connection API resource of the given
// kind, waits for the change to settle, then force-refreshes the Node API
// cache and verifies each resource is reported inactive and unsubscribed.
func (c *Checker) activateCheckParked(ctx context.Context, kind nmos.ResourceKind) (bool, string) {
	for _, id := range c.is05.ids[kind] {
		if ok, msg := c.utils.ParkResource(ctx, kind, id); !ok {
			return false, msg
		}
	}

	c.sleep(settleTime)

	if ok, msg := c.refreshIS04Resources(ctx, kind); !ok {
		return false, msg
	}

	for _, id := range c.is05.ids[kind] {
		found := false
		for _, resource := range c.is04.resources[kind] {
			if resource.ID() != id {
				continue
			}
			found = true

			subscription, ok := resource.Subscription()
			if !ok {
				return false, "Subscription attribute was not found in IS-04 resource"
			}

			// The 'active' subscription key only exists from IS-04 v1.2.
			if c.nodeVersion.Major > 1 || (c.nodeVersion.Major == 1 && c.nodeVersion.Minor > 1) {
				active, ok := subscription["active"]
				if !ok {
					return false, "Subscription attribute was not found in IS-04 resource"
				}
				if isActive, isBool := active.(bool); !isBool || isActive {
					return false, fmt.Sprintf(
						"IS-04 %s %s was not marked as inactive when IS-05 master_enable set to false",
						kind.Singular(), id)
				}
			}

			peerField := kind.SubscriptionPeerField()
			peer, ok := subscription[peerField]
			if !ok {
				return false, "Subscription attribute was not found in IS-04 resource"
			}
			if peer != nil {
				return false, fmt.Sprintf("IS-04 %s %s still indicates a subscribed '%s' when parked",
					kind.Singular(), id, peerField)
			}
		}

		if !found {
			return false, fmt.Sprintf("Unable to find an IS-04 resource with ID %s", id)
		}
	}

	return true, ""
}
