package checks

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/nmoscheck/internal/nmos"
	"github.com/roach88/nmoscheck/internal/report"
)

// TestCase is one independently-verdicted conformance check. Run order
// is fixed for reporting but no case depends on another's verdict.
type TestCase struct {
	ID          string
	Description string
	Run         func(ctx context.Context) report.Verdict
}

// Cases returns the ordered test case list.
func (c *Checker) Cases() []TestCase {
	cases := []TestCase{
		{"test_01", "Check that version 1.2 or greater of the Node API is available", c.caseNodeAPIVersion},
		{"test_02", "At least one Device is showing an IS-05 control advertisement matching the API under test", c.caseDeviceControlPresent},
		{"test_03", "Receivers shown in Connection API matches those shown in Node API", c.caseReceiverListsMatch},
		{"test_04", "Senders shown in Connection API matches those shown in Node API", c.caseSenderListsMatch},
		{"test_05", "Activation of a receiver increments the version timestamp", c.caseReceiverActivationVersion},
		{"test_06", "Activation of a sender increments the version timestamp", c.caseSenderActivationVersion},
		{"test_07", "Activation of a receiver updates the IS-04 subscription", c.caseReceiverActivationSubscription},
		{"test_08", "Activation of a sender updates the IS-04 subscription", c.caseSenderActivationSubscription},
		{"test_09", "IS-04 interface bindings array matches length of IS-05 transport_params array", c.caseInterfaceBindingLengths},
		{"test_10", "IS-04 manifest_href matches IS-05 transportfile", c.caseTransportFilesMatch},
	}

	if c.validator != nil {
		cases = append(cases, TestCase{
			"auto_schemas", "Node API resources validate against their schemas", c.caseResourceSchemas,
		})
	}

	return cases
}

// test_01
func (c *Checker) caseNodeAPIVersion(ctx context.Context) report.Verdict {
	if !c.nodeVersion.AtLeast(1, 2) {
		return report.Fail("Node API must be running v1.2 or greater")
	}

	if _, ok, detail := c.get(ctx, c.nodeURL); !ok {
		return report.Failf("Node API did not respond as expected: %s", detail)
	}
	return report.Pass()
}

// test_02
func (c *Checker) caseDeviceControlPresent(ctx context.Context) report.Verdict {
	resp, ok, detail := c.get(ctx, c.nodeURL+"devices")
	if !ok {
		return report.Failf("Node API did not respond as expected: %s", detail)
	}

	var devices []map[string]any
	if err := resp.JSON(&devices); err != nil {
		return report.Fail("Non-JSON response returned from Node API")
	}

	controlType := "urn:x-nmos:control:sr-ctrl/" + c.connVersion.String()

	var matchingControls int
	foundAPIMatch := false
	for _, device := range devices {
		rawControls, ok := device["controls"]
		if !ok {
			return report.Fail("One or more Devices were missing the 'controls' attribute")
		}
		controls, ok := rawControls.([]any)
		if !ok {
			return report.Fail("One or more Devices were missing the 'controls' attribute")
		}

		for _, rawControl := range controls {
			control, ok := rawControl.(map[string]any)
			if !ok {
				continue
			}
			if control["type"] != controlType {
				continue
			}
			matchingControls++
			href, ok := control["href"].(string)
			if !ok {
				return report.Fail("One or more Devices were missing the 'controls' attribute")
			}
			if compareURLs(c.connURL, href) {
				foundAPIMatch = true
			}
		}
	}

	switch {
	case matchingControls > 0 && foundAPIMatch:
		return report.Pass()
	case matchingControls > 0:
		return report.Fail("Found one or more Device controls, but no href matched the Connection API under test")
	default:
		return report.Failf("Unable to find any Devices which expose the control type '%s'", controlType)
	}
}

// test_03 / test_04
func (c *Checker) caseReceiverListsMatch(ctx context.Context) report.Verdict {
	return c.caseListsMatch(ctx, nmos.Receivers)
}

func (c *Checker) caseSenderListsMatch(ctx context.Context) report.Verdict {
	return c.caseListsMatch(ctx, nmos.Senders)
}

func (c *Checker) caseListsMatch(ctx context.Context, kind nmos.ResourceKind) report.Verdict {
	if ok, msg := c.getIS04Resources(ctx, kind); !ok {
		return report.Fail(msg)
	}
	if ok, msg := c.getIS05Resources(ctx, kind); !ok {
		return report.Fail(msg)
	}

	if !c.checkIS04InIS05(kind) {
		return report.Failf("Unable to find all %s from IS-04 in IS-05", kind.Plural())
	}
	if !c.checkIS05InIS04(kind) {
		return report.Failf("Unable to find all %s from IS-05 in IS-04", kind.Plural())
	}

	return report.Pass()
}

// test_05 / test_06
func (c *Checker) caseReceiverActivationVersion(ctx context.Context) report.Verdict {
	return c.caseActivationVersion(ctx, nmos.Receivers)
}

func (c *Checker) caseSenderActivationVersion(ctx context.Context) report.Verdict {
	return c.caseActivationVersion(ctx, nmos.Senders)
}

func (c *Checker) caseActivationVersion(ctx context.Context, kind nmos.ResourceKind) report.Verdict {
	if ok, msg := c.refreshIS04Resources(ctx, kind); !ok {
		return report.Fail(msg)
	}
	if ok, msg := c.getIS05Resources(ctx, kind); !ok {
		return report.Fail(msg)
	}

	if len(c.is05.ids[kind]) == 0 {
		return report.NotApplicable(fmt.Sprintf("Could not find any IS-05 %s to test", kind.Plural()))
	}

	if ok, msg := c.activateCheckVersion(ctx, kind); !ok {
		return report.Fail(msg)
	}
	return report.Pass()
}

// test_07 / test_08
func (c *Checker) caseReceiverActivationSubscription(ctx context.Context) report.Verdict {
	return c.caseActivationSubscription(ctx, nmos.Receivers)
}

func (c *Checker) caseSenderActivationSubscription(ctx context.Context) report.Verdict {
	// Senders only gained a subscription object in IS-04 v1.2.
	if c.nodeVersion.Major == 1 && c.nodeVersion.Minor < 2 {
		return report.NotApplicable("IS-04 v1.1 and earlier Senders do not have a subscription object")
	}
	return c.caseActivationSubscription(ctx, nmos.Senders)
}

func (c *Checker) caseActivationSubscription(ctx context.Context, kind nmos.ResourceKind) report.Verdict {
	if ok, msg := c.getIS04Resources(ctx, kind); !ok {
		return report.Fail(msg)
	}
	if ok, msg := c.getIS05Resources(ctx, kind); !ok {
		return report.Fail(msg)
	}

	if len(c.is05.ids[kind]) == 0 {
		return report.NotApplicable(fmt.Sprintf("Could not find any IS-05 %s to test", kind.Plural()))
	}

	if ok, msg := c.activateCheckParked(ctx, kind); !ok {
		return report.Fail(msg)
	}
	return report.Pass()
}

// test_09
func (c *Checker) caseInterfaceBindingLengths(ctx context.Context) report.Verdict {
	for _, kind := range nmos.Kinds() {
		if ok, msg := c.getIS04Resources(ctx, kind); !ok {
			return report.Fail(msg)
		}
	}

	valid := c.validTransports()
	for _, kind := range nmos.Kinds() {
		for _, resource := range c.is04.resources[kind] {
			if !slices.Contains(valid, resource.Transport()) {
				continue
			}

			bindings, ok := resource.InterfaceBindings()
			if !ok {
				return report.Fail("Expected attribute not found in IS-04 Sender/Receiver or IS-05 active resource: 'interface_bindings'")
			}

			resp, ok, _ := c.get(ctx, c.connURL+"single/"+string(kind)+"/"+resource.ID()+"/active")
			if !ok {
				return report.Failf("Connection API returned unexpected result for %s '%s'",
					kind.Plural(), resource.ID())
			}

			var active map[string]any
			if err := resp.JSON(&active); err != nil {
				return report.Fail("Non-JSON response returned from Connection API")
			}

			transportParams, ok := active["transport_params"].([]any)
			if !ok {
				return report.Fail("Expected attribute not found in IS-04 Sender/Receiver or IS-05 active resource: 'transport_params'")
			}

			if len(transportParams) != len(bindings) {
				return report.Failf("Array length mismatch for Sender/Receiver ID '%s'", resource.ID())
			}
		}
	}

	return report.Pass()
}

// test_10
func (c *Checker) caseTransportFilesMatch(ctx context.Context) report.Verdict {
	if ok, msg := c.getIS04Resources(ctx, nmos.Senders); !ok {
		return report.Fail(msg)
	}

	valid := c.validTransports()
	for _, resource := range c.is04.resources[nmos.Senders] {
		if !slices.Contains(valid, resource.Transport()) {
			continue
		}

		manifestHref, ok := resource.ManifestHref()
		if !ok {
			return report.Fail("Expected attribute not found in IS-04 Sender: 'manifest_href'")
		}

		// nil means "no transport file on this side". An empty
		// manifest_href and a failed transportfile GET both count as no
		// content, and no content on both sides matches.
		var is04File, is05File *string
		if manifestHref != "" {
			if resp, err := c.client.Get(ctx, manifestHref); err == nil && resp.OK() {
				text := resp.Text()
				is04File = &text
			}
		}

		if resp, err := c.client.Get(ctx, c.connURL+"single/senders/"+resource.ID()+"/transportfile"); err == nil && resp.OK() {
			text := resp.Text()
			is05File = &text
		}

		matched := (is04File == nil && is05File == nil) ||
			(is04File != nil && is05File != nil && *is04File == *is05File)
		if !matched {
			return report.Failf("Transport file contents for Sender '%s' do not match between IS-04 and IS-05",
				resource.ID())
		}
	}

	return report.Pass()
}

// auto_schemas
func (c *Checker) caseResourceSchemas(ctx context.Context) report.Verdict {
	for _, kind := range nmos.Kinds() {
		if ok, msg := c.getIS04Resources(ctx, kind); !ok {
			return report.Fail(msg)
		}
		for _, resource := range c.is04.resources[kind] {
			if err := c.validator.ValidateResource(kind, resource); err != nil {
				return report.Failf("IS-04 %s '%s' failed schema validation: %v",
					kind.Singular(), resource.ID(), err)
			}
		}
	}

	resp, ok, detail := c.get(ctx, c.nodeURL+"devices")
	if !ok {
		return report.Failf("Node API did not respond as expected: %s", detail)
	}
	var devices []map[string]any
	if err := resp.JSON(&devices); err != nil {
		return report.Fail("Non-JSON response returned from Node API")
	}
	for _, device := range devices {
		if err := c.validator.ValidateDevice(device); err != nil {
			id, _ := device["id"].(string)
			return report.Failf("IS-04 Device '%s' failed schema validation: %v", id, err)
		}
	}

	return report.Pass()
}
