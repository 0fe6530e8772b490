package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nmoscheck/internal/nmos"
	"github.com/roach88/nmoscheck/internal/report"
)

func findCase(t *testing.T, c *Checker, id string) TestCase {
	t.Helper()
	for _, tc := range c.Cases() {
		if tc.ID == id {
			return tc
		}
	}
	t.Fatalf("no test case %s", id)
	return TestCase{}
}

func TestCases_OrderIsFixed(t *testing.T) {
	env := newCheckerEnv(t)
	cases := env.checker.Cases()
	require.Len(t, cases, 10)
	for i, tc := range cases {
		assert.Equal(t, []string{
			"test_01", "test_02", "test_03", "test_04", "test_05",
			"test_06", "test_07", "test_08", "test_09", "test_10",
		}[i], tc.ID)
	}
}

func TestCase01_NodeAPIVersion(t *testing.T) {
	t.Run("v1.2 with responsive root passes", func(t *testing.T) {
		env := newCheckerEnv(t)
		v := findCase(t, env.checker, "test_01").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome)
	})

	t.Run("old version fails without a request", func(t *testing.T) {
		env := newCheckerEnv(t, withNodeVersion(1, 1))
		v := findCase(t, env.checker, "test_01").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Node API must be running v1.2 or greater", v.Message)
		assert.Equal(t, 0, env.dev.hits("/"))
	})

	t.Run("unresponsive root fails", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.node.Close()
		v := findCase(t, env.checker, "test_01").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Contains(t, v.Message, "Node API did not respond as expected")
	})
}

func TestCase02_DeviceControlPresent(t *testing.T) {
	control := func(controlType, href string) map[string]any {
		return map[string]any{"type": controlType, "href": href}
	}

	t.Run("matching control and href passes", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.devices = []map[string]any{
			{"id": "D1", "controls": []any{
				control("urn:x-nmos:control:sr-ctrl/v1.0", env.dev.connURL()),
			}},
		}
		v := findCase(t, env.checker, "test_02").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})

	t.Run("matching type but wrong href", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.devices = []map[string]any{
			{"id": "D1", "controls": []any{
				control("urn:x-nmos:control:sr-ctrl/v1.0", "http://elsewhere.example/x-nmos/connection/v1.0/"),
			}},
		}
		v := findCase(t, env.checker, "test_02").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Found one or more Device controls, but no href matched the Connection API under test", v.Message)
	})

	t.Run("no matching control type", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.devices = []map[string]any{
			{"id": "D1", "controls": []any{
				control("urn:x-nmos:control:sr-ctrl/v1.1", env.dev.connURL()),
			}},
		}
		v := findCase(t, env.checker, "test_02").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Unable to find any Devices which expose the control type 'urn:x-nmos:control:sr-ctrl/v1.0'", v.Message)
	})

	t.Run("matching control without href", func(t *testing.T) {
		// A control of the right type must carry a usable href; a
		// missing one is malformed, not merely a non-match.
		env := newCheckerEnv(t)
		env.dev.devices = []map[string]any{
			{"id": "D1", "controls": []any{
				map[string]any{"type": "urn:x-nmos:control:sr-ctrl/v1.0"},
			}},
		}
		v := findCase(t, env.checker, "test_02").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "One or more Devices were missing the 'controls' attribute", v.Message)
	})

	t.Run("matching control with non-string href", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.devices = []map[string]any{
			{"id": "D1", "controls": []any{
				map[string]any{"type": "urn:x-nmos:control:sr-ctrl/v1.0", "href": 42},
			}},
		}
		v := findCase(t, env.checker, "test_02").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "One or more Devices were missing the 'controls' attribute", v.Message)
	})

	t.Run("missing controls attribute", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.devices = []map[string]any{{"id": "D1"}}
		v := findCase(t, env.checker, "test_02").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "One or more Devices were missing the 'controls' attribute", v.Message)
	})
}

func TestCase03_ReceiverListsMatch(t *testing.T) {
	t.Run("matching lists pass", func(t *testing.T) {
		// The Connection API reports "R1/" which must match the Node
		// API's bare "R1".
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Receivers, receiver("R1", nmos.TransportRTP))
		env.dev.connIDs[nmos.Receivers] = []string{"R1"}

		v := findCase(t, env.checker, "test_03").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})

	t.Run("receiver missing from connection api", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Receivers, receiver("R1", nmos.TransportRTP))

		v := findCase(t, env.checker, "test_03").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Unable to find all Receivers from IS-04 in IS-05", v.Message)
	})

	t.Run("receiver missing from node api", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.connIDs[nmos.Receivers] = []string{"R1"}

		v := findCase(t, env.checker, "test_03").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Unable to find all Receivers from IS-05 in IS-04", v.Message)
	})
}

func TestCase04_SenderListsMatch(t *testing.T) {
	env := newCheckerEnv(t)
	env.dev.setResource(nmos.Senders, sender("S1", nmos.TransportRTP))
	env.dev.connIDs[nmos.Senders] = []string{"S1"}

	v := findCase(t, env.checker, "test_04").Run(context.Background())
	assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
}

func TestCase05_ReceiverActivationVersion(t *testing.T) {
	t.Run("no connection receivers is not applicable", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Receivers, receiver("R1", nmos.TransportRTP))

		v := findCase(t, env.checker, "test_05").Run(context.Background())
		assert.Equal(t, report.OutcomeNotApplicable, v.Outcome)
		assert.Equal(t, "Could not find any IS-05 Receivers to test", v.Message)
	})

	t.Run("version bump passes", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Receivers, receiver("R1", nmos.TransportRTP))
		env.dev.connIDs[nmos.Receivers] = []string{"R1"}
		env.activator.onActivate = func(kind nmos.ResourceKind, id string) {
			env.dev.mutateResource(kind, id, func(r nmos.Resource) {
				r["version"] = "1500000001:0"
			})
		}

		v := findCase(t, env.checker, "test_05").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})
}

func TestCase06_SenderActivationVersion(t *testing.T) {
	env := newCheckerEnv(t)
	v := findCase(t, env.checker, "test_06").Run(context.Background())
	assert.Equal(t, report.OutcomeNotApplicable, v.Outcome)
	assert.Equal(t, "Could not find any IS-05 Senders to test", v.Message)
}

func TestCase07_ReceiverActivationSubscription(t *testing.T) {
	env := newCheckerEnv(t)
	env.dev.setResource(nmos.Receivers, receiver("R1", nmos.TransportRTP))
	env.dev.connIDs[nmos.Receivers] = []string{"R1"}

	v := findCase(t, env.checker, "test_07").Run(context.Background())
	assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
}

func TestCase08_SenderActivationSubscription(t *testing.T) {
	t.Run("node api before v1.2 is not applicable", func(t *testing.T) {
		env := newCheckerEnv(t, withNodeVersion(1, 1))
		v := findCase(t, env.checker, "test_08").Run(context.Background())
		assert.Equal(t, report.OutcomeNotApplicable, v.Outcome)
		assert.Equal(t, "IS-04 v1.1 and earlier Senders do not have a subscription object", v.Message)
	})

	t.Run("no connection senders is not applicable", func(t *testing.T) {
		env := newCheckerEnv(t)
		v := findCase(t, env.checker, "test_08").Run(context.Background())
		assert.Equal(t, report.OutcomeNotApplicable, v.Outcome)
		assert.Equal(t, "Could not find any IS-05 Senders to test", v.Message)
	})
}

func TestCase09_InterfaceBindingLengths(t *testing.T) {
	t.Run("matching lengths pass", func(t *testing.T) {
		env := newCheckerEnv(t)
		r := receiver("R1", nmos.TransportRTP)
		r["interface_bindings"] = []any{"eth0", "eth1"}
		env.dev.setResource(nmos.Receivers, r)
		env.dev.active["receivers/R1"] = map[string]any{
			"transport_params": []any{map[string]any{}, map[string]any{}},
		}

		v := findCase(t, env.checker, "test_09").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})

	t.Run("length mismatch fails naming the id", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Senders, sender("S1", nmos.TransportRTP))
		env.dev.active["senders/S1"] = map[string]any{
			"transport_params": []any{map[string]any{}, map[string]any{}},
		}

		v := findCase(t, env.checker, "test_09").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Array length mismatch for Sender/Receiver ID 'S1'", v.Message)
	})

	t.Run("zero in-scope resources vacuously pass", func(t *testing.T) {
		env := newCheckerEnv(t)
		// MQTT is out of scope for Connection API v1.0.
		env.dev.setResource(nmos.Senders, sender("S1", nmos.TransportMQTT))

		v := findCase(t, env.checker, "test_09").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})

	t.Run("active endpoint failure names the resource", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Senders, sender("S1", nmos.TransportRTP))
		// No active object registered: the fake returns 404.

		v := findCase(t, env.checker, "test_09").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Connection API returned unexpected result for Senders 'S1'", v.Message)
	})
}

func TestCase10_TransportFilesMatch(t *testing.T) {
	sdp := "v=0\r\no=- 1 1 IN IP4 192.0.2.1\r\n"

	t.Run("identical files pass", func(t *testing.T) {
		env := newCheckerEnv(t)
		s := sender("S1", nmos.TransportRTP)
		s["manifest_href"] = env.dev.manifestURL("s1.sdp")
		env.dev.setResource(nmos.Senders, s)
		env.dev.manifests["s1.sdp"] = sdp
		env.dev.transportFiles["S1"] = sdp

		v := findCase(t, env.checker, "test_10").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})

	t.Run("no content on either side passes", func(t *testing.T) {
		// Empty manifest_href plus a 404 transportfile: both sides have
		// no content, which counts as matching.
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Senders, sender("S1", nmos.TransportRTP))

		v := findCase(t, env.checker, "test_10").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})

	t.Run("differing files fail", func(t *testing.T) {
		env := newCheckerEnv(t)
		s := sender("S1", nmos.TransportRTP)
		s["manifest_href"] = env.dev.manifestURL("s1.sdp")
		env.dev.setResource(nmos.Senders, s)
		env.dev.manifests["s1.sdp"] = sdp
		env.dev.transportFiles["S1"] = sdp + "a=extra\r\n"

		v := findCase(t, env.checker, "test_10").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Equal(t, "Transport file contents for Sender 'S1' do not match between IS-04 and IS-05", v.Message)
	})

	t.Run("one-sided content fails", func(t *testing.T) {
		env := newCheckerEnv(t)
		env.dev.setResource(nmos.Senders, sender("S1", nmos.TransportRTP))
		env.dev.transportFiles["S1"] = sdp

		v := findCase(t, env.checker, "test_10").Run(context.Background())
		assert.Equal(t, report.OutcomeFail, v.Outcome)
		assert.Contains(t, v.Message, "do not match between IS-04 and IS-05")
	})

	t.Run("out-of-scope transports skipped", func(t *testing.T) {
		env := newCheckerEnv(t)
		s := sender("S1", nmos.TransportMQTT)
		s["manifest_href"] = env.dev.manifestURL("missing.sdp")
		env.dev.setResource(nmos.Senders, s)
		env.dev.transportFiles["S1"] = sdp

		v := findCase(t, env.checker, "test_10").Run(context.Background())
		assert.Equal(t, report.OutcomePass, v.Outcome, v.Message)
	})
}

func TestRun_ProducesOneVerdictPerCase(t *testing.T) {
	env := newCheckerEnv(t)
	env.dev.setResource(nmos.Receivers, receiver("R1", nmos.TransportRTP))
	env.dev.connIDs[nmos.Receivers] = []string{"R1"}
	env.dev.active["receivers/R1"] = map[string]any{
		"transport_params": []any{map[string]any{}},
	}
	env.dev.devices = []map[string]any{
		{"id": "D1", "controls": []any{
			map[string]any{"type": "urn:x-nmos:control:sr-ctrl/v1.0", "href": env.dev.connURL()},
		}},
	}
	env.activator.onActivate = func(kind nmos.ResourceKind, id string) {
		env.dev.mutateResource(kind, id, func(r nmos.Resource) {
			r["version"] = "1500000001:0"
		})
	}

	rep := env.checker.Run(context.Background())
	require.Len(t, rep.Results, 10)

	// A failing case never aborts the run: every case has a verdict.
	for _, result := range rep.Results {
		assert.NotEmpty(t, result.ID)
		assert.NotEmpty(t, result.Description)
		assert.Contains(t, []report.Outcome{
			report.OutcomePass, report.OutcomeFail, report.OutcomeNotApplicable,
		}, result.Outcome)
	}

	// With one RTP receiver on both APIs the list comparison must pass.
	assert.Equal(t, report.OutcomePass, rep.Results[2].Outcome, rep.Results[2].Message)
}
