package checks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/roach88/nmoscheck/internal/client"
	"github.com/roach88/nmoscheck/internal/is05"
	"github.com/roach88/nmoscheck/internal/nmos"
	"github.com/roach88/nmoscheck/internal/testutil"
)

// fakeDevice serves a minimal Node API and Connection API from mutable
// in-memory state so activation side effects can be simulated.
type fakeDevice struct {
	mu sync.Mutex

	nodeResources  map[nmos.ResourceKind][]nmos.Resource
	devices        []map[string]any
	connIDs        map[nmos.ResourceKind][]string
	active         map[string]map[string]any // "<kind>/<id>" -> active object
	transportFiles map[string]string         // sender id -> transport file text
	manifests      map[string]string         // manifest name -> file text

	nodeHits map[string]int // path -> request count

	node *httptest.Server
	conn *httptest.Server
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()

	d := &fakeDevice{
		nodeResources:  map[nmos.ResourceKind][]nmos.Resource{},
		connIDs:        map[nmos.ResourceKind][]string{},
		active:         map[string]map[string]any{},
		transportFiles: map[string]string{},
		manifests:      map[string]string{},
		nodeHits:       map[string]int{},
	}

	d.node = httptest.NewServer(http.HandlerFunc(d.handleNode))
	d.conn = httptest.NewServer(http.HandlerFunc(d.handleConn))
	t.Cleanup(d.node.Close)
	t.Cleanup(d.conn.Close)

	return d
}

func (d *fakeDevice) nodeURL() string { return d.node.URL + "/" }
func (d *fakeDevice) connURL() string { return d.conn.URL + "/" }

func (d *fakeDevice) manifestURL(name string) string {
	return d.node.URL + "/manifests/" + name
}

func (d *fakeDevice) handleNode(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nodeHits[r.URL.Path]++

	path := strings.TrimPrefix(r.URL.Path, "/")
	switch {
	case path == "":
		writeJSON(w, map[string]any{})
	case path == "devices":
		writeJSON(w, d.devices)
	case path == "senders" || path == "receivers":
		resources := d.nodeResources[nmos.ResourceKind(path)]
		if resources == nil {
			resources = []nmos.Resource{}
		}
		writeJSON(w, resources)
	case strings.HasPrefix(path, "manifests/"):
		name := strings.TrimPrefix(path, "manifests/")
		text, ok := d.manifests[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(text))
	default:
		// Individual resource: senders/<id> or receivers/<id>.
		parts := strings.SplitN(path, "/", 2)
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		for _, resource := range d.nodeResources[nmos.ResourceKind(parts[0])] {
			if resource.ID() == parts[1] {
				writeJSON(w, resource)
				return
			}
		}
		http.NotFound(w, r)
	}
}

func (d *fakeDevice) handleConn(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	switch {
	case path == "single/senders" || path == "single/receivers":
		kind := nmos.ResourceKind(strings.TrimPrefix(path, "single/"))
		ids := make([]string, 0, len(d.connIDs[kind]))
		for _, id := range d.connIDs[kind] {
			ids = append(ids, id+"/")
		}
		writeJSON(w, ids)
	case strings.HasSuffix(path, "/active"):
		key := strings.TrimSuffix(strings.TrimPrefix(path, "single/"), "/active")
		obj, ok := d.active[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, obj)
	case strings.HasSuffix(path, "/transportfile"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "single/senders/"), "/transportfile")
		text, ok := d.transportFiles[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(text))
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// setResource replaces or adds a Node API resource.
func (d *fakeDevice) setResource(kind nmos.ResourceKind, resource nmos.Resource) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, existing := range d.nodeResources[kind] {
		if existing.ID() == resource.ID() {
			d.nodeResources[kind][i] = resource
			return
		}
	}
	d.nodeResources[kind] = append(d.nodeResources[kind], resource)
}

// mutateResource applies fn to the stored resource with the given id.
func (d *fakeDevice) mutateResource(kind nmos.ResourceKind, id string, fn func(nmos.Resource)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, resource := range d.nodeResources[kind] {
		if resource.ID() == id {
			fn(resource)
			return
		}
	}
}

func (d *fakeDevice) hits(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nodeHits[path]
}

// fakeActivator is an Activator whose side effects run against the fake
// device's state.
type fakeActivator struct {
	activateErr string
	parkErr     string
	onActivate  func(kind nmos.ResourceKind, id string)
	onPark      func(kind nmos.ResourceKind, id string)
}

func (a *fakeActivator) CheckActivation(_ context.Context, kind nmos.ResourceKind, id string) (bool, string) {
	if a.activateErr != "" {
		return false, a.activateErr
	}
	if a.onActivate != nil {
		a.onActivate(kind, id)
	}
	return true, ""
}

func (a *fakeActivator) ParkResource(_ context.Context, kind nmos.ResourceKind, id string) (bool, string) {
	if a.parkErr != "" {
		return false, a.parkErr
	}
	if a.onPark != nil {
		a.onPark(kind, id)
	}
	return true, ""
}

func (a *fakeActivator) CompareVersions(x, y string) int {
	return is05.CompareVersionStamps(x, y)
}

// checkerEnv bundles a Checker with the fakes behind it.
type checkerEnv struct {
	dev       *fakeDevice
	activator *fakeActivator
	sleeper   *testutil.RecordingSleeper
	checker   *Checker
}

type checkerOption func(*Params)

func withNodeVersion(major, minor int) checkerOption {
	return func(p *Params) { p.NodeVersion = nmos.APIVersion{Major: major, Minor: minor} }
}

func withConnectionVersion(major, minor int) checkerOption {
	return func(p *Params) { p.ConnectionVersion = nmos.APIVersion{Major: major, Minor: minor} }
}

func newCheckerEnv(t *testing.T, opts ...checkerOption) *checkerEnv {
	t.Helper()

	dev := newFakeDevice(t)
	activator := &fakeActivator{}
	sleeper := &testutil.RecordingSleeper{}

	params := Params{
		NodeURL:           dev.nodeURL(),
		ConnectionURL:     dev.connURL(),
		NodeVersion:       nmos.APIVersion{Major: 1, Minor: 2},
		ConnectionVersion: nmos.APIVersion{Major: 1, Minor: 0},
		Client:            client.New(),
		Utils:             activator,
		Sleep:             sleeper.Sleep,
	}
	for _, opt := range opts {
		opt(&params)
	}

	return &checkerEnv{
		dev:       dev,
		activator: activator,
		sleeper:   sleeper,
		checker:   New(params),
	}
}

// receiver builds a minimal Node API receiver fixture.
func receiver(id, transport string) nmos.Resource {
	return nmos.Resource{
		"id":                 id,
		"transport":          transport,
		"version":            "1500000000:0",
		"interface_bindings": []any{"eth0"},
		"subscription":       map[string]any{"sender_id": nil, "active": false},
	}
}

// sender builds a minimal Node API sender fixture.
func sender(id, transport string) nmos.Resource {
	return nmos.Resource{
		"id":                 id,
		"transport":          transport,
		"version":            "1500000000:0",
		"manifest_href":      "",
		"interface_bindings": []any{"eth0"},
		"subscription":       map[string]any{"receiver_id": nil, "active": false},
	}
}
