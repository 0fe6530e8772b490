package nmos

// Resource is a Sender or Receiver object as returned by the Node API.
// It is kept as the raw decoded JSON object so that checks can distinguish
// an absent attribute from a present-but-null one, which several
// conformance cases depend on.
type Resource map[string]any

// ID returns the resource id, or "" when absent.
func (r Resource) ID() string {
	s, _ := r["id"].(string)
	return s
}

// Transport returns the transport type URN, or "" when absent.
func (r Resource) Transport() string {
	s, _ := r["transport"].(string)
	return s
}

// Version returns the resource version stamp and whether the attribute was
// present.
func (r Resource) Version() (string, bool) {
	v, ok := r["version"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ManifestHref returns the manifest_href value and whether the attribute
// was present. An empty string is a valid value meaning "no manifest".
func (r Resource) ManifestHref() (string, bool) {
	v, ok := r["manifest_href"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// InterfaceBindings returns the interface_bindings array and whether the
// attribute was present.
func (r Resource) InterfaceBindings() ([]any, bool) {
	v, ok := r["interface_bindings"]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// Subscription returns the subscription object and whether the attribute
// was present.
func (r Resource) Subscription() (map[string]any, bool) {
	v, ok := r["subscription"]
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}
