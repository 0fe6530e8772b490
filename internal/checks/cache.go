package checks

import "github.com/roach88/nmoscheck/internal/nmos"

// resourceCache holds Node API resources per kind, plus a marker set that
// suppresses duplicate fetches within a run. The marker can be cleared to
// force a refresh; entries are only ever appended, so a refresh must be
// requested once per logical re-read.
type resourceCache struct {
	resources map[nmos.ResourceKind][]nmos.Resource
	requested map[nmos.ResourceKind]bool
}

func newResourceCache() *resourceCache {
	return &resourceCache{
		resources: make(map[nmos.ResourceKind][]nmos.Resource),
		requested: make(map[nmos.ResourceKind]bool),
	}
}

// idCache is the Connection API counterpart: bare resource ids per kind.
type idCache struct {
	ids       map[nmos.ResourceKind][]string
	requested map[nmos.ResourceKind]bool
}

func newIDCache() *idCache {
	return &idCache{
		ids:       make(map[nmos.ResourceKind][]string),
		requested: make(map[nmos.ResourceKind]bool),
	}
}
