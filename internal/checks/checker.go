package checks

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/nmoscheck/internal/client"
	"github.com/roach88/nmoscheck/internal/nmos"
	"github.com/roach88/nmoscheck/internal/report"
	"github.com/roach88/nmoscheck/internal/schema"
)

// Activator is the Connection API write-side collaborator. Implemented by
// is05.Utils; stubbed in tests.
type Activator interface {
	// CheckActivation performs an immediate activation of the resource,
	// reporting success plus a failure message.
	CheckActivation(ctx context.Context, kind nmos.ResourceKind, id string) (bool, string)

	// ParkResource sets the resource inactive (master_enable false) via
	// an immediate activation.
	ParkResource(ctx context.Context, kind nmos.ResourceKind, id string) (bool, string)

	// CompareVersions orders two resource version stamps, returning 1
	// when a is newer than b.
	CompareVersions(a, b string) int
}

// settleTime is the fixed wait after an activation or park write before
// the Node API is re-read. There is no polling; one wait, one read.
const settleTime = time.Second

// Params configures a Checker.
type Params struct {
	// NodeURL and ConnectionURL are versioned base URLs ending in "/".
	NodeURL       string
	ConnectionURL string

	NodeVersion       nmos.APIVersion
	ConnectionVersion nmos.APIVersion

	Client *client.Client
	Utils  Activator

	// Validator, when set, enables resource schema validation.
	Validator *schema.Validator

	// Sleep replaces time.Sleep in tests. Nil means time.Sleep.
	Sleep func(time.Duration)

	// Logger for per-case progress. Nil discards.
	Logger *slog.Logger
}

// Checker runs the interoperability test cases against one device.
type Checker struct {
	nodeURL     string
	connURL     string
	nodeVersion nmos.APIVersion
	connVersion nmos.APIVersion

	client    *client.Client
	utils     Activator
	validator *schema.Validator
	sleep     func(time.Duration)
	log       *slog.Logger

	is04 *resourceCache
	is05 *idCache
}

// New creates a Checker with empty caches.
func New(p Params) *Checker {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	log := p.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Checker{
		nodeURL:     p.NodeURL,
		connURL:     p.ConnectionURL,
		nodeVersion: p.NodeVersion,
		connVersion: p.ConnectionVersion,
		client:      p.Client,
		utils:       p.Utils,
		validator:   p.Validator,
		sleep:       sleep,
		log:         log,
		is04:        newResourceCache(),
		is05:        newIDCache(),
	}
}

// Run executes every test case in order and returns the aggregated
// report. Each verdict is logged as it lands.
func (c *Checker) Run(ctx context.Context) *report.Report {
	rep := report.New(c.nodeURL, c.connURL)

	for _, tc := range c.Cases() {
		c.log.Info("running test case", "id", tc.ID)
		verdict := tc.Run(ctx)
		rep.Add(report.Result{ID: tc.ID, Description: tc.Description, Verdict: verdict})
		c.log.Info("test case complete",
			"id", tc.ID,
			"outcome", string(verdict.Outcome),
			"message", verdict.Message,
		)
	}

	return rep
}
