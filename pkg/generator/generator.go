// Package generator runs the full pipeline: read definitions, validate them as
// a whole, resolve peers, render configs and hand them to a sink. Output is all
// or nothing: a run with any diagnostic writes no file at all.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"meshconf/pkg/definition"
	"meshconf/pkg/journal"
	"meshconf/pkg/model"
	"meshconf/pkg/registry"
	"meshconf/pkg/store"
	"meshconf/pkg/topology"
	"meshconf/pkg/wireguard"
)

// ErrValidation is returned when the definitions produced diagnostics.
var ErrValidation = errors.New("definitions failed validation")

const defaultWorkers = 4

// Generator wires a source and a sink around the core transform.
type Generator struct {
	src     store.Source
	sink    store.Sink
	log     *slog.Logger
	journal *journal.Journal
	workers int
	sep     string
	now     func() time.Time
}

type Option func(*Generator)

func WithLogger(l *slog.Logger) Option { return func(g *Generator) { g.log = l } }

// WithJournal records every Run in j.
func WithJournal(j *journal.Journal) Option { return func(g *Generator) { g.journal = j } }

// WithWorkers bounds how many nodes are rendered concurrently.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithSeparator sets the node/peer separator used to name split outputs.
func WithSeparator(sep string) Option { return func(g *Generator) { g.sep = sep } }

func New(src store.Source, sink store.Sink, opts ...Option) *Generator {
	g := &Generator{
		src:     src,
		sink:    sink,
		log:     slog.Default(),
		workers: defaultWorkers,
		sep:     store.DefaultSeparator,
		now:     time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Result describes a run.
type Result struct {
	RunID       string
	Nodes       int
	Outputs     []model.Output
	Diagnostics definition.Diagnostics
	// Changed lists outputs whose content differs from the last successful
	// journaled run. It stays nil without a journal.
	Changed []string
}

// Registry reads and validates all definitions. Diagnostics are logged and
// returned; the error is non-nil only when the source failed.
func (g *Generator) Registry(ctx context.Context) (*registry.Registry, definition.Diagnostics, error) {
	defs, err := g.src.Definitions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read definitions: %w", err)
	}
	reg, diags := registry.Build(defs)
	for _, d := range diags {
		g.report(d)
	}
	return reg, diags, nil
}

// Check runs everything except writing and journaling.
func (g *Generator) Check(ctx context.Context) (Result, error) {
	reg, diags, err := g.Registry(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{Nodes: reg.Len(), Diagnostics: diags}
	if diags.Failed() {
		return res, fmt.Errorf("%w: %d problem(s)", ErrValidation, len(diags))
	}
	res.Outputs, err = g.render(ctx, topology.BuildPlans(reg))
	if err != nil {
		return res, err
	}
	return res, nil
}

// Run generates and writes every config.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	started := g.now()
	res, err := g.Check(ctx)
	res.RunID = uuid.NewString()
	if err != nil {
		status := model.RunFailed
		if errors.Is(err, ErrValidation) {
			status = model.RunInvalid
		}
		g.record(ctx, started, status, res, err)
		return res, err
	}
	if g.journal != nil {
		prev, jerr := g.journal.LatestDigests(ctx)
		if jerr != nil {
			g.log.Warn("journal lookup failed", "err", jerr)
		} else {
			res.Changed = changed(prev, res.Outputs, g.sep)
		}
	}
	if err := g.sink.Write(ctx, res.Outputs); err != nil {
		err = fmt.Errorf("write outputs: %w", err)
		g.record(ctx, started, model.RunFailed, res, err)
		return res, err
	}
	g.record(ctx, started, model.RunOK, res, nil)
	g.log.Info("configs generated", "run", res.RunID, "nodes", res.Nodes, "outputs", len(res.Outputs))
	return res, nil
}

func (g *Generator) render(ctx context.Context, plans []model.Plan) ([]model.Output, error) {
	perNode := make([][]model.Output, len(plans))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, plan := range plans {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perNode[i] = wireguard.Render(plan)
			g.log.Debug("rendered node", "node", plan.Node.Name, "peers", len(plan.Peers))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var out []model.Output
	for _, o := range perNode {
		out = append(out, o...)
	}
	return out, nil
}

func (g *Generator) report(d definition.Diagnostic) {
	switch {
	case errors.Is(d, definition.ErrUnrecognizedAttribute):
		g.log.Warn("unfamiliar attribute", "node", d.Node, "key", d.Key)
	case errors.Is(d, definition.ErrMissingRequiredAttribute):
		g.log.Warn("missing required attribute", "node", d.Node, "key", d.Key)
	default:
		g.log.Warn(d.Kind.Error(), "node", d.Node)
	}
}

func (g *Generator) record(ctx context.Context, started time.Time, status string, res Result, runErr error) {
	if g.journal == nil {
		return
	}
	entry := model.RunEntry{
		ID:          res.RunID,
		StartedAt:   started,
		Status:      status,
		Nodes:       res.Nodes,
		Diagnostics: len(res.Diagnostics),
	}
	if runErr != nil {
		entry.Detail = runErr.Error()
	}
	var digests []model.OutputDigest
	if status == model.RunOK {
		entry.Outputs = len(res.Outputs)
		for _, o := range res.Outputs {
			digests = append(digests, model.OutputDigest{RunID: res.RunID, Name: o.Name(g.sep), Digest: o.Digest()})
		}
	}
	if err := g.journal.Record(ctx, entry, digests); err != nil {
		g.log.Warn("journal record failed", "run", res.RunID, "err", err)
	}
}

func changed(prev map[string]string, outputs []model.Output, sep string) []string {
	out := []string{}
	for _, o := range outputs {
		name := o.Name(sep)
		if prev[name] != o.Digest() {
			out = append(out, name)
		}
	}
	return out
}
