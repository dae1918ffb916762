// Package build runs the asset pipeline over a manifest: it matches each
// asset to a processor, skips the ones whose content hash is current and
// compiles the rest.
package build

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/asset"
	"github.com/Faultbox/midgard-assets/internal/config"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/internal/processor"
	"github.com/Faultbox/midgard-assets/internal/tool"
)

// Report lists the outcome of every manifest entry.
type Report struct {
	Compiled []string
	UpToDate []string
	Cleaned  []string
	Skipped  []string
	Failed   []string
}

// Total is the number of assets the report covers.
func (r *Report) Total() int {
	return len(r.Compiled) + len(r.UpToDate) + len(r.Cleaned) + len(r.Skipped) + len(r.Failed)
}

// Builder compiles and cleans the assets of one configuration.
type Builder struct {
	cfg   *config.Config
	roots asset.Roots
	proc  *processor.Processor
	log   *zap.Logger
}

// New creates a Builder. runner executes the external texture tools.
func New(cfg *config.Config, runner tool.Runner) *Builder {
	return &Builder{
		cfg: cfg,
		roots: asset.Roots{
			Source: cfg.Paths.Source,
			Temp:   cfg.Paths.Temp,
			Target: cfg.Paths.Target,
		},
		proc: processor.New(cfg, runner),
		log:  logger.Named("build"),
	}
}

type job struct {
	kind  processor.Kind
	asset asset.Asset
}

// plan matches every manifest entry to a processor. Unmatched entries,
// later duplicates and later entries whose target path is already taken
// ("x.png" after "x.tga") are reported as skipped.
func (b *Builder) plan(rels []string, report *Report) []job {
	jobs := make([]job, 0, len(rels))
	seen := make(map[string]bool, len(rels))
	targets := make(map[string]string, len(rels))
	for _, raw := range rels {
		rel := config.NormalizeAsset(raw)
		if seen[rel] {
			b.log.Warn("duplicate asset in manifest, skipping", zap.String("asset", rel))
			report.Skipped = append(report.Skipped, rel)
			continue
		}
		seen[rel] = true

		kind, ok := processor.Match(rel)
		if !ok {
			b.log.Warn("no processor for asset, skipping", zap.String("asset", rel))
			report.Skipped = append(report.Skipped, rel)
			continue
		}
		a := asset.New(b.roots, rel, kind.Ext())
		if owner, ok := targets[a.TargetPath]; ok {
			b.log.Warn("asset shares a target with an earlier asset, skipping",
				zap.String("asset", rel),
				zap.String("owner", owner),
				zap.String("target", a.TargetPath))
			report.Skipped = append(report.Skipped, rel)
			continue
		}
		targets[a.TargetPath] = rel
		jobs = append(jobs, job{kind: kind, asset: a})
	}

	for key := range b.cfg.Overrides {
		if !seen[config.NormalizeAsset(key)] {
			b.log.Warn("override names an asset that is not in the manifest", zap.String("asset", key))
		}
	}
	return jobs
}

// Compile builds every stale asset in manifest order. A failed asset does
// not stop the build; the returned error joins every per-asset failure.
// Nothing is rolled back.
func (b *Builder) Compile(ctx context.Context, rels []string) (*Report, error) {
	report := &Report{}
	var errs []error

	for _, j := range b.plan(rels, report) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		compiled, err := b.compile(ctx, j)
		rel := j.asset.Rel
		switch {
		case errors.Is(err, processor.ErrSettings):
			b.log.Warn("texture settings undetermined, skipping", zap.String("asset", rel), zap.Error(err))
			report.Skipped = append(report.Skipped, rel)
		case err != nil:
			b.log.Error("asset failed", zap.String("asset", rel), zap.Stringer("kind", j.kind), zap.Error(err))
			report.Failed = append(report.Failed, rel)
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
		case compiled:
			report.Compiled = append(report.Compiled, rel)
		default:
			report.UpToDate = append(report.UpToDate, rel)
		}
	}

	b.log.Info("build finished",
		zap.Int("compiled", len(report.Compiled)),
		zap.Int("up_to_date", len(report.UpToDate)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failed", len(report.Failed)))
	return report, errors.Join(errs...)
}

// compile processes one asset if it is stale. The target is written before
// the hash record so an interrupted build recompiles next time.
func (b *Builder) compile(ctx context.Context, j job) (bool, error) {
	a := j.asset
	state, digest, err := a.Check()
	if err != nil {
		return false, err
	}
	if state == asset.UpToDate {
		b.log.Debug("up to date", zap.String("asset", a.Rel))
		return false, nil
	}
	b.log.Info("compiling",
		zap.String("asset", a.Rel),
		zap.Stringer("kind", j.kind),
		zap.Stringer("reason", state))

	data, err := b.proc.Process(ctx, j.kind, a)
	if err != nil {
		return false, err
	}
	if err := a.WriteTarget(data); err != nil {
		return false, fmt.Errorf("writing target: %w", err)
	}
	if err := a.WriteHash(digest); err != nil {
		return false, fmt.Errorf("writing hash: %w", err)
	}
	return true, nil
}

// Clean removes the outputs, scratch files and hash records of every
// matched asset regardless of hash state.
func (b *Builder) Clean(rels []string) (*Report, error) {
	report := &Report{}
	var errs []error

	for _, j := range b.plan(rels, report) {
		removed, err := j.asset.Clean()
		if err != nil {
			b.log.Error("clean failed", zap.String("asset", j.asset.Rel), zap.Error(err))
			report.Failed = append(report.Failed, j.asset.Rel)
			errs = append(errs, err)
			continue
		}
		for _, p := range removed {
			b.log.Debug("removed", zap.String("path", p))
		}
		report.Cleaned = append(report.Cleaned, j.asset.Rel)
	}

	b.log.Info("clean finished",
		zap.Int("cleaned", len(report.Cleaned)),
		zap.Int("failed", len(report.Failed)))
	return report, errors.Join(errs...)
}
