package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/dshills/devboot/internal/ctxlog"
	"github.com/dshills/devboot/internal/inipatch"
	"github.com/dshills/devboot/internal/journal"
	"github.com/dshills/devboot/internal/profile"
	"github.com/dshills/devboot/internal/reconcile"
	"github.com/dshills/devboot/internal/runner"
)

// PackageManager is the subset of pkgmgr.Client the pipeline drives.
type PackageManager interface {
	reconcile.Manager
	Ensure(ctx context.Context) error
	BucketList(ctx context.Context) (string, error)
	BucketAdd(ctx context.Context, name, url string) error
	Cleanup(ctx context.Context) error
	CacheRemove(ctx context.Context) error
}

// EnvSetter sets an environment variable persistently.
type EnvSetter interface {
	Set(ctx context.Context, name, value string) error
}

// Recorder stores journal entries. *journal.Journal satisfies it.
type Recorder interface {
	Record(e journal.Entry) error
}

// INIChange summarizes the effect of the rule set on the target file.
type INIChange struct {
	Path    string `json:"path"`
	Changed int    `json:"changed"`
	Total   int    `json:"total"`
	Missing bool   `json:"missing,omitempty"`
}

// Plan is what a setup run would do.
type Plan struct {
	Buckets []profile.Bucket `json:"bucketsToAdd"`
	Tools   reconcile.Plan   `json:"tools"`
	INI     INIChange        `json:"ini"`
	Env     []profile.EnvVar `json:"env"`
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Buckets) == 0 &&
		len(p.Tools.ToInstall) == 0 &&
		len(p.Tools.ToUpdate) == 0 &&
		p.INI.Changed == 0 &&
		len(p.Env) == 0
}

// Pipeline wires the setup steps together.
type Pipeline struct {
	pm      PackageManager
	env     EnvSetter
	journal Recorder
	out     io.Writer
	patch   func(path string, rules []inipatch.Rule) (inipatch.Result, error)
}

// New creates a Pipeline. rec may be nil; out receives progress lines.
func New(pm PackageManager, env EnvSetter, rec Recorder, out io.Writer) *Pipeline {
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		pm:      pm,
		env:     env,
		journal: rec,
		out:     out,
		patch:   inipatch.PatchFile,
	}
}

// Run executes every step for p in order and stops at the first failure.
func (s *Pipeline) Run(ctx context.Context, p profile.Profile) error {
	log := ctxlog.FromContext(ctx)

	s.progress("Ensuring package manager is installed...")
	if err := s.pm.Ensure(ctx); err != nil {
		return err
	}

	if len(p.Buckets) > 0 {
		report, err := s.pm.BucketList(ctx)
		if err != nil {
			return fmt.Errorf("listing buckets: %w", err)
		}
		for _, b := range MissingBuckets(p.Buckets, report) {
			s.progress("Adding bucket %s...", b.Name)
			if err := s.pm.BucketAdd(ctx, b.Name, b.URL); err != nil {
				return fmt.Errorf("adding bucket %s: %w", b.Name, err)
			}
		}
	}

	s.progress("Reconciling %d tools...", len(p.Tools))
	plan, err := reconcile.Run(ctx, s.pm, p.Tools)
	if err != nil {
		return err
	}
	log.Info("reconciled tools", "installed", plan.ToInstall, "updated", plan.ToUpdate)
	s.record(ctx, journal.Entry{Kind: journal.KindReconcile, Plan: &plan})

	s.progress("Cleaning up old versions and download cache...")
	if err := s.pm.Cleanup(ctx); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	if err := s.pm.CacheRemove(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	if p.INI.Path != "" {
		s.progress("Patching %s...", p.INI.Path)
		res, err := s.patch(p.INI.Path, p.INI.Rules)
		if err != nil {
			return err
		}
		s.progress("  %d of %d lines changed, backup at %s", res.Changed, res.Lines, res.BackupPath)
		s.record(ctx, journal.Entry{Kind: journal.KindPatch, Patch: &res})
	}

	for _, ev := range p.Env {
		s.progress("Setting %s=%s", ev.Name, ev.Value)
		if err := s.env.Set(ctx, ev.Name, ev.Value); err != nil {
			return fmt.Errorf("setting %s: %w", ev.Name, err)
		}
	}

	s.progress("Setup complete.")
	return nil
}

// Plan queries the current state without changing it. A package manager that
// is not installed yet counts as an empty installation.
func (s *Pipeline) Plan(ctx context.Context, p profile.Profile) (Plan, error) {
	var plan Plan

	buckets, err := s.pm.BucketList(ctx)
	if err != nil && !runner.IsNotFound(err) {
		return Plan{}, fmt.Errorf("listing buckets: %w", err)
	}
	plan.Buckets = MissingBuckets(p.Buckets, buckets)

	report, err := s.pm.List(ctx)
	if err != nil && !runner.IsNotFound(err) {
		return Plan{}, fmt.Errorf("listing installed tools: %w", err)
	}
	plan.Tools = reconcile.Partition(p.Tools, report)

	if p.INI.Path != "" {
		plan.INI.Path = p.INI.Path
		changed, total, err := inipatch.Preview(p.INI.Path, p.INI.Rules)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			plan.INI.Missing = true
		case err != nil:
			return Plan{}, err
		default:
			plan.INI.Changed = changed
			plan.INI.Total = total
		}
	}

	plan.Env = append(plan.Env, p.Env...)
	return plan, nil
}

// MissingBuckets returns the buckets whose name is not the first field of
// any line in the bucket list report, in profile order.
func MissingBuckets(want []profile.Bucket, report string) []profile.Bucket {
	have := make(map[string]bool)
	for _, line := range strings.Split(report, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			have[strings.ToLower(fields[0])] = true
		}
	}
	var missing []profile.Bucket
	for _, b := range want {
		if !have[strings.ToLower(b.Name)] {
			missing = append(missing, b)
		}
	}
	return missing
}

func (s *Pipeline) record(ctx context.Context, e journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(e); err != nil {
		ctxlog.FromContext(ctx).Warn("journal write failed", "kind", e.Kind, "err", err)
	}
}

func (s *Pipeline) progress(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}
