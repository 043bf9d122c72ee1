package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dshills/devboot/internal/config"
	"github.com/dshills/devboot/internal/ctxlog"
	"github.com/dshills/devboot/internal/envvar"
	"github.com/dshills/devboot/internal/journal"
	"github.com/dshills/devboot/internal/pkgmgr"
	"github.com/dshills/devboot/internal/profile"
	"github.com/dshills/devboot/internal/runner"
	"github.com/dshills/devboot/internal/setup"
	"github.com/spf13/cobra"
)

// newRunner builds the process runner. Tests replace it with a fake.
var newRunner = func() runner.Runner { return runner.New() }

// app holds everything a command needs after configuration is resolved.
type app struct {
	cfg     config.Config
	profile profile.Profile
	runner  runner.Runner
	journal *journal.Journal
}

// loadApp resolves config, logger, profile and journal for cmd. The returned
// context carries the logger.
func loadApp(cmd *cobra.Command) (context.Context, *app, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, nil, err
	}

	level, err := ctxlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := ctxlog.New(cmd.ErrOrStderr(), level)
	ctx := ctxlog.WithLogger(cmd.Context(), logger)

	path, err := profilePath(cfg)
	if err != nil {
		return nil, nil, err
	}
	prof, err := profile.Load(path, profile.DefaultVars())
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		logger.Debug("profile loaded", "path", path)
	}

	j, err := journal.New(cfg.Journal.Enabled, cfg.Journal.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal: %w", err)
	}

	return ctx, &app{cfg: cfg, profile: prof, runner: newRunner(), journal: j}, nil
}

// profilePath returns the configured profile, or the default profile file
// when it exists, or "" for the built-in profile.
func profilePath(cfg config.Config) (string, error) {
	if cfg.ProfileFile != "" {
		return cfg.ProfileFile, nil
	}
	p, err := config.DefaultProfilePath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		return "", nil
	}
	return p, nil
}

func (a *app) packageManager(stdout, stderr io.Writer) *pkgmgr.Client {
	shim := a.cfg.ShimDir
	if shim == "" {
		shim = pkgmgr.DefaultShimDir()
	}
	return pkgmgr.New(a.runner, pkgmgr.Options{
		Binary:    a.cfg.PackageManager,
		Bootstrap: a.cfg.BootstrapCommand,
		ShimDir:   shim,
		Stdout:    stdout,
		Stderr:    stderr,
		Timeout:   a.cfg.CommandTimeout(),
	})
}

// pipeline builds the setup pipeline. Package manager output is streamed to
// stdout and stderr when they are non-nil.
func (a *app) pipeline(progress, stdout, stderr io.Writer) *setup.Pipeline {
	return setup.New(a.packageManager(stdout, stderr), envvar.New(a.runner), a.journal, progress)
}
