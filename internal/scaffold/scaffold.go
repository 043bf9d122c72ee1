package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dshills/devboot/internal/ctxlog"
	"github.com/dshills/devboot/internal/runner"
	"github.com/dshills/devboot/internal/workdir"
)

// TargetPlaceholder in a generator argument is replaced by the target path.
// Generators without it get the target path appended.
const TargetPlaceholder = "{target}"

// Descriptor describes one project to generate.
type Descriptor struct {
	Name            string
	TargetPath      string
	RootPath        string
	Generator       []string
	AddCommand      []string
	DevAddCommand   []string
	CommandRunner   []string
	Installer       []string
	Dependencies    []string
	DevDependencies []string
	PostInit        []string
}

// Validate checks that every command the descriptor needs is present.
func (d Descriptor) Validate() error {
	if d.TargetPath == "" {
		return errors.New("target path is required")
	}
	if d.RootPath == "" {
		return errors.New("root path is required")
	}
	if len(d.Generator) == 0 {
		return fmt.Errorf("%s: generator command is required", d.Name)
	}
	if len(d.Dependencies) > 0 && len(d.AddCommand) == 0 {
		return fmt.Errorf("%s: dependencies listed without an add command", d.Name)
	}
	if len(d.DevDependencies) > 0 && len(d.DevAddCommand) == 0 {
		return fmt.Errorf("%s: dev dependencies listed without a dev add command", d.Name)
	}
	if len(d.PostInit) > 0 && len(d.CommandRunner) == 0 {
		return fmt.Errorf("%s: post-init commands listed without a command runner", d.Name)
	}
	return nil
}

// Options configures a Scaffolder.
type Options struct {
	Dir     workdir.Changer // defaults to workdir.OS
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Timeout time.Duration
}

// Scaffolder runs the generation steps for a Descriptor.
type Scaffolder struct {
	r     runner.Runner
	opts  Options
	mkdir func(path string, perm os.FileMode) error
}

// New creates a Scaffolder.
func New(r runner.Runner, opts Options) *Scaffolder {
	if opts.Dir == nil {
		opts.Dir = workdir.OS{}
	}
	return &Scaffolder{r: r, opts: opts, mkdir: os.MkdirAll}
}

// Run generates the project described by d. It stops at the first failing
// step; the working directory is back where it was when Run started.
func (s *Scaffolder) Run(ctx context.Context, d Descriptor) (err error) {
	if err := d.Validate(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx).With("project", d.Name)

	logger.Info("creating target directory", "path", d.TargetPath)
	if err := s.mkdir(d.TargetPath, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", d.TargetPath, err)
	}

	logger.Info("generating project")
	if err := s.exec(ctx, d.RootPath, generatorArgs(d.Generator, d.TargetPath)); err != nil {
		return fmt.Errorf("generating %s: %w", d.Name, err)
	}

	restore, err := workdir.Enter(s.opts.Dir, d.TargetPath)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	for _, dep := range d.Dependencies {
		logger.Info("adding dependency", "dependency", dep)
		if err := s.exec(ctx, d.TargetPath, appendArgs(d.AddCommand, dep)); err != nil {
			return fmt.Errorf("adding %s: %w", dep, err)
		}
	}

	for _, dep := range d.DevDependencies {
		logger.Info("adding dev dependency", "dependency", dep)
		if err := s.exec(ctx, d.TargetPath, appendArgs(d.DevAddCommand, dep)); err != nil {
			return fmt.Errorf("adding dev %s: %w", dep, err)
		}
	}

	for _, cmd := range d.PostInit {
		logger.Info("running init command", "command", cmd)
		if err := s.exec(ctx, d.TargetPath, appendArgs(d.CommandRunner, strings.Fields(cmd)...)); err != nil {
			return fmt.Errorf("running %s: %w", cmd, err)
		}
	}

	if len(d.Installer) > 0 {
		logger.Info("installing frontend packages")
		if err := s.exec(ctx, d.TargetPath, d.Installer); err != nil {
			return fmt.Errorf("installing packages for %s: %w", d.Name, err)
		}
	}

	return nil
}

func (s *Scaffolder) exec(ctx context.Context, dir string, argv []string) error {
	_, err := runner.Checked(ctx, s.r, argv[0], argv[1:], runner.Opts{
		Dir:     dir,
		Stdin:   s.opts.Stdin,
		Stdout:  s.opts.Stdout,
		Stderr:  s.opts.Stderr,
		Timeout: s.opts.Timeout,
	})
	return err
}

func generatorArgs(gen []string, target string) []string {
	out := make([]string, 0, len(gen)+1)
	replaced := false
	for _, a := range gen {
		if strings.Contains(a, TargetPlaceholder) {
			a = strings.ReplaceAll(a, TargetPlaceholder, target)
			replaced = true
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, target)
	}
	return out
}

func appendArgs(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
