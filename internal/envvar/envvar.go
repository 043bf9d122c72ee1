package envvar

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/dshills/devboot/internal/ctxlog"
	"github.com/dshills/devboot/internal/runner"
)

// Setter sets variables through setx on Windows.
type Setter struct {
	r      runner.Runner
	goos   string
	setenv func(key, value string) error
}

// New creates a Setter for the running OS.
func New(r runner.Runner) *Setter {
	return &Setter{r: r, goos: runtime.GOOS, setenv: os.Setenv}
}

// Set assigns name=value in this process and persists it where supported.
func (s *Setter) Set(ctx context.Context, name, value string) error {
	if err := s.setenv(name, value); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	if s.goos != "windows" {
		ctxlog.FromContext(ctx).Warn("persistent environment variables are only supported on Windows", "name", name)
		return nil
	}
	if _, err := runner.Checked(ctx, s.r, "setx", []string{name, value}, runner.Opts{}); err != nil {
		return fmt.Errorf("persisting %s: %w", name, err)
	}
	return nil
}
