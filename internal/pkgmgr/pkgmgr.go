package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/devboot/internal/ctxlog"
	"github.com/dshills/devboot/internal/runner"
)

// ErrNotInstalled means the package manager binary could not be resolved even
// after running the bootstrap command.
var ErrNotInstalled = errors.New("package manager not installed")

// DefaultBootstrap installs scoop from its published install script. The
// -RunAsAdmin switch is required because setup runs elevated.
var DefaultBootstrap = []string{
	"powershell", "-NoProfile", "-ExecutionPolicy", "Bypass", "-Command",
	"iex \"& {$(irm get.scoop.sh)} -RunAsAdmin\"",
}

// Options configures a Client.
type Options struct {
	Binary    string   // package manager executable name, default "scoop"
	Bootstrap []string // command that installs the package manager
	ShimDir   string   // directory added to PATH after bootstrap
	Stdout    io.Writer
	Stderr    io.Writer
	Timeout   time.Duration
}

// Client runs package manager subcommands through a runner.Runner.
type Client struct {
	r    runner.Runner
	opts Options
	path string
}

// New creates a Client. Empty options fall back to scoop defaults.
func New(r runner.Runner, opts Options) *Client {
	if opts.Binary == "" {
		opts.Binary = "scoop"
	}
	if len(opts.Bootstrap) == 0 {
		opts.Bootstrap = DefaultBootstrap
	}
	return &Client{r: r, opts: opts}
}

// Binary returns the executable the client invokes: the resolved path after
// Ensure, the bare name before.
func (c *Client) Binary() string {
	if c.path != "" {
		return c.path
	}
	return c.opts.Binary
}

// Ensure resolves the package manager on PATH. When it is missing it runs the
// bootstrap command once, prepends ShimDir to PATH and resolves again.
func (c *Client) Ensure(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	p, err := c.r.LookPath(c.opts.Binary)
	if err == nil {
		c.path = p
		logger.Debug("package manager resolved", "path", p)
		return nil
	}
	logger.Warn("package manager not found, bootstrapping", "binary", c.opts.Binary, "error", err)

	name, args := c.opts.Bootstrap[0], c.opts.Bootstrap[1:]
	if _, err := runner.Checked(ctx, c.r, name, args, c.runOpts()); err != nil {
		return fmt.Errorf("bootstrapping %s: %w", c.opts.Binary, err)
	}

	if c.opts.ShimDir != "" {
		if err := prependPath(c.opts.ShimDir); err != nil {
			return fmt.Errorf("updating PATH: %w", err)
		}
	}

	p, err = c.r.LookPath(c.opts.Binary)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotInstalled, c.opts.Binary, err)
	}
	c.path = p
	logger.Info("package manager installed", "path", p)
	return nil
}

// Install installs names in a single invocation.
func (c *Client) Install(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := c.run(ctx, append([]string{"install"}, names...)...)
	return err
}

// Update updates names in a single invocation.
func (c *Client) Update(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := c.run(ctx, append([]string{"update"}, names...)...)
	return err
}

// List returns the raw installed-package report.
func (c *Client) List(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "list")
	return res.Stdout, err
}

// BucketAdd registers a bucket.
func (c *Client) BucketAdd(ctx context.Context, name, url string) error {
	_, err := c.run(ctx, "bucket", "add", name, url)
	return err
}

// BucketList returns the raw registered-bucket report.
func (c *Client) BucketList(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "bucket", "list")
	return res.Stdout, err
}

// Cleanup removes old versions of every installed package.
func (c *Client) Cleanup(ctx context.Context) error {
	_, err := c.run(ctx, "cleanup", "*")
	return err
}

// CacheRemove empties the download cache.
func (c *Client) CacheRemove(ctx context.Context) error {
	_, err := c.run(ctx, "cache", "rm", "*")
	return err
}

func (c *Client) run(ctx context.Context, args ...string) (runner.Result, error) {
	ctxlog.FromContext(ctx).Debug("package manager", "args", strings.Join(args, " "))
	return runner.Checked(ctx, c.r, c.Binary(), args, c.runOpts())
}

func (c *Client) runOpts() runner.Opts {
	return runner.Opts{
		Stdout:  c.opts.Stdout,
		Stderr:  c.opts.Stderr,
		Timeout: c.opts.Timeout,
	}
}

func prependPath(dir string) error {
	dir = filepath.Clean(dir)
	current := os.Getenv("PATH")
	for _, p := range filepath.SplitList(current) {
		if filepath.Clean(p) == dir {
			return nil
		}
	}
	if current == "" {
		return os.Setenv("PATH", dir)
	}
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+current)
}

// DefaultShimDir returns the per-user scoop shim directory.
func DefaultShimDir() string {
	if root := os.Getenv("SCOOP"); root != "" {
		return filepath.Join(root, "shims")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "scoop", "shims")
}
