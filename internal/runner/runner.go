package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Result holds the outcome of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Opts holds optional parameters for a single invocation.
type Opts struct {
	Dir     string            // working directory (optional)
	Env     map[string]string // extra environment variables (overlay)
	Stdin   io.Reader
	Stdout  io.Writer // receives a live copy of stdout when set
	Stderr  io.Writer // receives a live copy of stderr when set
	Timeout time.Duration
}

// Runner is the interface for running external commands.
type Runner interface {
	// Run executes a command and returns its result. A process that exits
	// non-zero is not an error; error is reserved for failures to start or
	// wait (binary not found, ctx canceled, io failure).
	Run(ctx context.Context, name string, args []string, opts Opts) (Result, error)

	// LookPath resolves name against PATH.
	LookPath(name string) (string, error)
}

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Name   string
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", CommandLine(e.Name, e.Args), e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// ExitCode returns the exit code carried by err if it wraps an *ExitError.
func ExitCode(err error) (int, bool) {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return 0, false
}

// IsNotFound reports whether err means the binary could not be resolved.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// CommandLine renders name and args the way a user would type them.
func CommandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Checked runs the command and converts a non-zero exit into an *ExitError.
func Checked(ctx context.Context, r Runner, name string, args []string, opts Opts) (Result, error) {
	res, err := r.Run(ctx, name, args, opts)
	if err != nil {
		return res, fmt.Errorf("%s: %w", CommandLine(name, args), err)
	}
	if res.ExitCode != 0 {
		return res, &ExitError{Name: name, Args: args, Code: res.ExitCode, Stderr: res.Stderr}
	}
	return res, nil
}

// waitDelay bounds how long Run waits for output pipes after the process is
// killed on cancellation.
const waitDelay = 2 * time.Second

// OS is the production Runner backed by os/exec.
type OS struct{}

// New returns the production runner.
func New() *OS {
	return &OS{}
}

// LookPath resolves name with exec.LookPath.
func (r *OS) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes the command, capturing stdout/stderr and optionally teeing
// them to the writers in opts.
func (r *OS) Run(ctx context.Context, name string, args []string, opts Opts) (Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, opts.Stdout)
	cmd.Stderr = tee(&stderr, opts.Stderr)
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, err
	}

	return result, nil
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
