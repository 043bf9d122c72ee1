package elevate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dshills/devboot/internal/runner"
)

// ErrDeclined means the user dismissed the elevation prompt.
var ErrDeclined = errors.New("elevation declined by user")

// declinedMarkers are fragments PowerShell prints when the UAC prompt is
// cancelled.
var declinedMarkers = []string{
	"canceled by the user",
	"cancelled by the user",
}

// Checker answers elevation questions using external commands.
type Checker struct {
	r     runner.Runner
	goos  string
	euid  func() int
	getwd func() (string, error)
}

// New creates a Checker for the running OS.
func New(r runner.Runner) *Checker {
	return &Checker{r: r, goos: runtime.GOOS, euid: os.Geteuid, getwd: os.Getwd}
}

// Elevated reports whether the process already runs with admin rights. On
// Windows `net session` only succeeds for administrators.
func (c *Checker) Elevated(ctx context.Context) (bool, error) {
	if c.goos != "windows" {
		return c.euid() == 0, nil
	}
	res, err := c.r.Run(ctx, "net", []string{"session"}, runner.Opts{})
	if err != nil {
		return false, fmt.Errorf("checking elevation: %w", err)
	}
	return res.ExitCode == 0, nil
}

// Relaunch starts exe with args elevated in the current working directory
// and waits for it. A cancelled prompt returns ErrDeclined; a non-zero exit
// from the elevated copy is returned as a *runner.ExitError carrying its code.
// On non-Windows systems there is no prompt to raise, so Relaunch reports an
// error asking the user to re-run as root.
func (c *Checker) Relaunch(ctx context.Context, exe string, args []string) error {
	if c.goos != "windows" {
		return errors.New("administrator rights required: re-run as root")
	}
	wd, err := c.getwd()
	if err != nil {
		return fmt.Errorf("reading working directory: %w", err)
	}
	script := relaunchScript(exe, wd, args)
	res, err := c.r.Run(ctx, "powershell", []string{"-NoProfile", "-Command", script}, runner.Opts{})
	if err != nil {
		return fmt.Errorf("relaunching elevated: %w", err)
	}
	if res.ExitCode == 0 {
		return nil
	}
	lower := strings.ToLower(res.Stderr)
	for _, m := range declinedMarkers {
		if strings.Contains(lower, m) {
			return ErrDeclined
		}
	}
	return &runner.ExitError{Name: exe, Args: args, Code: res.ExitCode, Stderr: res.Stderr}
}

// relaunchScript builds the PowerShell that starts exe elevated and exits
// with its exit code. Start-Process joins -ArgumentList with bare spaces, so
// the arguments go in as one pre-quoted command line.
func relaunchScript(exe, wd string, args []string) string {
	var b strings.Builder
	b.WriteString("$ErrorActionPreference = 'Stop'; ")
	fmt.Fprintf(&b, "$p = Start-Process -FilePath %s -Verb RunAs -PassThru -Wait -WorkingDirectory %s", psQuote(exe), psQuote(wd))
	if len(args) > 0 {
		quoted := make([]string, len(args))
		for i, a := range args {
			quoted[i] = argQuote(a)
		}
		b.WriteString(" -ArgumentList " + psQuote(strings.Join(quoted, " ")))
	}
	b.WriteString("; exit $p.ExitCode")
	return b.String()
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// argQuote double-quotes s for a Windows command line. Backslashes are only
// special when they precede a double quote.
func argQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for _, r := range s {
		switch r {
		case '\\':
			slashes++
			continue
		case '"':
			b.WriteString(strings.Repeat(`\`, 2*slashes+1))
		default:
			b.WriteString(strings.Repeat(`\`, slashes))
		}
		slashes = 0
		b.WriteRune(r)
	}
	b.WriteString(strings.Repeat(`\`, 2*slashes))
	b.WriteByte('"')
	return b.String()
}
