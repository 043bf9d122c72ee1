// Package runnertest provides a recording fake of runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/dshills/devboot/internal/runner"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
	Dir  string
}

// Line renders the call as a single command line.
func (c Call) Line() string {
	return runner.CommandLine(c.Name, c.Args)
}

// Fake records every call and answers from Results, keyed by command line.
// A key matches a call when the call's line equals it or starts with it
// followed by a space; the longest matching key wins. Unmatched calls exit 0.
type Fake struct {
	mu sync.Mutex

	Calls   []Call
	Results map[string]runner.Result
	Errors  map[string]error

	// Paths answers LookPath. Missing names return exec.ErrNotFound.
	Paths map[string]string

	// OnRun, when set, is invoked before Results are consulted.
	OnRun func(c Call)
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Results: map[string]runner.Result{},
		Errors:  map[string]error{},
		Paths:   map[string]string{},
	}
}

// Run records the call and returns the configured result.
func (f *Fake) Run(ctx context.Context, name string, args []string, opts runner.Opts) (runner.Result, error) {
	c := Call{Name: name, Args: append([]string(nil), args...), Dir: opts.Dir}

	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	onRun := f.OnRun
	f.mu.Unlock()

	if onRun != nil {
		onRun(c)
	}
	if err := ctx.Err(); err != nil {
		return runner.Result{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	line := c.Line()
	if key, ok := longestMatch(line, f.Errors); ok {
		return runner.Result{}, f.Errors[key]
	}
	if key, ok := longestMatch(line, f.Results); ok {
		res := f.Results[key]
		if opts.Stdout != nil && res.Stdout != "" {
			fmt.Fprint(opts.Stdout, res.Stdout)
		}
		return res, nil
	}
	return runner.Result{}, nil
}

// LookPath answers from Paths.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// SetPath makes LookPath resolve name.
func (f *Fake) SetPath(name, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths[name] = path
}

// Lines returns every recorded call as a command line, in order.
func (f *Fake) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.Line()
	}
	return lines
}

func longestMatch[V any](line string, m map[string]V) (string, bool) {
	best, found := "", false
	for key := range m {
		if line != key && !strings.HasPrefix(line, key+" ") {
			continue
		}
		if !found || len(key) > len(best) {
			best, found = key, true
		}
	}
	return best, found
}
