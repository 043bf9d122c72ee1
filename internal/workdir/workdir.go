package workdir

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Changer abstracts the process-wide working directory.
type Changer interface {
	Getwd() (string, error)
	Chdir(dir string) error
}

// OS is the real process working directory.
type OS struct{}

func (OS) Getwd() (string, error) { return os.Getwd() }
func (OS) Chdir(dir string) error  { return os.Chdir(dir) }

// ErrBusy is returned when another Enter is still holding the directory.
var ErrBusy = errors.New("working directory already in use")

var mu sync.Mutex
var held bool

// Enter records the current working directory, changes to dir and returns a
// function that changes back to the recorded directory. Only one Enter may be
// outstanding per process; the restore function must be called (typically
// deferred) to release it.
func Enter(ch Changer, dir string) (restore func() error, err error) {
	mu.Lock()
	if held {
		mu.Unlock()
		return nil, ErrBusy
	}
	held = true
	mu.Unlock()

	release := func() {
		mu.Lock()
		held = false
		mu.Unlock()
	}

	orig, err := ch.Getwd()
	if err != nil {
		release()
		return nil, fmt.Errorf("reading working directory: %w", err)
	}
	if err := ch.Chdir(dir); err != nil {
		release()
		return nil, fmt.Errorf("entering %s: %w", dir, err)
	}

	var once sync.Once
	var restoreErr error
	return func() error {
		once.Do(func() {
			defer release()
			if err := ch.Chdir(orig); err != nil {
				restoreErr = fmt.Errorf("restoring working directory %s: %w", orig, err)
			}
		})
		return restoreErr
	}, nil
}
