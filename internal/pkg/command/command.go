/*
Copyright 2026 The consulk8s contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package command runs the user supplied command executed after the services changed.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const waitDelay = 2 * time.Second

// Runner runs a command line.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// ShellRunner runs commands through a POSIX shell, relaying their output
// unchanged.
type ShellRunner struct {
	// Shell defaults to /bin/sh.
	Shell  string
	Stdout io.Writer
	Stderr io.Writer
	// Timeout bounds the command run time. Zero means no limit.
	Timeout time.Duration
	Log     *zap.SugaredLogger
}

var _ Runner = &ShellRunner{}

// NewShellRunner returns a ShellRunner writing to the process stdout and stderr.
func NewShellRunner(log *zap.SugaredLogger, timeout time.Duration) *ShellRunner {
	return &ShellRunner{
		Shell:   "/bin/sh",
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Timeout: timeout,
		Log:     log,
	}
}

func (r *ShellRunner) Run(ctx context.Context, command string) error {
	if command == "" {
		return nil
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	// Children that outlive a killed shell must not hold the output pipes open.
	cmd.WaitDelay = waitDelay

	l := r.Log.With("command", command)
	l.Info("Running change command")

	start := time.Now()
	err := cmd.Run()
	l = l.With("duration", time.Since(start))

	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", err, ctx.Err())
		}
		l.Errorw("Change command failed", "error", err)
		return fmt.Errorf("failed to run command %q: %w", command, err)
	}

	l.Debug("Change command finished")
	return nil
}
