// Package bootstrap checks the local Go toolchain and then installs, builds
// and starts the wasteless TUI.
package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/version"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// MinGoVersion is the oldest toolchain the module builds with. It matches
// the go directive in go.mod.
const MinGoVersion = "go1.24"

// interruptExitCode is what a shell reports for a process killed by SIGINT.
const interruptExitCode = 130

// ErrInterrupted reports that a step was stopped by an interrupt before the
// final step was reached.
var ErrInterrupted = errors.New("bootstrap: interrupted")

// Runner executes external commands.
type Runner interface {
	// Output runs a command and returns its trimmed stdout.
	Output(ctx context.Context, dir, name string, args ...string) (string, error)
	// Run runs a command, streaming its output.
	Run(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Output implements Runner.
func (ExecRunner) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Step is one command in the bootstrap sequence.
type Step struct {
	Name string
	Cmd  string
	Args []string
	// Hint is printed when the step fails.
	Hint string
}

func (s Step) String() string {
	return strings.TrimSpace(s.Cmd + " " + strings.Join(s.Args, " "))
}

// DefaultSteps installs dependencies, builds the binary and runs it.
func DefaultSteps() []Step {
	return []Step{
		{
			Name: "install",
			Cmd:  "go",
			Args: []string{"mod", "download"},
			Hint: "Check your network connection and GOPROXY, then retry.",
		},
		{
			Name: "build",
			Cmd:  "go",
			Args: []string{"build", "-o", filepath.Join("bin", "wasteless"), "./cmd/wasteless"},
			Hint: "Fix the compile errors above, then retry.",
		},
		{
			Name: "start",
			Cmd:  filepath.Join(".", "bin", "wasteless"),
			Hint: "Check .wasteless/logs/wasteless.log for details.",
		},
	}
}

// StepError wraps a failed step with its remediation hint.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed (%s): %v", e.Step.Name, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Hint returns the remediation text for the failed step.
func (e *StepError) Hint() string { return e.Step.Hint }

// VersionError reports an unsupported toolchain.
type VersionError struct {
	Found   string
	Minimum string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("go toolchain %s is older than required %s", e.Found, e.Minimum)
}

// Hint returns the remediation text for an old toolchain.
func (e *VersionError) Hint() string {
	return fmt.Sprintf("Install %s or newer from https://go.dev/dl/ and retry.", e.Minimum)
}

// Bootstrapper runs the sequence in a project directory.
type Bootstrapper struct {
	Dir    string
	Runner Runner
	Steps  []Step
	Stdout io.Writer
	Stderr io.Writer
}

// New prepares a bootstrapper using ExecRunner and DefaultSteps.
func New(dir string) *Bootstrapper {
	return &Bootstrapper{
		Dir:    dir,
		Runner: ExecRunner{},
		Steps:  DefaultSteps(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// CheckToolchain compares `go env GOVERSION` with MinGoVersion.
func (b *Bootstrapper) CheckToolchain(ctx context.Context) (string, error) {
	found, err := b.Runner.Output(ctx, b.Dir, "go", "env", "GOVERSION")
	if err != nil {
		return "", &StepError{
			Step: Step{Name: "toolchain", Cmd: "go", Args: []string{"env", "GOVERSION"}, Hint: "Install Go from https://go.dev/dl/ and make sure it is on PATH."},
			Err:  err,
		}
	}
	ok, err := AtLeast(found, MinGoVersion)
	if err != nil {
		return found, err
	}
	if !ok {
		return found, &VersionError{Found: found, Minimum: MinGoVersion}
	}
	return found, nil
}

// Run checks the toolchain, then executes every step in order. An interrupt
// during the last step counts as a clean exit.
func (b *Bootstrapper) Run(ctx context.Context) error {
	found, err := b.CheckToolchain(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(b.stdout(), "Using %s\n", found)
	for i, step := range b.Steps {
		last := i == len(b.Steps)-1
		fmt.Fprintf(b.stdout(), "==> %s: %s\n", step.Name, step)
		err := b.Runner.Run(ctx, b.Dir, b.stdout(), b.stderr(), step.Cmd, step.Args...)
		if err == nil {
			continue
		}
		if interrupted(ctx, err) {
			if last {
				return nil
			}
			return fmt.Errorf("%s step: %w", step.Name, ErrInterrupted)
		}
		return &StepError{Step: step, Err: err}
	}
	return nil
}

func (b *Bootstrapper) stdout() io.Writer {
	if b.Stdout == nil {
		return io.Discard
	}
	return b.Stdout
}

func (b *Bootstrapper) stderr() io.Writer {
	if b.Stderr == nil {
		return io.Discard
	}
	return b.Stderr
}

type exitCoder interface {
	ExitCode() int
}

func interrupted(ctx context.Context, err error) bool {
	if errors.Is(err, ErrInterrupted) || errors.Is(ctx.Err(), context.Canceled) {
		return true
	}
	var coder exitCoder
	if errors.As(err, &coder) && coder.ExitCode() == interruptExitCode {
		return true
	}
	return false
}

// AtLeast reports whether the toolchain version found is at least minimum.
// found may carry a GOVERSION experiment suffix such as " X:nocoverageredesign".
func AtLeast(found, minimum string) (bool, error) {
	f, _, _ := strings.Cut(strings.TrimSpace(found), " ")
	if !version.IsValid(f) {
		return false, fmt.Errorf("bootstrap: unrecognised go version %q", found)
	}
	if !version.IsValid(minimum) {
		return false, fmt.Errorf("bootstrap: unrecognised go version %q", minimum)
	}
	return version.Compare(f, minimum) >= 0, nil
}
