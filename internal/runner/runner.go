// Package runner manages the post-build command of watch mode.
package runner

import (
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// Runner manages a child process that is restarted after every build.
type Runner struct {
	command string
	args    []string
	workDir string

	// DisableStdin detaches the child from the terminal's stdin.
	DisableStdin bool
	// Stdout and Stderr default to the process's own streams.
	Stdout io.Writer
	Stderr io.Writer
	// StopTimeout bounds the wait after a graceful stop before the process
	// is killed. Zero means five seconds.
	StopTimeout time.Duration

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// New creates a new process runner.
func New(command string, args []string, workDir string) *Runner {
	return &Runner{
		command: command,
		args:    args,
		workDir: workDir,
	}
}

// Parse creates a runner from a command line such as `node dist/main.js
// --port 3000`. Single and double quotes group words; there is no other
// shell syntax.
func Parse(commandLine, workDir string) (*Runner, error) {
	words, err := SplitCommand(commandLine)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.New("empty command")
	}
	return New(words[0], words[1:], workDir), nil
}

// SplitCommand splits a command line into words.
func SplitCommand(s string) ([]string, error) {
	var (
		words  []string
		cur    strings.Builder
		quote  rune
		inWord bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, errors.Newf("unterminated %c quote in %q", quote, s)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}

// String returns the command line.
func (r *Runner) String() string {
	return strings.Join(append([]string{r.command}, r.args...), " ")
}

func (r *Runner) newCmd() *exec.Cmd {
	cmd := exec.Command(r.command, r.args...)
	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	cmd.Stdout = os.Stdout
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	cmd.Stderr = os.Stderr
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}
	if !r.DisableStdin {
		cmd.Stdin = os.Stdin
	}
	return cmd
}

// Start starts the child process.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd := r.newCmd()
	setProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", r.command)
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	r.cmd, r.done = cmd, done
	return nil
}

// Stop asks the child process and its children to exit, killing them when
// they are still running after StopTimeout.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	timeout := r.StopTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	terminate(r.cmd)
	select {
	case <-r.done:
	case <-time.After(timeout):
		kill(r.cmd)
		<-r.done
	}
	return nil
}

// Restart stops and restarts the child process.
func (r *Runner) Restart() error {
	if err := r.Stop(); err != nil {
		return err
	}
	return r.Start()
}

// Wait blocks until the child process exits.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running returns true if the child process is running.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil || r.cmd.Process == nil || r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}
