package linter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/dkoosis/lintmux/internal/diag"
)

const (
	// SpawnFailed is the exit code reported for a process that never started.
	SpawnFailed = -1

	// ReadBufferSize is the chunk size used when draining a pipe.
	ReadBufferSize = 4096

	originPrefix = "LinterBase/"
)

// LineFormatter rewrites one output line of tool (without its trailing
// newline) before it is forwarded.
type LineFormatter func(tool string, line []byte) []byte

// ProcessOptions configures how a Process relays output.
type ProcessOptions struct {
	// Stdout and Stderr receive the child's output. Each chunk is written
	// with a single Write call; writers shared between processes must
	// serialize Write themselves.
	Stdout io.Writer
	Stderr io.Writer
	// MergeStreams sends the child's stderr through its stdout pipe.
	MergeStreams bool
	// Reformat, when set, makes the relay line-buffered and rewrites every line.
	Reformat LineFormatter
	Logger   *slog.Logger
}

// Process supervises one external linter run.
type Process struct {
	tool Tool
	inv  Invocation
	opts ProcessOptions

	cmd     *exec.Cmd
	started bool
	relays  sync.WaitGroup
	diags   diag.Sink

	waitOnce sync.Once
	exitCode int
}

// NewProcess prepares a run of tool for inv. Nothing is spawned until Start.
func NewProcess(tool Tool, inv Invocation, opts ProcessOptions) *Process {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Process{tool: tool, inv: inv, opts: opts, exitCode: SpawnFailed}
}

// Name returns the tool name.
func (p *Process) Name() string { return p.tool.Name }

// ResultPath returns the file the tool was asked to write its diagnostics to.
func (p *Process) ResultPath() string { return p.inv.ResultPath }

// Tool returns the registry entry the process runs.
func (p *Process) Tool() Tool { return p.tool }

// Argv returns the full command line used to spawn the tool.
func (p *Process) Argv() []string {
	return p.tool.Command(p.inv.Args, p.inv.ResultPath)
}

// Diagnostics returns what the process recorded while starting, relaying and waiting.
func (p *Process) Diagnostics() []diag.Diagnostic { return p.diags.All() }

// Started reports whether the child process was spawned.
func (p *Process) Started() bool { return p.started }

// Start spawns the tool and begins relaying its output. It does not wait for
// the tool to finish. Failures are recorded as diagnostics; Start reports
// whether the process is running.
func (p *Process) Start() bool {
	if p.started {
		return true
	}
	origin := p.origin()

	if p.inv.ResultPath != "" {
		if err := os.Remove(p.inv.ResultPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.diags.Addf(diag.Warning, origin, "cannot remove stale result file %s: %v", p.inv.ResultPath, err)
		}
	}

	argv := p.Argv()
	cmd := exec.Command(argv[0], argv[1:]...)
	if len(p.tool.Env) > 0 {
		cmd.Env = append(os.Environ(), p.tool.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.diags.Addf(diag.Error, origin, "cannot create stdout pipe: %v", err)
		return false
	}
	var stderr io.ReadCloser
	if p.opts.MergeStreams {
		cmd.Stderr = cmd.Stdout
	} else {
		stderr, err = cmd.StderrPipe()
		if err != nil {
			_ = stdout.Close()
			p.diags.Addf(diag.Error, origin, "cannot create stderr pipe: %v", err)
			return false
		}
	}

	if err := cmd.Start(); err != nil {
		p.diags.Addf(diag.Error, origin, "cannot start %s: %v", strings.Join(argv, " "), err)
		return false
	}
	p.cmd = cmd
	p.started = true
	p.opts.Logger.Debug("linter started", "tool", p.tool.Name, "pid", cmd.Process.Pid, "argv", argv)

	p.relays.Add(1)
	go p.relay(stdout, p.opts.Stdout, "stdout")
	if stderr != nil {
		p.relays.Add(1)
		go p.relay(stderr, p.opts.Stderr, "stderr")
	}
	return true
}

// Wait blocks until the relays have drained and the child has exited, then
// returns its exit code. A process that never started returns SpawnFailed.
func (p *Process) Wait() int {
	if !p.started {
		return SpawnFailed
	}
	p.waitOnce.Do(func() {
		p.relays.Wait()
		err := p.cmd.Wait()
		p.exitCode = p.exitCodeOf(err)
		p.opts.Logger.Debug("linter exited", "tool", p.tool.Name, "code", p.exitCode)
	})
	return p.exitCode
}

// Succeeded reports whether the finished process exited with the tool's success code.
func (p *Process) Succeeded() bool {
	return p.Wait() == p.tool.SuccessCode
}

// Release drops the OS handle of a process that was never waited for. The
// child itself is left running.
func (p *Process) Release() {
	if p.cmd == nil || p.cmd.Process == nil || p.cmd.ProcessState != nil {
		return
	}
	_ = p.cmd.Process.Release()
}

func (p *Process) origin() string {
	return originPrefix + p.tool.Name
}

func (p *Process) exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := getExitCodeFromError(exitErr); ok {
			return code
		}
		return exitErr.ExitCode()
	}
	p.diags.Addf(diag.Error, p.origin(), "waiting for %s: %v", p.tool.Name, err)
	return SpawnFailed
}

// relay copies r to w chunk by chunk until end of stream.
func (p *Process) relay(r io.Reader, w io.Writer, stream string) {
	defer p.relays.Done()

	buf := make([]byte, ReadBufferSize)
	var carry []byte
	writeFailed := false
	write := func(b []byte) {
		if len(b) == 0 || writeFailed {
			return
		}
		if _, err := w.Write(b); err != nil {
			writeFailed = true
			p.diags.Addf(diag.Warning, p.origin(), "forwarding %s: %v", stream, err)
		}
	}

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if p.opts.Reformat == nil {
				write(buf[:n])
			} else {
				var out []byte
				out, carry = p.reformat(carry, buf[:n])
				write(out)
			}
		}
		if err != nil {
			if len(carry) > 0 {
				write(p.opts.Reformat(p.tool.Name, carry))
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				p.diags.Addf(diag.Warning, p.origin(), "reading %s: %v", stream, err)
			}
			return
		}
	}
}

// reformat appends chunk to carry, rewrites every complete line and returns
// the output together with the new carry-over (the trailing partial line).
func (p *Process) reformat(carry, chunk []byte) (out, rest []byte) {
	data := append(carry, chunk...)
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, data
	}

	var b bytes.Buffer
	for _, line := range bytes.SplitAfter(data[:end+1], []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		b.Write(p.opts.Reformat(p.tool.Name, bytes.TrimSuffix(line, []byte{'\n'})))
		b.WriteByte('\n')
	}
	rest = append([]byte(nil), data[end+1:]...)
	return b.Bytes(), rest
}

// String describes the process for logs.
func (p *Process) String() string {
	return fmt.Sprintf("%s(%s)", p.tool.Name, strings.Join(p.Argv(), " "))
}
