// Package orchestrator runs the adapted linter invocations concurrently,
// relays their output, combines their exit statuses and merges their
// result files.
package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/lintmux/internal/cmdline"
	"github.com/dkoosis/lintmux/internal/diag"
	"github.com/dkoosis/lintmux/internal/linter"
	"github.com/dkoosis/lintmux/internal/yamlmerge"
)

// Origin is the component name attached to orchestrator diagnostics.
const Origin = "Orchestrator"

// Status is the combined outcome of a run. The values are the process exit
// codes IDE integrations rely on; 1 is deliberately unused.
type Status int

const (
	Success        Status = 0
	PartialFailure Status = 2
	TotalFailure   Status = 3
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case PartialFailure:
		return "partial failure"
	case TotalFailure:
		return "total failure"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Bits of the combined status flag.
const (
	notConfirmed = 1 << iota // no process has succeeded yet
	someFailed               // at least one process failed
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStdout sets where the linters' standard output is relayed.
func WithStdout(w io.Writer) Option {
	return func(o *Orchestrator) { o.stdout = w }
}

// WithStderr sets where the linters' standard error is relayed.
func WithStderr(w io.Writer) Option {
	return func(o *Orchestrator) { o.stderr = w }
}

// WithMergeStreams overrides the profile's stream merging.
func WithMergeStreams(merge bool) Option {
	return func(o *Orchestrator) { o.merge = merge }
}

// WithReformat overrides the profile's output line formatter.
func WithReformat(f linter.LineFormatter) Option {
	return func(o *Orchestrator) { o.reformat = f }
}

// WithCombinedResult overrides the combined result path chosen by the adapter.
func WithCombinedResult(path string) Option {
	return func(o *Orchestrator) { o.combined = path }
}

// WithLogger sets the debug logger passed down to every process.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// Orchestrator owns one process per invocation of an adapted command line.
type Orchestrator struct {
	reg      *linter.Registry
	result   cmdline.Result
	stdout   io.Writer
	stderr   io.Writer
	merge    bool
	reformat linter.LineFormatter
	combined string
	logger   *slog.Logger

	procs   []*linter.Process
	unknown int // invocations naming a tool missing from the registry
	started bool
	diags   diag.Sink
}

// New prepares a run of result's invocations. An invocation naming a tool
// that reg does not know is reported as an Error and counts as failed.
func New(reg *linter.Registry, result cmdline.Result, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reg:      reg,
		result:   result,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		merge:    result.Profile.MergeStreams,
		reformat: result.Profile.Reformat,
		combined: result.CombinedResultPath,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	// One lock for both streams: they usually end up on the same terminal.
	var mu sync.Mutex
	stdout := &lockedWriter{mu: &mu, w: o.stdout}
	stderr := &lockedWriter{mu: &mu, w: o.stderr}

	for _, inv := range result.Invocations {
		tool, ok := reg.Lookup(inv.Name)
		if !ok {
			o.diags.Addf(diag.Error, Origin, "unknown linter %q", inv.Name)
			o.unknown++
			continue
		}
		o.procs = append(o.procs, linter.NewProcess(tool, inv, linter.ProcessOptions{
			Stdout:       stdout,
			Stderr:       stderr,
			MergeStreams: o.merge,
			Reformat:     o.reformat,
			Logger:       o.logger,
		}))
	}
	return o
}

// Processes returns the supervised processes in invocation order.
func (o *Orchestrator) Processes() []*linter.Process {
	return append([]*linter.Process(nil), o.procs...)
}

// Start removes a stale combined result and spawns every process without
// waiting for any of them. Spawn failures are recorded by the process.
func (o *Orchestrator) Start() {
	if o.started {
		return
	}
	o.started = true

	if o.combined != "" {
		if err := os.Remove(o.combined); err != nil && !errors.Is(err, os.ErrNotExist) {
			o.diags.Addf(diag.Warning, Origin, "cannot remove stale combined result %s: %v", o.combined, err)
		}
	}
	for _, p := range o.procs {
		p.Start()
	}
	o.logger.Debug("linters started", "count", len(o.procs))
}

// WaitAll blocks until every process has exited and its output is drained,
// then combines the exit statuses. It starts the run if Start was not called.
func (o *Orchestrator) WaitAll() Status {
	o.Start()
	if len(o.procs) == 0 && o.unknown == 0 {
		o.diags.Addf(diag.Error, Origin, "no linters to run")
		return TotalFailure
	}

	// Every goroutine writes only its own slot.
	succeeded := make([]bool, len(o.procs))
	var g errgroup.Group
	for i, p := range o.procs {
		g.Go(func() error {
			code := p.Wait()
			succeeded[i] = code == p.Tool().SuccessCode
			if !succeeded[i] {
				return fmt.Errorf("%s exited with code %d", p.Name(), code)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.logger.Debug("first linter failure", "error", err)
	}

	flags := notConfirmed
	if o.unknown > 0 {
		flags |= someFailed
	}
	for _, ok := range succeeded {
		if ok {
			flags &^= notConfirmed
		} else {
			flags |= someFailed
		}
	}

	status := Success
	switch {
	case flags&someFailed == 0:
	case flags&notConfirmed == 0:
		status = PartialFailure
		o.diags.Addf(diag.Warning, Origin, "some linters failed")
	default:
		status = TotalFailure
		o.diags.Addf(diag.Error, Origin, "all linters failed")
	}
	o.logger.Debug("linters finished", "status", status.String())
	return status
}

// Diagnostics returns the adapter's, every process's and the orchestrator's
// own diagnostics, in that order.
func (o *Orchestrator) Diagnostics() []diag.Diagnostic {
	out := append([]diag.Diagnostic(nil), o.result.Diagnostics...)
	for _, p := range o.procs {
		out = append(out, p.Diagnostics()...)
	}
	return append(out, o.diags.All()...)
}

// MergeResults annotates every process's result file with documentation
// links and unions it into the combined result. Processes without a result
// path are skipped and not counted.
func (o *Orchestrator) MergeResults() yamlmerge.CallTotals {
	var totals yamlmerge.CallTotals
	for _, p := range o.procs {
		path := p.ResultPath()
		if path == "" {
			continue
		}
		p.Wait()

		if _, err := os.Stat(path); err != nil {
			o.diags.Addf(diag.Warning, Origin, "%s did not create its result file %s", p.Name(), path)
			totals = totals.Add(yamlmerge.CallTotals{Fail: 1})
			continue
		}

		t, err := yamlmerge.Annotate(path, p.Tool().DocLink)
		totals = totals.Add(t)
		if err != nil {
			o.diags.Addf(diag.Warning, Origin, "cannot annotate result of %s: %v", p.Name(), err)
			continue
		}

		if o.combined == "" {
			continue
		}
		if err := yamlmerge.Union(o.combined, path); err != nil {
			o.diags.Addf(diag.Error, Origin, "cannot merge result of %s: %v", p.Name(), err)
		}
	}
	o.logger.Debug("results merged", "success", totals.Success, "fail", totals.Fail, "combined", o.combined)
	return totals
}

// CombinedResultPath returns the merged result file, or "" with an Error
// diagnostic when it was never written.
func (o *Orchestrator) CombinedResultPath() string {
	if o.combined != "" {
		if _, err := os.Stat(o.combined); err == nil {
			return o.combined
		}
	}
	o.diags.Addf(diag.Error, Origin, "general result file isn't created")
	return ""
}

// Close releases the handles of processes that were never waited for.
func (o *Orchestrator) Close() {
	for _, p := range o.procs {
		p.Release()
	}
}

// lockedWriter serializes whole Write calls across relays.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
