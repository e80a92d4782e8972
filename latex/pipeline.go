// Package latex implements the two-phase PDF summary protocol.
//
// Phase one streams a LaTeX draft and republishes the accumulated text
// after every chunk. Phase two is an independent request that compiles the
// fully received draft. The draft is passed between the phases as an
// explicit value.
package latex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/richinex/studio/api"
	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
)

// CompileStatus is shown while phase two runs.
const CompileStatus = "Compiling PDF summary... This may take a moment"

// Backend is the subset of the API facade the pipeline needs.
type Backend interface {
	StreamLatex(ctx context.Context, req api.LatexRequest) (*api.LatexStream, error)
	GeneratePDF(ctx context.Context, req api.PDFRequest) (model.PDFResult, error)
}

// Draft is the complete output of phase one.
type Draft struct {
	Text   string
	Chunks int
}

// Stream runs phase one: it reads the stream to its end, calling publish
// with the accumulated text after every chunk. An error opening the stream
// or reading it aborts the protocol.
func Stream(ctx context.Context, b Backend, req api.LatexRequest, publish func(text string)) (Draft, error) {
	s, err := b.StreamLatex(ctx, req)
	if err != nil {
		return Draft{}, err
	}
	defer s.Close()

	var acc strings.Builder
	chunks := 0
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Draft{}, err
		}
		acc.WriteString(chunk)
		chunks++
		if publish != nil {
			publish(acc.String())
		}
	}
	return Draft{Text: acc.String(), Chunks: chunks}, nil
}

// Status classifies the result of phase two.
type Status int

const (
	// Compiled: the PDF (and its source) are available.
	Compiled Status = iota
	// Partial: compilation failed but the LaTeX source was kept.
	Partial
	// Failed: nothing recoverable.
	Failed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Compiled:
		return "compiled"
	case Partial:
		return "partial"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of a full pipeline run.
type Outcome struct {
	Status Status
	Result model.PDFResult
	Err    error
}

// PDF returns the compiled document, or the zero artifact.
func (o Outcome) PDF() model.Artifact {
	return o.Result.PDF()
}

// Source returns the LaTeX source, or the zero artifact. It is available
// for Compiled and Partial outcomes.
func (o Outcome) Source() model.Artifact {
	return o.Result.Source()
}

// Finalize runs phase two with the completed draft.
func Finalize(ctx context.Context, b Backend, req api.LatexRequest, d Draft) Outcome {
	res, err := b.GeneratePDF(ctx, api.PDFRequest{LatexRequest: req, LatexCode: d.Text})
	switch {
	case err == nil:
		return Outcome{Status: Compiled, Result: res}
	case api.KindOf(err) == api.KindBusiness && res.TexPath != "":
		return Outcome{
			Status: Partial,
			Result: model.PDFResult{TexPath: res.TexPath, TexFilename: res.TexFilename},
			Err:    err,
		}
	default:
		return Outcome{Status: Failed, Err: err}
	}
}

// Generator runs the pipeline as one lifecycle action and keeps the
// observable state (draft text and last outcome) for a view.
type Generator struct {
	backend Backend
	notify  lifecycle.Notifier
	action  lifecycle.Action

	mu      sync.Mutex
	draft   string
	outcome *Outcome
}

// NewGenerator creates a generator. notify receives the compile status.
func NewGenerator(b Backend, notify lifecycle.Notifier) *Generator {
	if notify == nil {
		notify = lifecycle.Discard
	}
	return &Generator{backend: b, notify: notify}
}

// Run streams a draft and compiles it. onDraft, if non-nil, receives the
// accumulated text after every chunk. The returned error is
// lifecycle.ErrBusy or lifecycle.ErrSuperseded when the run was not
// applied; otherwise the outcome describes the result.
func (g *Generator) Run(ctx context.Context, req api.LatexRequest, onDraft func(string)) (Outcome, error) {
	ticket, err := g.action.Begin(ctx)
	if err != nil {
		return Outcome{}, err
	}

	g.mu.Lock()
	g.draft = ""
	g.outcome = nil
	g.mu.Unlock()

	ticket.Streaming()
	draft, err := Stream(ticket.Context(), g.backend, req, func(text string) {
		if !ticket.Current() {
			return
		}
		g.mu.Lock()
		g.draft = text
		g.mu.Unlock()
		if onDraft != nil {
			onDraft(text)
		}
	})

	var out Outcome
	if err != nil {
		out = Outcome{Status: Failed, Err: fmt.Errorf("latex stream: %w", err)}
	} else {
		out, _ = lifecycle.Notify(ticket.Context(), g.notify, CompileStatus, func(ctx context.Context) (Outcome, error) {
			return Finalize(ctx, g.backend, req, draft), nil
		})
	}

	if !ticket.Finish(out.Err) {
		return Outcome{}, lifecycle.ErrSuperseded
	}
	g.mu.Lock()
	g.outcome = &out
	g.mu.Unlock()
	return out, nil
}

// Draft returns the text published so far by the current or last run.
func (g *Generator) Draft() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.draft
}

// Outcome returns the last applied outcome.
func (g *Generator) Outcome() (Outcome, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outcome == nil {
		return Outcome{}, false
	}
	return *g.outcome, true
}

// State returns the lifecycle state of the generator's action.
func (g *Generator) State() lifecycle.State {
	return g.action.State()
}

// Cancel aborts a run in flight.
func (g *Generator) Cancel() {
	g.action.Cancel()
}

// Reject fails the generator's action without running it, for input that
// did not pass local validation.
func (g *Generator) Reject(err error) error {
	return g.action.Reject(err)
}
