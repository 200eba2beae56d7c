package stream

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/streamssr/streamssr/internal/activation"
	"github.com/streamssr/streamssr/internal/errors"
	"github.com/streamssr/streamssr/internal/page"
	"github.com/streamssr/streamssr/internal/render"
	"github.com/streamssr/streamssr/internal/telemetry"
)

// SessionHeader carries the session id on every response.
const SessionHeader = "X-Session-Id"

// Defaults applied by New.
const (
	DefaultShellTimeout   = 10 * time.Second
	DefaultSectionTimeout = 30 * time.Second
)

// ErrTimeout is reported when the shell deadline expires.
var ErrTimeout = stderrors.New("stream: shell deadline exceeded")

// BuildFunc builds the page for a request.
type BuildFunc func(ctx context.Context, r *http.Request, sessionID string) (*page.Page, error)

// Options configures a Responder.
type Options struct {
	// Build produces the page. Required.
	Build BuildFunc

	// Fallback returns the static shell served with a 500 when the page
	// cannot be built.
	Fallback func() (string, error)

	// ShellTimeout bounds INIT. Default: 10s.
	ShellTimeout time.Duration

	// SectionTimeout bounds each section fetch. Default: 30s; negative
	// disables it.
	SectionTimeout time.Duration

	// Renderer renders markup. Default: compact output.
	Renderer *render.Renderer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *telemetry.Metrics

	// Tracer defaults to the global tracer provider.
	Tracer trace.Tracer

	// NewID returns session ids. Default: random UUIDs.
	NewID func() string

	// OnTransition, if set, is called on every state change.
	OnTransition func(sess *Session, to State)
}

// Responder is the http.Handler streaming pages.
type Responder struct {
	opts Options
}

// New creates a Responder.
func New(opts Options) *Responder {
	if opts.Build == nil {
		panic("stream: Options.Build is required")
	}
	if opts.ShellTimeout <= 0 {
		opts.ShellTimeout = DefaultShellTimeout
	}
	if opts.SectionTimeout == 0 {
		opts.SectionTimeout = DefaultSectionTimeout
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.Config{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.Tracer(nil)
	}
	return &Responder{opts: opts}
}

// shell is the outcome of INIT.
type shell struct {
	page     *page.Page
	head     []byte
	err      error
	panicked bool
}

// ServeHTTP streams one document.
func (s *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id := ""
	if s.opts.NewID != nil {
		id = s.opts.NewID()
	}
	sess := newSession(id, time.Now(), s.opts.ShellTimeout, cancel)
	ctx = WithSession(ctx, sess)
	log := s.opts.Logger.With("session", sess.ID, "path", r.URL.Path)

	ctx, span := s.opts.Tracer.Start(ctx, "stream.response", trace.WithAttributes(
		attribute.String("streamssr.session", sess.ID),
		attribute.String("http.path", r.URL.Path),
	))
	defer span.End()

	done := s.opts.Metrics.StreamStarted()
	defer done()

	w.Header().Set(SessionHeader, sess.ID)
	s.transition(sess, StateInit)

	ready := make(chan shell, 1)
	go func() {
		ready <- s.buildShell(ctx, r, sess.ID)
	}()

	timer := time.NewTimer(s.opts.ShellTimeout)
	defer timer.Stop()

	var sh shell
	select {
	case sh = <-ready:
	case <-timer.C:
		cancel()
		s.timeout(w, log, span)
		return
	case <-r.Context().Done():
		log.Debug("client went away before the shell")
		return
	}

	if sh.err != nil {
		s.fallback(w, log, span, sh)
		return
	}

	// The deadline has no effect from here on.
	timer.Stop()
	if err := s.writeShell(w, sess, sh.head); err != nil {
		log.Debug("shell write failed", "error", err)
		s.closeDocument(w, sess)
		return
	}
	s.opts.Metrics.ObserveShell(time.Since(sess.Started))
	span.AddEvent("shell.ready")

	sections := withTimeout(sh.page.Sections, s.opts.SectionTimeout)
	failed := s.stream(ctx, w, sess, log, span, Merge(ctx, sections))

	s.closeDocument(w, sess)
	span.SetAttributes(
		attribute.Int("streamssr.sections", len(sections)),
		attribute.Int("streamssr.sections_failed", failed),
	)
	log.Debug("stream complete",
		"sections", len(sections),
		"failed", failed,
		"duration", time.Since(sess.Started),
	)
}

// buildShell builds the page and renders everything up to the open body.
// It runs on its own goroutine so INIT can be raced against the deadline.
func (s *Responder) buildShell(ctx context.Context, r *http.Request, id string) (sh shell) {
	defer func() {
		if rec := recover(); rec != nil {
			sh = shell{
				err:      errors.New("E200").WithDetail(fmt.Sprintf("panic: %v\n%s", rec, debug.Stack())),
				panicked: true,
			}
		}
	}()

	p, err := s.opts.Build(ctx, r, id)
	if err != nil {
		return shell{err: errors.FromError(err, "E200")}
	}
	if p == nil {
		return shell{err: errors.New("E200").WithDetail("page builder returned no page")}
	}

	var buf bytes.Buffer
	if err := s.opts.Renderer.RenderDocumentOpen(&buf, p.Document); err != nil {
		return shell{err: errors.New("E200").Wrap(err)}
	}
	return shell{page: p, head: buf.Bytes()}
}

func (s *Responder) writeShell(w http.ResponseWriter, sess *Session, head []byte) error {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	n, err := w.Write(head)
	s.opts.Metrics.AddBytes(n)
	flush(w)
	sess.latchShell()
	s.transition(sess, StateShellReady)
	return err
}

// stream writes fragments as results arrive and returns how many
// sections failed. It is the only writer of the response after the shell.
func (s *Responder) stream(ctx context.Context, w http.ResponseWriter, sess *Session, log *slog.Logger, span trace.Span, results <-chan Result) int {
	failed := 0
	var buf bytes.Buffer
	for res := range results {
		if ctx.Err() != nil {
			log.Debug("client went away", "pending_section", res.Name)
			return failed
		}

		if res.Err != nil {
			failed++
			s.sectionFailed(log, span, res, time.Since(sess.Started))
			continue
		}

		buf.Reset()
		if err := s.fragment(&buf, res); err != nil {
			failed++
			res.Err = errors.New("E300").WithDetail("render " + res.Name).Wrap(err)
			s.sectionFailed(log, span, res, time.Since(sess.Started))
			continue
		}

		n, err := w.Write(buf.Bytes())
		s.opts.Metrics.AddBytes(n)
		if err != nil {
			log.Debug("fragment write failed", "section", res.Name, "error", err)
			sess.Cancel()
			return failed
		}
		flush(w)

		s.opts.Metrics.ObserveSection(res.Name, telemetry.OutcomeReady, time.Since(sess.Started))
		span.AddEvent("section.ready", trace.WithAttributes(attribute.String("streamssr.section", res.Name)))
		s.transition(sess, StateSectionReady)
	}
	return failed
}

// fragment renders a resolved section as a template plus the script that
// moves it into its placeholder.
func (s *Responder) fragment(buf *bytes.Buffer, res Result) error {
	fmt.Fprintf(buf, `<template data-section="%s">`, render.EscapeAttr(res.Name))
	if err := s.opts.Renderer.RenderToWriter(buf, res.Node); err != nil {
		return err
	}
	buf.WriteString("</template><script>")
	buf.WriteString(activation.SwapCall(res.Name))
	buf.WriteString("</script>")
	return nil
}

func (s *Responder) sectionFailed(log *slog.Logger, span trace.Span, res Result, elapsed time.Duration) {
	outcome := telemetry.OutcomeFailed
	if errors.Code(res.Err) == "E301" {
		outcome = telemetry.OutcomeTimeout
	}
	log.Warn("section failed",
		"section", res.Name,
		"outcome", outcome,
		"code", errors.Code(res.Err),
		"error", res.Err,
	)
	s.opts.Metrics.ObserveSection(res.Name, outcome, elapsed)
	span.RecordError(res.Err, trace.WithAttributes(attribute.String("streamssr.section", res.Name)))
}

// closeDocument writes the document close at most once per session.
func (s *Responder) closeDocument(w io.Writer, sess *Session) {
	if !sess.latchClose() {
		return
	}
	n, _ := io.WriteString(w, render.DocumentClose)
	s.opts.Metrics.AddBytes(n)
	flush(w)
	s.transition(sess, StateDone)
}

// fallback answers a failed INIT with the static shell.
func (s *Responder) fallback(w http.ResponseWriter, log *slog.Logger, span trace.Span, sh shell) {
	reason := telemetry.ReasonError
	if sh.panicked {
		reason = telemetry.ReasonPanic
	}
	log.Error("shell failed, serving static fallback", "reason", reason, "error", sh.err)
	s.opts.Metrics.Fallback(reason)
	span.RecordError(sh.err)
	span.SetStatus(codes.Error, "shell failed")

	html := ""
	if s.opts.Fallback != nil {
		var err error
		if html, err = s.opts.Fallback(); err != nil {
			log.Error("static fallback unavailable", "error", err)
			html = ""
		}
	}
	if html == "" {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, html)
}

func (s *Responder) timeout(w http.ResponseWriter, log *slog.Logger, span trace.Span) {
	err := errors.New("E201").Wrap(ErrTimeout)
	log.Error("shell deadline exceeded", "timeout", s.opts.ShellTimeout, "error", err)
	s.opts.Metrics.Fallback(telemetry.ReasonTimeout)
	span.RecordError(err)
	span.SetStatus(codes.Error, "request timeout")

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, "Request timeout")
}

func (s *Responder) transition(sess *Session, to State) {
	sess.setState(to)
	if s.opts.OnTransition != nil {
		s.opts.OnTransition(sess, to)
	}
}

func flush(w io.Writer) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
