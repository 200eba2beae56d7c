package stream

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/goleak"

	"github.com/streamssr/streamssr/internal/demodata"
	"github.com/streamssr/streamssr/internal/page"
	"github.com/streamssr/streamssr/internal/render"
	"github.com/streamssr/streamssr/internal/section"
	"github.com/streamssr/streamssr/internal/telemetry"
	"github.com/streamssr/streamssr/internal/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fallbackHTML = "<!DOCTYPE html><html><body>static shell</body></html>"

// chunkWriter records what was written between flushes.
type chunkWriter struct {
	*httptest.ResponseRecorder
	pending bytes.Buffer
	chunks  []string
}

func newChunkWriter() *chunkWriter {
	return &chunkWriter{ResponseRecorder: httptest.NewRecorder()}
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.pending.Write(p)
	return w.ResponseRecorder.Write(p)
}

func (w *chunkWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *chunkWriter) Flush() {
	w.chunks = append(w.chunks, w.pending.String())
	w.pending.Reset()
	w.ResponseRecorder.Flush()
}

// gated returns a section that resolves when its gate is closed, or fails
// with err if err is non-nil.
func gated(name string, gate <-chan struct{}, err error) section.Section {
	return section.Section{
		Name:        name,
		Placeholder: page.Placeholder(name, vdom.Text("loading "+name)),
		Resolve: func(ctx context.Context) (*vdom.VNode, error) {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if err != nil {
				return nil, err
			}
			return vdom.P(vdom.Class("content"), "content of "+name), nil
		},
	}
}

func immediate(name string) section.Section {
	gate := make(chan struct{})
	close(gate)
	return gated(name, gate, nil)
}

func testPage(sections ...section.Section) *page.Page {
	children := make([]any, 0, len(sections)+1)
	children = append(children, vdom.ID("root"))
	for _, s := range sections {
		children = append(children, s.Placeholder)
	}
	return &page.Page{
		Path: "/",
		Document: render.Document{
			Title: "test",
			Body:  vdom.Div(children...),
		},
		Sections: sections,
	}
}

func staticBuild(sections ...section.Section) BuildFunc {
	return func(context.Context, *http.Request, string) (*page.Page, error) {
		return testPage(sections...), nil
	}
}

func newResponder(t *testing.T, opts Options) *Responder {
	t.Helper()
	if opts.Fallback == nil {
		opts.Fallback = func() (string, error) { return fallbackHTML, nil }
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	}
	return New(opts)
}

func fragmentOrder(body string) []string {
	var names []string
	for _, part := range strings.Split(body, `<template data-section="`)[1:] {
		names = append(names, part[:strings.IndexByte(part, '"')])
	}
	return names
}

func TestResponder_ShellBeforeSections(t *testing.T) {
	gate := make(chan struct{})
	shellReady := make(chan struct{})

	r := newResponder(t, Options{
		Build: staticBuild(gated("stats", gate, nil), gated("reviews", gate, nil)),
		OnTransition: func(_ *Session, to State) {
			if to == StateShellReady {
				close(shellReady)
			}
		},
	})

	w := newChunkWriter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	<-shellReady
	close(gate)
	<-done

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(w.chunks) < 4 {
		t.Fatalf("expected shell, two fragments, and close as separate flushes, got %d chunks", len(w.chunks))
	}

	shell := w.chunks[0]
	if !strings.HasPrefix(shell, "<!DOCTYPE html>") {
		t.Errorf("first flush does not start the document: %q", shell)
	}
	for _, want := range []string{`id="root"`, `id="section-stats"`, `id="section-reviews"`, "loading stats"} {
		if !strings.Contains(shell, want) {
			t.Errorf("shell missing %s", want)
		}
	}
	if strings.Contains(shell, "<template") {
		t.Error("shell contains section content")
	}
	if strings.Contains(shell, render.DocumentClose) {
		t.Error("shell closes the document")
	}

	if last := w.chunks[len(w.chunks)-1]; last != render.DocumentClose {
		t.Errorf("last flush = %q, want document close", last)
	}
	if got := strings.Count(w.Body.String(), render.DocumentClose); got != 1 {
		t.Errorf("document closed %d times, want 1", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get(SessionHeader) == "" {
		t.Error("missing session header")
	}
}

func TestResponder_FragmentFormat(t *testing.T) {
	r := newResponder(t, Options{Build: staticBuild(immediate("stats"))})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	want := `<template data-section="stats"><p class="content">content of stats</p></template>` +
		`<script>window.__streamssr.swap("stats")</script>`
	found := false
	for _, c := range w.chunks {
		if c == want {
			found = true
		}
	}
	if !found {
		t.Errorf("no flush carried exactly the fragment\nwant %q\ngot  %q", want, w.chunks)
	}
}

func TestResponder_ReadinessOrder(t *testing.T) {
	gates := map[string]chan struct{}{
		"a": make(chan struct{}),
		"b": make(chan struct{}),
		"c": make(chan struct{}),
	}
	shellReady := make(chan struct{})
	written := make(chan struct{}, 3)

	r := newResponder(t, Options{
		Build: staticBuild(gated("a", gates["a"], nil), gated("b", gates["b"], nil), gated("c", gates["c"], nil)),
		OnTransition: func(_ *Session, to State) {
			switch to {
			case StateShellReady:
				close(shellReady)
			case StateSectionReady:
				written <- struct{}{}
			}
		},
	})

	w := newChunkWriter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	<-shellReady
	for _, name := range []string{"b", "c", "a"} {
		close(gates[name])
		<-written
	}
	<-done

	got := fragmentOrder(w.Body.String())
	want := []string{"b", "c", "a"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("fragment order = %v, want %v", got, want)
	}
}

func TestResponder_TransitionSequence(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	r := newResponder(t, Options{
		Build: staticBuild(immediate("a"), immediate("b")),
		OnTransition: func(_ *Session, to State) {
			mu.Lock()
			states = append(states, to)
			mu.Unlock()
		},
	})
	r.ServeHTTP(newChunkWriter(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []State{StateInit, StateShellReady, StateSectionReady, StateSectionReady, StateDone}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}

func TestResponder_FailedSectionKeepsOthers(t *testing.T) {
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer

	r := newResponder(t, Options{
		Build: staticBuild(
			immediate("stats"),
			gated("products", closed(), errors.New("upstream down")),
			immediate("reviews"),
		),
		Logger:  slog.New(slog.NewJSONHandler(&logs, nil)),
		Metrics: telemetry.NewMetrics(telemetry.WithRegistry(reg)),
	})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	body := w.Body.String()

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := fragmentOrder(body); len(got) != 2 {
		t.Fatalf("fragments = %v, want stats and reviews", got)
	}
	if strings.Contains(body, `data-section="products"`) {
		t.Error("failed section produced a fragment")
	}
	if !strings.Contains(body, "loading products") {
		t.Error("failed section placeholder missing")
	}
	if got := strings.Count(body, render.DocumentClose); got != 1 {
		t.Errorf("document closed %d times, want 1", got)
	}

	if got := strings.Count(logs.String(), `"msg":"section failed"`); got != 1 {
		t.Errorf("logged %d section failures, want 1\n%s", got, logs.String())
	}
	if !strings.Contains(logs.String(), `"section":"products"`) {
		t.Errorf("failure log does not name the section: %s", logs.String())
	}

	expected := `
# HELP streamssr_sections_total Streamed sections by name and outcome
# TYPE streamssr_sections_total counter
streamssr_sections_total{outcome="failed",section="products"} 1
streamssr_sections_total{outcome="ready",section="reviews"} 1
streamssr_sections_total{outcome="ready",section="stats"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "streamssr_sections_total"); err != nil {
		t.Error(err)
	}
}

func TestResponder_SectionDurationIncludesShell(t *testing.T) {
	reg := prometheus.NewRegistry()
	const buildTime = 40 * time.Millisecond

	r := newResponder(t, Options{
		Build: func(ctx context.Context, _ *http.Request, _ string) (*page.Page, error) {
			time.Sleep(buildTime)
			return testPage(immediate("stats")), nil
		},
		Metrics: telemetry.NewMetrics(telemetry.WithRegistry(reg)),
	})
	r.ServeHTTP(newChunkWriter(), httptest.NewRequest(http.MethodGet, "/", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != "streamssr_section_duration_seconds" {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 1 {
			t.Fatalf("samples = %d, want 1", h.GetSampleCount())
		}
		if got := h.GetSampleSum(); got < buildTime.Seconds() {
			t.Errorf("section duration = %vs, want at least the %v spent before the shell", got, buildTime)
		}
		return
	}
	t.Fatal("streamssr_section_duration_seconds not gathered")
}

func closed() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func TestResponder_PanickingSectionIsContained(t *testing.T) {
	boom := section.Section{
		Name:        "boom",
		Placeholder: vdom.Text("loading boom"),
		Resolve: func(context.Context) (*vdom.VNode, error) {
			panic("kaboom")
		},
	}
	r := newResponder(t, Options{Build: staticBuild(boom, immediate("ok"))})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := fragmentOrder(w.Body.String()); len(got) != 1 || got[0] != "ok" {
		t.Errorf("fragments = %v, want [ok]", got)
	}
}

func TestResponder_BuildFailureServesFallback(t *testing.T) {
	tests := []struct {
		name   string
		build  BuildFunc
		reason string
	}{
		{
			name: "error",
			build: func(context.Context, *http.Request, string) (*page.Page, error) {
				return nil, errors.New("no page")
			},
			reason: telemetry.ReasonError,
		},
		{
			name: "panic",
			build: func(context.Context, *http.Request, string) (*page.Page, error) {
				panic("builder exploded")
			},
			reason: telemetry.ReasonPanic,
		},
		{
			name: "render error",
			build: func(context.Context, *http.Request, string) (*page.Page, error) {
				p := testPage()
				p.Document.Body = &vdom.VNode{Kind: vdom.KindElement}
				return p, nil
			},
			reason: telemetry.ReasonError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
			r := newResponder(t, Options{Build: tt.build, Metrics: m})

			w := newChunkWriter()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", w.Code)
			}
			if w.Body.String() != fallbackHTML {
				t.Errorf("body = %q, want the static shell", w.Body.String())
			}
			if len(w.chunks) != 0 {
				t.Errorf("fallback was streamed in %d flushes", len(w.chunks))
			}

			expected := "# HELP streamssr_fallbacks_total Responses that failed before the shell, by reason\n" +
				"# TYPE streamssr_fallbacks_total counter\n" +
				`streamssr_fallbacks_total{reason="` + tt.reason + `"} 1` + "\n"
			if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "streamssr_fallbacks_total"); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestResponder_FallbackUnavailable(t *testing.T) {
	r := newResponder(t, Options{
		Build: func(context.Context, *http.Request, string) (*page.Page, error) {
			return nil, errors.New("no page")
		},
		Fallback: func() (string, error) { return "", errors.New("no shell either") },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "<html") {
		t.Errorf("unexpected markup: %q", w.Body.String())
	}
}

func TestResponder_ShellTimeout(t *testing.T) {
	reached := false
	r := newResponder(t, Options{
		ShellTimeout: 20 * time.Millisecond,
		Build: func(ctx context.Context, _ *http.Request, _ string) (*page.Page, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		OnTransition: func(_ *Session, to State) {
			if to != StateInit {
				reached = true
			}
		},
	})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Body.String() != "Request timeout" {
		t.Errorf("body = %q, want %q", w.Body.String(), "Request timeout")
	}
	if reached {
		t.Error("a timed out response left INIT")
	}
}

func TestResponder_DeadlineAfterShellIsHarmless(t *testing.T) {
	slow := section.Section{
		Name:        "slow",
		Placeholder: vdom.Text("loading slow"),
		Resolve: func(ctx context.Context) (*vdom.VNode, error) {
			select {
			case <-time.After(100 * time.Millisecond):
				return vdom.P("late but fine"), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	r := newResponder(t, Options{
		ShellTimeout: 10 * time.Millisecond,
		Build:        staticBuild(slow),
	})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "Request timeout") {
		t.Error("deadline produced an error after the shell")
	}
	if !strings.Contains(body, "late but fine") {
		t.Error("slow section missing")
	}
	if !strings.HasSuffix(body, render.DocumentClose) {
		t.Error("document not closed")
	}
}

func TestResponder_SectionTimeout(t *testing.T) {
	reg := prometheus.NewRegistry()
	stuck := gated("stuck", make(chan struct{}), nil)

	r := newResponder(t, Options{
		SectionTimeout: 20 * time.Millisecond,
		Build:          staticBuild(stuck, immediate("ok")),
		Metrics:        telemetry.NewMetrics(telemetry.WithRegistry(reg)),
	})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := fragmentOrder(w.Body.String()); len(got) != 1 || got[0] != "ok" {
		t.Errorf("fragments = %v, want [ok]", got)
	}
	if !strings.HasSuffix(w.Body.String(), render.DocumentClose) {
		t.Error("document not closed")
	}

	expected := `
# HELP streamssr_sections_total Streamed sections by name and outcome
# TYPE streamssr_sections_total counter
streamssr_sections_total{outcome="ready",section="ok"} 1
streamssr_sections_total{outcome="timeout",section="stuck"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "streamssr_sections_total"); err != nil {
		t.Error(err)
	}
}

func TestResponder_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var aborted sync.WaitGroup
	aborted.Add(1)
	waiting := section.Section{
		Name:        "waiting",
		Placeholder: vdom.Text("loading"),
		Resolve: func(ctx context.Context) (*vdom.VNode, error) {
			defer aborted.Done()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	r := newResponder(t, Options{
		Build: staticBuild(waiting),
		OnTransition: func(_ *Session, to State) {
			if to == StateShellReady {
				cancel()
			}
		},
	})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	aborted.Wait()

	body := w.Body.String()
	if strings.Contains(body, "<template") {
		t.Error("fragment written after disconnect")
	}
	if got := strings.Count(body, render.DocumentClose); got > 1 {
		t.Errorf("document closed %d times", got)
	}
}

func TestResponder_BuildReceivesSession(t *testing.T) {
	var got string
	var fromCtx *Session
	r := newResponder(t, Options{
		NewID: func() string { return "fixed-id" },
		Build: func(ctx context.Context, _ *http.Request, id string) (*page.Page, error) {
			got = id
			fromCtx = SessionFromContext(ctx)
			return testPage(), nil
		},
	})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got != "fixed-id" {
		t.Errorf("Build got session %q, want fixed-id", got)
	}
	if fromCtx == nil || fromCtx.ID != "fixed-id" {
		t.Errorf("SessionFromContext = %+v", fromCtx)
	}
	if !fromCtx.ShellSent() || fromCtx.State() != StateDone {
		t.Errorf("session after response: shellSent=%v state=%v", fromCtx.ShellSent(), fromCtx.State())
	}
	if w.Header().Get(SessionHeader) != "fixed-id" {
		t.Errorf("session header = %q", w.Header().Get(SessionHeader))
	}
}

func TestResponder_Spans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	r := newResponder(t, Options{
		Build:  staticBuild(immediate("ok"), gated("bad", closed(), errors.New("nope"))),
		Tracer: telemetry.Tracer(tp),
	})
	r.ServeHTTP(newChunkWriter(), httptest.NewRequest(http.MethodGet, "/", nil))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "stream.response" {
		t.Errorf("span name = %q", span.Name())
	}

	events := map[string]int{}
	for _, e := range span.Events() {
		events[e.Name]++
	}
	if events["shell.ready"] != 1 || events["section.ready"] != 1 || events["exception"] != 1 {
		t.Errorf("span events = %v", events)
	}
}

// The page builder's scopes must not be shared between concurrent requests.
func TestResponder_ConcurrentRequestsHaveIndependentScopes(t *testing.T) {
	builder := &page.Builder{LatencyScale: 0.001}

	var (
		mu     sync.Mutex
		scopes []*section.Scope
	)
	r := newResponder(t, Options{
		Build: func(ctx context.Context, req *http.Request, id string) (*page.Page, error) {
			p, err := builder.Build(ctx, req.URL.Path, req.URL.String(), id)
			if err == nil {
				mu.Lock()
				scopes = append(scopes, p.Scope)
				mu.Unlock()
			}
			return p, err
		},
	})

	var wg sync.WaitGroup
	bodies := make([]string, 4)
	for i := range bodies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			bodies[i] = w.Body.String()
		}()
	}
	wg.Wait()

	if len(scopes) != len(bodies) {
		t.Fatalf("built %d pages, want %d", len(scopes), len(bodies))
	}
	seen := map[*section.Scope]bool{}
	memos := map[*section.Memo[demodata.Stat]]bool{}
	for _, s := range scopes {
		if seen[s] {
			t.Fatal("two requests shared a section scope")
		}
		seen[s] = true

		m, ok := section.Lookup[demodata.Stat](s, page.SectionStats)
		if !ok {
			t.Fatal("stats memo missing from scope")
		}
		if memos[m] {
			t.Fatal("two requests shared a stats memo")
		}
		memos[m] = true
		if !m.Resolved() {
			t.Error("stats memo was not resolved by its request")
		}
	}
	for i, body := range bodies {
		if got := len(fragmentOrder(body)); got != 3 {
			t.Errorf("request %d streamed %d fragments, want 3", i, got)
		}
	}
}

func TestResponder_HomePage(t *testing.T) {
	builder := &page.Builder{LatencyScale: 0.001, Seed: func() uint64 { return 42 }}
	r := newResponder(t, Options{
		Build: func(ctx context.Context, req *http.Request, id string) (*page.Page, error) {
			return builder.Build(ctx, req.URL.Path, req.URL.String(), id)
		},
	})

	w := newChunkWriter()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	body := w.Body.String()

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	head := strings.Index(body, "<head>")
	root := strings.Index(body, `<div id="root">`)
	first := strings.Index(body, "<template")
	end := strings.Index(body, render.DocumentClose)
	if head < 0 || root < head || first < root || end < first {
		t.Fatalf("unexpected document order: head=%d root=%d first fragment=%d close=%d", head, root, first, end)
	}
	if !strings.Contains(body[:first], "window.__SSR_DATA__ = ") {
		t.Error("bootstrap data not in the shell")
	}

	got := fragmentOrder(body)
	if len(got) != 3 {
		t.Fatalf("fragments = %v, want three", got)
	}
	names := map[string]bool{}
	for _, n := range got {
		names[n] = true
	}
	for _, want := range []string{page.SectionStats, page.SectionProducts, page.SectionReviews} {
		if !names[want] {
			t.Errorf("missing fragment %q", want)
		}
	}
	if strings.Count(body, render.DocumentClose) != 1 || !strings.HasSuffix(body, render.DocumentClose) {
		t.Error("document must end with exactly one close")
	}
}
