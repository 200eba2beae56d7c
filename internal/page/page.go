package page

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/streamssr/streamssr/internal/activation"
	"github.com/streamssr/streamssr/internal/assets"
	"github.com/streamssr/streamssr/internal/demodata"
	"github.com/streamssr/streamssr/internal/federation"
	"github.com/streamssr/streamssr/internal/render"
	"github.com/streamssr/streamssr/internal/section"
	. "github.com/streamssr/streamssr/internal/vdom"
)

// Title is the document title of every page.
const Title = "StreamSSR · Streaming SSR Demo"

// Section names, in declaration order.
const (
	SectionStats    = "stats"
	SectionProducts = "products"
	SectionReviews  = "reviews"
)

// Page is one request's document and the sections still to be streamed
// into it.
type Page struct {
	Path     string
	Document render.Document
	Sections []section.Section
	Scope    *section.Scope
}

// Builder assembles pages. Its fields are read-only after construction so
// a single Builder serves concurrent requests.
type Builder struct {
	// Assets supplies the client bundle tags; nil means the dev entry.
	Assets *assets.Store

	// Widgets resolves federated widget slots.
	Widgets *federation.Registry

	// Fail names sections whose provider always fails.
	Fail []string

	// LatencyScale multiplies the simulated provider latency. Zero keeps
	// the demo latency.
	LatencyScale float64

	// Reload adds the live reload endpoint to the bootstrap data.
	Reload bool

	// Now defaults to time.Now.
	Now func() time.Time

	// Seed returns the base seed for a request's providers; defaults to
	// a random seed per request.
	Seed func() uint64
}

// Build returns a fresh page for path with its own section scope, already
// reset. url is exposed to the client as-is.
func (b *Builder) Build(_ context.Context, path, url, sessionID string) (*Page, error) {
	now := b.Now
	if now == nil {
		now = time.Now
	}
	seed := rand.Uint64()
	if b.Seed != nil {
		seed = b.Seed()
	}
	rng := func(stream uint64) *rand.Rand {
		return rand.New(rand.NewPCG(seed, stream))
	}

	fail := make(map[string]bool, len(b.Fail))
	for _, name := range b.Fail {
		fail[name] = true
	}

	stats := section.NewMemo(source(b, demodata.StatsSource(), fail), rng(1))
	products := section.NewMemo(source(b, demodata.ProductsSource(), fail), rng(2))
	reviews := section.NewMemo(source(b, demodata.ReviewsSource(now), fail), rng(3))

	scope := section.NewScope()
	for _, m := range []section.Fetcher{stats, products, reviews} {
		if err := scope.Add(m); err != nil {
			return nil, err
		}
	}
	scope.Reset()

	sections := []section.Section{
		section.Bind("📊 Live Statistics", Placeholder(SectionStats, Skeleton(SkeletonStats, 0)), stats, StatsView),
		section.Bind("🛍️ Featured Products", Placeholder(SectionProducts, Skeleton(SkeletonGrid, 6)), products, ProductsView),
		section.Bind("⭐ Customer Reviews", Placeholder(SectionReviews, Skeleton(SkeletonList, 3)), reviews, ReviewsView),
	}

	data := activation.Data{URL: url, Session: sessionID, Sections: scope.Names(), Widgets: activation.WidgetsPath}
	if b.Reload {
		data.Reload = activation.ReloadPath
	}
	bootstrap, err := activation.Bootstrap(data)
	if err != nil {
		return nil, err
	}

	tags := assets.TagsFor(nil, "")
	if b.Assets != nil {
		tags = b.Assets.Tags()
	}

	scripts := []render.ScriptTag{
		{Inline: activation.SwapRuntime()},
		{Inline: bootstrap},
	}
	scripts = append(scripts, tags.Scripts...)
	scripts = append(scripts, render.ScriptTag{Src: activation.ClientPath, Module: true, Async: true})

	return &Page{
		Path: path,
		Document: render.Document{
			Title:   Title,
			Styles:  []string{CriticalCSS},
			Links:   tags.Links,
			Scripts: scripts,
			Body:    b.body(path, now().Year(), sections),
		},
		Sections: sections,
		Scope:    scope,
	}, nil
}

func source[T any](b *Builder, src section.Source[T], fail map[string]bool) section.Source[T] {
	if b.LatencyScale > 0 {
		src.MinDelay = time.Duration(float64(src.MinDelay) * b.LatencyScale)
		src.MaxDelay = time.Duration(float64(src.MaxDelay) * b.LatencyScale)
	}
	if fail[src.Name] {
		return demodata.Failing(src)
	}
	return src
}

// Placeholder wraps a section's loading state. The client swaps the
// streamed fragment into it by id.
func Placeholder(name string, loading *VNode) *VNode {
	return Div(
		ID("section-"+name),
		Class("section__content"),
		Data("region", name),
		Data("state", "pending"),
		AriaBusy(true),
		loading,
	)
}

func (b *Builder) body(path string, year int, sections []section.Section) *VNode {
	frames := make(map[string]*VNode, len(sections))
	for _, s := range sections {
		frames[s.Name] = SectionFrame(s.Title, "", "", s.Placeholder)
	}

	return Div(ID("root"),
		SiteHeader(path),
		Main(Class("main"),
			Hero(),
			frames[SectionStats],
			frames[SectionProducts],
			b.widgets(),
			frames[SectionReviews],
		),
		SiteFooter(year),
		b.slot(federation.ChatWidget, federation.ChatProps{Theme: federation.ThemeDark},
			Class("federated-widget", "federated-widget--floating")),
		StreamingIndicator(),
	)
}

func (b *Builder) slot(name string, props any, attrs ...Attr) *VNode {
	if b.Widgets == nil {
		return federation.ErrorBox(name, federation.ErrWidgetNotFound)
	}
	return federation.Slot(b.Widgets, name, props, attrs...)
}

func (b *Builder) widgets() *VNode {
	card := func(title string, slot *VNode) *VNode {
		return Div(Class("widget-card", "widget-card--federated"),
			Div(Class("widget-card__header"),
				Span(Class("widget-card__title"), title),
				Span(Class("widget-card__badge", "widget-card__badge--federated"), "Federated"),
			),
			Div(Class("widget-card__content"), slot),
		)
	}

	return SectionFrame("⚡ Federated Components", "Module Federation",
		"Widgets built and deployed separately, mounted on the client with server-provided props.",
		Div(Class("widgets-section"),
			card("📈 Analytics Widget", b.slot(federation.AnalyticsWidget, federation.AnalyticsProps{
				Title:       "🎯 Custom Analytics",
				ShowRefresh: true,
				Theme:       federation.ThemeDark,
			})),
			card("🔔 Notifications Widget", b.slot(federation.NotificationWidget, federation.NotificationProps{
				Title:        "📬 Custom Notifications",
				MaxItems:     4,
				ShowClearAll: true,
				Theme:        federation.ThemeDark,
			})),
			card("💬 Chat Widget", b.slot(federation.ChatWidget, federation.ChatProps{
				BotName:     "Chatbot",
				BotIcon:     "🤖",
				Placeholder: "Ask me anything...",
			})),
		),
	)
}
