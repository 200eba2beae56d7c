package page

import (
	"strconv"

	. "github.com/streamssr/streamssr/internal/vdom"
)

// NavLink is an entry of the main navigation.
type NavLink struct {
	Href  string
	Label string
}

// NavLinks is the main navigation, in display order.
var NavLinks = []NavLink{
	{Href: "/", Label: "Home"},
	{Href: "/products", Label: "Products"},
	{Href: "/about", Label: "About"},
	{Href: "/contact", Label: "Contact"},
}

// SiteHeader renders the sticky header, marking the link for currentPath
// as active.
func SiteHeader(currentPath string) *VNode {
	links := make([]*VNode, 0, len(NavLinks))
	for _, link := range NavLinks {
		active := link.Href == currentPath
		var current Attr
		if active {
			current = AriaCurrent("page")
		}
		links = append(links, A(
			Key(link.Href),
			Href(link.Href),
			Class("nav__link", activeClass(active, "nav__link--active")),
			current,
			link.Label,
		))
	}

	return Header(Class("header"),
		Div(Class("header__inner"),
			A(Href("/"), Class("header__logo"), "StreamSSR"),
			Nav(Class("nav"), Role("navigation"), AriaLabel("Main navigation"), links),
			Div(Class("header__actions"),
				Button(Class("btn", "btn--primary"), Type("button"), "Get Started"),
			),
		),
	)
}

func activeClass(active bool, class string) string {
	if active {
		return class
	}
	return ""
}

// Hero renders the introductory banner.
func Hero() *VNode {
	feature := func(icon, text string) *VNode {
		return Div(Class("hero__feature"),
			Span(Class("hero__feature-icon"), icon),
			Span(Class("hero__feature-text"), text),
		)
	}

	return Section(Class("hero"),
		Div(Class("hero__badge"), "⚡ Go Streaming SSR"),
		H1(Class("hero__title"),
			"Progressive Rendering",
			Br(),
			Span(Class("hero__title-accent"), "At Lightning Speed"),
		),
		P(Class("hero__subtitle"),
			"Experience the future of web rendering. Static shell loads instantly, "+
				"while dynamic content streams in progressively. No loading spinners, "+
				"just smooth, progressive enhancement.",
		),
		Div(Class("hero__cta"),
			Button(Class("btn", "btn--primary", "btn--lg"), Type("button"), "Explore Demo"),
			Button(Class("btn", "btn--secondary", "btn--lg"), Type("button"), "Learn More"),
		),
		Div(Class("hero__features"),
			feature("🎯", "Instant FCP"),
			feature("🌊", "Streaming SSR"),
			feature("💧", "Selective Activation"),
		),
	)
}

// HeroSkeleton is the hero placeholder used by the static shell.
func HeroSkeleton() *VNode {
	return Section(Class("hero"),
		Div(Class("skeleton", "skeleton--title"), Style("margin: 0 auto 1rem;")),
		Div(Class("skeleton", "skeleton--text"), Style("width: 80%; margin: 0 auto;")),
	)
}

// SiteFooter renders the footer with the given copyright year.
func SiteFooter(year int) *VNode {
	return Footer(Class("footer"),
		Div(Class("footer__inner"),
			Div(Class("footer__brand"),
				Span(Class("footer__logo"), "StreamSSR"),
				Span(Class("footer__text"),
					"© "+strconv.Itoa(year)+" StreamSSR. Built with Go streaming SSR."),
			),
			Div(Class("footer__links"),
				A(Href("/privacy"), Class("footer__link"), "Privacy"),
				A(Href("/terms"), Class("footer__link"), "Terms"),
				A(Href("https://github.com"), Class("footer__link"), Target("_blank"), Rel("noopener noreferrer"), "GitHub"),
			),
		),
	)
}

// StreamingIndicator is shown until the client sees the document close.
func StreamingIndicator() *VNode {
	return Div(Class("streaming-indicator"), ID("streaming-indicator"), Role("status"), AriaLive("polite"),
		Span(Class("streaming-indicator__dot")),
		Span("Streaming content..."),
	)
}

// SectionFrame wraps section content with its heading. badge and
// description are optional.
func SectionFrame(title, badge, description string, content ...*VNode) *VNode {
	header := Div(Class("section__header"), H2(Class("section__title"), title))
	if badge != "" {
		header.Children = append(header.Children, Span(Class("section__badge", "section__badge--fed"), badge))
	}

	var desc *VNode
	if description != "" {
		desc = P(Class("section__description"), description)
	}

	return Section(Class("section"), header, desc, content)
}
