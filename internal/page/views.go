package page

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/streamssr/streamssr/internal/demodata"
	. "github.com/streamssr/streamssr/internal/vdom"
)

// StatsView renders resolved stats.
func StatsView(stats []demodata.Stat) *VNode {
	cards := make([]*VNode, len(stats))
	for i, s := range stats {
		trend := ""
		switch s.Trend {
		case demodata.TrendUp:
			trend = "stat-card__change--positive"
		case demodata.TrendDown:
			trend = "stat-card__change--negative"
		}

		cards[i] = Div(Key(s.ID), Class("stat-card"), delay(i, 75),
			Div(Class("stat-card__icon"), s.Icon),
			Div(Class("stat-card__content"),
				Span(Class("stat-card__value"), s.Value),
				Span(Class("stat-card__label"), s.Label),
			),
			Span(Class("stat-card__change", trend), s.Change),
		)
	}
	return Div(Class("stats-grid"), cards)
}

// ProductsView renders resolved products.
func ProductsView(products []demodata.Product) *VNode {
	cards := make([]*VNode, len(products))
	for i, p := range products {
		cards[i] = Article(Key(strconv.Itoa(p.ID)), Class("card", "product-card"), delay(i, 50),
			Div(Class("product-card__image"),
				Span(Class("product-card__emoji"), p.Image),
			),
			Div(Class("product-card__content"),
				Span(Class("product-card__category"), p.Category),
				H3(Class("product-card__title"), p.Name),
				P(Class("product-card__description"), p.Description),
				Div(Class("product-card__footer"),
					Span(Class("product-card__price"), "$"+strconv.Itoa(p.Price)),
					Span(Class("product-card__rating"), "⭐ "+strconv.FormatFloat(p.Rating, 'f', -1, 64)),
				),
				Button(Class("btn", "btn--primary", "product-card__btn"), Type("button"),
					Data("action", "add-to-cart"), Data("product", strconv.Itoa(p.ID)),
					"Add to Cart"),
			),
		)
	}
	return Div(Class("grid"), cards)
}

// ReviewsView renders resolved reviews.
func ReviewsView(reviews []demodata.Review) *VNode {
	cards := make([]*VNode, len(reviews))
	for i, r := range reviews {
		cards[i] = Article(Key(strconv.Itoa(r.ID)), Class("card", "review-card"), delay(i, 100),
			Div(Class("review-card__header"),
				Div(Class("review-card__author"),
					Span(Class("review-card__avatar"), r.Avatar),
					Div(Class("review-card__author-info"),
						Span(Class("review-card__name"), r.Author),
						El("time", Class("review-card__date"), AttrOf("datetime", r.Date.Format("2006-01-02")),
							r.Date.Format("January 2, 2006")),
					),
				),
				Div(Class("review-card__rating"), AriaLabel(fmt.Sprintf("%d out of 5 stars", r.Rating)),
					Span(Class("review-card__stars"), strings.Repeat("⭐", r.Rating)),
				),
			),
			P(Class("review-card__content"), r.Content),
			Div(Class("review-card__footer"),
				Button(Class("review-card__helpful"), Type("button"), Data("action", "helpful"),
					fmt.Sprintf("👍 Helpful (%d)", r.Helpful)),
				Button(Class("review-card__report"), Type("button"), Data("action", "report"), "Report"),
			),
		)
	}
	return Div(Class("reviews-list"), cards)
}
