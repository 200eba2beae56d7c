package page

import (
	"fmt"

	. "github.com/streamssr/streamssr/internal/vdom"
)

// SkeletonKind selects a loading placeholder layout.
type SkeletonKind string

const (
	SkeletonGrid  SkeletonKind = "grid"
	SkeletonList  SkeletonKind = "list"
	SkeletonStats SkeletonKind = "stats"
	SkeletonCard  SkeletonKind = "card"
)

// Skeleton renders a placeholder of the given kind. count applies to grid
// and list skeletons and defaults to 3; the stats skeleton always shows 4.
func Skeleton(kind SkeletonKind, count int) *VNode {
	if count <= 0 {
		count = 3
	}

	switch kind {
	case SkeletonGrid:
		return Div(Class("grid"), repeat(count, skeletonCard))
	case SkeletonList:
		return Div(Class("skeleton-list"), repeat(count, skeletonListItem))
	case SkeletonStats:
		return Div(Class("stats-grid"), repeat(4, skeletonStat))
	case SkeletonCard:
		return skeletonCard(0)
	default:
		return nil
	}
}

func repeat(n int, item func(int) *VNode) []*VNode {
	out := make([]*VNode, n)
	for i := range out {
		out[i] = item(i)
	}
	return out
}

func delay(index, step int) Attr {
	return Style(fmt.Sprintf("animation-delay: %dms", index*step))
}

func skeletonCard(i int) *VNode {
	return Div(Class("skeleton", "skeleton--card"), delay(i, 100),
		Div(Class("skeleton__inner"),
			Div(Class("skeleton", "skeleton--image")),
			Div(Class("skeleton__content"),
				Div(Class("skeleton", "skeleton--title-sm")),
				Div(Class("skeleton", "skeleton--text")),
				Div(Class("skeleton", "skeleton--text"), Style("width: 60%")),
			),
		),
	)
}

func skeletonListItem(i int) *VNode {
	return Div(Class("skeleton", "skeleton--list-item"), delay(i, 100),
		Div(Class("skeleton", "skeleton--avatar")),
		Div(Class("skeleton__content"),
			Div(Class("skeleton", "skeleton--text"), Style("width: 40%")),
			Div(Class("skeleton", "skeleton--text")),
			Div(Class("skeleton", "skeleton--text"), Style("width: 80%")),
		),
	)
}

func skeletonStat(i int) *VNode {
	return Div(Class("skeleton", "skeleton--stat"), delay(i, 50),
		Div(Class("skeleton", "skeleton--stat-value")),
		Div(Class("skeleton", "skeleton--stat-label")),
	)
}
