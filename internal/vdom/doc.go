// Package vdom provides the node tree the page is described with.
//
// Pages are plain functions building *VNode trees:
//
//	Section(Class("section"),
//	    H2(Class("section__title"), Text("Live Statistics")),
//	    Div(ID("P:stats"), Data("placeholder", "stats")),
//	)
//
// The tree is rendered to HTML by package render. Nodes carry no event
// handlers; interactive behaviour is attached on the client by the
// activation runtime, keyed by data-* attributes.
package vdom
