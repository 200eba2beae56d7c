// Package federation registers the remotely built widgets a page may embed
// and renders the server side of each: a placeholder slot the client
// runtime mounts the widget into.
//
// Widgets are resolved through an explicit Registry populated at startup,
// so an unknown name is an ordinary, typed error rather than a failed
// dynamic import. A slot carries everything the client needs:
//
//	<div class="federated-widget" data-widget="AnalyticsWidget"
//	     data-module="http://localhost:3001/assets/remoteEntry.js"
//	     data-props="{&quot;title&quot;:&quot;Custom Analytics&quot;}">
//
// Failures stay inside the slot: a miss renders an inline error in place of
// that widget and nothing else on the page is affected.
package federation
