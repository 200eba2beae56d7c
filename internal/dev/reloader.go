package dev

import "path/filepath"

// Invalidator drops cached build metadata.
type Invalidator interface {
	Invalidate()
}

// Reloader returns a change callback that invalidates the manifest cache
// when the client build is rewritten and tells browsers to refresh. A
// batch made only of stylesheets refreshes CSS in place.
func Reloader(cache Invalidator, rs *ReloadServer) func([]Change) {
	return func(changes []Change) {
		cssOnly := true
		var css string
		for _, c := range changes {
			switch c.Type {
			case ChangeManifest:
				if cache != nil {
					cache.Invalidate()
				}
				cssOnly = false
			case ChangeCSS:
				css = filepath.Base(c.Path)
			default:
				cssOnly = false
			}
		}
		if cssOnly && css != "" {
			rs.NotifyCSS(css)
			return
		}
		rs.NotifyReload()
	}
}
