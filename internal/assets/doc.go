// Package assets reads the client bundler's manifest and serves the built
// client assets.
//
// The bundler writes a manifest keyed by source path:
//
//	{
//	  "src/client/entry-client.tsx": {
//	    "file": "assets/entry-client-4f2a.js",
//	    "src": "src/client/entry-client.tsx",
//	    "isEntry": true,
//	    "css": ["assets/entry-client-91bc.css"],
//	    "imports": ["_vendor-77de.js"]
//	  },
//	  "_vendor-77de.js": {"file": "assets/vendor-77de.js"}
//	}
//
// Store loads it once per process and turns the entry into head tags.
// When no manifest exists the tags fall back to the unbundled entry module,
// which is what a development server expects.
//
// Asset bytes come from an Origin: the local dist directory or an S3 bucket.
package assets
