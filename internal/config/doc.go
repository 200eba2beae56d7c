// Package config provides process configuration for streamssr.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (New)
//  2. An optional YAML file named by STREAMSSR_CONFIG
//  3. Environment variables
//
// # Configuration File Structure
//
//	port: 3000
//	env: production
//	distDir: dist
//	stream:
//	  shellTimeout: 10s
//	  sectionTimeout: 30s
//	widgets:
//	  remote: http://localhost:3001/assets/remoteEntry.js
//	assets:
//	  prefix: /assets/
//	  bucket: my-bucket
//	  keyPrefix: client/assets/
//	  region: eu-west-1
//	telemetry:
//	  namespace: streamssr
//	  trace: stdout
//
// # Environment Variables
//
//	PORT                       listen port (default 3000)
//	ENV / NODE_ENV             "production" enables production mode
//	STREAMSSR_DIST_DIR         build output directory (default "dist")
//	STREAMSSR_SHELL_TIMEOUT    deadline for the shell (default 10s)
//	STREAMSSR_SECTION_TIMEOUT  per-section fetch budget (default 30s)
//	STREAMSSR_WIDGET_REMOTE    federated widget remote entry URL
//	STREAMSSR_ASSETS_BUCKET    serve /assets from this S3 bucket
//	STREAMSSR_ASSETS_PREFIX    key prefix inside the bucket
//	STREAMSSR_ASSETS_REGION    bucket region
//	STREAMSSR_TRACE            "stdout" exports spans to stdout
//	STREAMSSR_FAIL_SECTIONS    comma-separated sections forced to fail
package config
