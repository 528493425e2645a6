// Package config handles configuration loading for capability-hub.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from CAPHUB_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/capability-hub/config.yaml
//  3. ~/.config/capability-hub/config.yaml
//
// Files ending in .toml are decoded as TOML; anything else is YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8000"
//	  read_timeout: "10s"
//	  write_timeout: "10s"
//	  shutdown_timeout: "5s"
//
//	credentials:
//	  path: "practice_leads.json"   # required, relative to the config file
//
//	catalog:
//	  path: ""                      # optional seed file, built-in catalog when empty
//
//	sessions:
//	  backend: "memory"             # memory, sqlite
//	  path: "sessions.db"           # sqlite only
//	  cookie_secure: false
//	  cookie_same_site: ""          # lax, strict, none
//
//	cors:
//	  allowed_origins: ["*"]
//
//	ratelimit:
//	  login_per_minute: 30
//	  login_burst: 10
//	  trust_forwarded_for: false  # key on X-Forwarded-For; only behind a proxy
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
//	telemetry:
//	  otlp_endpoint: ""             # tracing disabled when empty
//	  insecure: false
//	  service_name: "capability-hub"
package config
