// Package config handles configuration loading for the bearound admin binaries.
//
// # Configuration File
//
// The web dashboard reads YAML. Default locations (in order):
//
//  1. Path from BEAROUND_ADMIN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/bearound/admin-web.yaml
//  3. ~/.config/bearound/admin-web.yaml
//
// A missing file is fine; every field has a default.
//
// # Environment Variables
//
// Values can reference environment variables with ${VAR_NAME}. After the file
// is parsed these variables override it when set:
//
//	BEAROUND_API_URL     api.url (falls back to NEXT_PUBLIC_API_URL)
//	BEAROUND_HTTP_ADDR   server.http_addr
//	BEAROUND_DB_PATH     database.path
//	BEAROUND_LOG_LEVEL   logging.level
//
// # Sections
//
//	server:
//	  http_addr: "127.0.0.1:3000"
//
//	database:
//	  path: "/var/lib/bearound/admin.db"   # sessions and notices
//
//	api:
//	  url: "http://localhost:5001/api/v1"
//	  timeout: "15s"                         # empty means no timeout
//
//	webadmin:
//	  stale_time: "30s"
//	  cache_size: 1000
//	  session_ttl: "168h"
//	  secure_cookies: false
//
//	tailscale:
//	  enabled: false
//	  hostname: "bearound-admin"
//	  auth_key: "${TS_AUTHKEY}"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # CLI
//
// bearound-admin reads admin.toml from the same directory:
//
//	api_url = "http://localhost:5001/api/v1"
//	timeout = "10s"
//	log_level = "warn"
package config
