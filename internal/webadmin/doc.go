// Package webadmin serves the bearound moderation dashboard.
//
// # Overview
//
// The dashboard is server-rendered. Each page fetches from the remote admin
// API through one shared apiclient.Client and renders html/template pages
// embedded in the binary:
//
//   - Dashboard: headline stats, pending reports, new feedback
//   - Users, Reports, Blocks, Feedback: filtered lists with detail pages
//   - Analytics and Activity Logs: read-only views
//   - Feature Flags, App Limits, Premium, Content, Settings: editable config
//
// # Sessions
//
// A browser is identified by a random cookie (BrowserCookieName). The admin
// session for that browser lives in the KV store under its id and is
// rehydrated on every request. Login issues a fresh browser id. Only users
// with the admin role get a session at all.
//
// The API client does not know about browsers. Its token source, notifier
// and navigator look up the request's page state from the context:
//
//   - a 401 clears the browser's session and its cached queries, then the
//     page answers with a 303 to /login
//   - other failures become notices shown on the next rendered page
//
// Notices survive redirects by being queued in the KV store.
//
// # Caching
//
// Reads go through querycache, keyed by browser id and query. A mutation
// invalidates the affected query prefixes for every browser.
//
// # CSRF Protection
//
// All form submissions require CSRF tokens:
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// Logout is the one form that proceeds with a bad token.
//
// # Usage
//
//	admin, err := webadmin.New(kv, webadmin.Config{APIURL: cfg.API.URL})
//	if err != nil { ... }
//	defer admin.Close()
//	admin.RegisterRoutes(mux)
package webadmin
