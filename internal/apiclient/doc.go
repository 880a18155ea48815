// Package apiclient is the single request pipeline to the bearound REST API.
//
// # Overview
//
// A Client is built once with its collaborators:
//
//   - TokenSource supplies the bearer token and can expire the session
//   - Notifier shows user-facing notices
//   - Navigator knows whether the caller sits on the login view and can
//     send it there
//
// Every request carries Authorization (when a token exists), a JSON
// content type, and an X-Request-ID. Responses use the envelope
//
//	{"success": true, "data": ..., "message": "...", "errors": [...]}
//
// # Failure Policy
//
// After each failed call the client classifies the error and reports it:
//
//	401  expire the session, redirect to login, "Session expired..."
//	403  "You do not have permission to perform this action"
//	5xx  "Server error. Please try again later."
//	400  joined field errors, else message, else "An error occurred"
//	net  "Network error. Please check your connection."
//	???  "An unexpected error occurred"
//
// On the login view the 401 and 400 branches are skipped so the login form
// can show its own message. Reporting is a side effect only: the original
// *ResponseError or *TransportError is always returned. Nothing is retried.
package apiclient
