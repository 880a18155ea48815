// Package devapi is a local stand-in for the bearound admin REST API.
//
// It serves the same envelope ({success, data, message, errors}) and the
// same /api/v1 routes as the real backend from a seeded in-memory data
// set, so the dashboard and CLI can be run and tested without network
// access to production.
//
// # Authentication
//
// POST /api/v1/auth/login checks bcrypt-hashed seed credentials and issues
// an HS256 access token. Every /admin route requires that token and the
// admin role:
//
//   - missing or malformed Authorization header: 401
//   - bad signature or expired token: 401
//   - valid token without the admin role: 403
//
// The seed accounts are SeedAdminEmail (admin) and SeedMemberEmail (a
// regular user, useful for exercising the non-admin login path).
//
// # Data
//
// Mutations change the fixture and append an activity log entry, so a
// resolve or status change is visible on the next read. State is lost when
// the process exits.
package devapi
