// Package guard gates the dashboard's protected pages.
//
// Each request moves Unchecked -> Checking -> Authorized | Unauthorized.
// Authorized needs an authenticated session whose user has the "admin"
// role; anything else is Unauthorized and is redirected to the login page.
//
// The guard is a usability gate. The API authorizes every request by its
// bearer token on its own.
package guard
