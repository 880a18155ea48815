// Package adminapi is the typed catalog of bearound admin endpoints.
//
// Each method is one call through an apiclient.Doer. It builds the fixed
// method, path and parameter shape, then decodes the envelope data into a
// model. Client errors come back unchanged, so apiclient.Classify and
// errors.As keep working on them. There is no caching, retrying, or
// business logic here.
//
// Models decode leniently: unknown fields are ignored, references to users
// may arrive as an id string or a populated object, and list payloads may
// be a bare array or {"data": [...], "pagination": {...}}.
package adminapi
