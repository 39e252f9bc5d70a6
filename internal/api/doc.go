// Package api is the HTTP client for the portal API.
//
// Requests carry the session as "access" and "refresh" cookies, which are
// read from and written back to the device store on every call. GET
// requests are retried on connection errors and 5xx/429 answers; every
// other method is sent exactly once so a create or delete is never
// repeated.
//
// Any non-2xx answer becomes a *BadResponseError whose message comes from
// the Works-Error-Message header, so it can be shown to the user as is.
package api
