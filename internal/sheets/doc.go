// Package sheets appends extracted job-application records to a Google
// spreadsheet. It authenticates with a service-account credentials
// bundle (RS256-signed JWT exchanged for an access token), resolves the
// spreadsheet by its configured name through the Drive API, and appends
// fixed-order rows through the Sheets values API.
//
// The credentials bundle is loaded lazily on the first append so a
// missing or malformed bundle surfaces as a configuration error on the
// request that needed it, not as a startup crash.
package sheets
