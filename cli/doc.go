// Package cli implements the tpi command line.
//
// Every command loads Config (flags, TPI_* environment, config file,
// defaults), builds one httpclient.Client, one api.Target and one
// auth.Authenticator, and sends its BMC requests through request.Request.
// A response that is still 401 after the authenticated retry removes the
// cached token so the next run logs in again.
package cli
