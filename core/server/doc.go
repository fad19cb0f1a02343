// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application; this package only defines where it
// listens and whether requests must present the API key.
package server
