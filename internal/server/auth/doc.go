// Package auth provides HTTP API key authentication middleware for the
// evaluation server. Authentication is optional: when the configured mode is
// not "apikey" or no key is set, the middleware passes every request through.
package auth
