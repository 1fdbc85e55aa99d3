// Package sink implements the outbound notification transports.
//
// A Sink accepts a plain-text payload and reports success or failure; it never
// retries. The webhook sink posts {"message": ...} with a bearer credential,
// the Discord sink posts to a Discord webhook and the log sink only logs.
package sink
