// Package sensor wraps the host probes behind a uniform sampling contract.
//
// Every probe returns a value or an error; the Adapter bounds each call with a
// timeout, recovers from panics, logs failures at debug level and reports them
// as an absent Reading. A failure in one probe never blocks the others.
package sensor
