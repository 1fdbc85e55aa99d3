// Package monitor drives the sampling loop.
//
// Every tick the monitor flushes the event queue when the batch interval has
// elapsed, samples the signals that are due, lets the detector and the
// governor update the StateRecord, and persists it. A single goroutine owns
// the StateRecord; nothing else mutates it while the loop runs.
//
// The state and queue files are not locked: only one monitor may run against
// the same files at a time.
package monitor
