// Package detector turns fresh sensor readings into queued events.
//
// For every signal it compares the reading with the StateRecord, appends an
// event to the queue when the value really changed, and updates the record so
// the same value is never reported twice.
package detector
