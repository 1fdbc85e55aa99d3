// Package state implements persistence for the monitor StateRecord.
//
// The FileRepository stores the record as JSON on disk, using epoch-second
// timestamps and null for unset values, and replaces the file atomically.
package state
