// Package activity contains the core domain types of the monitor.
//
// It defines the monitored Signals, the immutable Events queued for batch
// delivery, and the StateRecord that remembers the last observed value of every
// signal together with alert cooldowns and the open meeting session.
package activity
