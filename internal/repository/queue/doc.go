// Package queue implements the durable, ordered event queue that accumulates
// events between two batch deliveries.
//
// Two backends are available: a JSON file rewritten on every mutation and a
// SQLite database. Both keep arrival order and evict the oldest events once the
// configured length cap is reached.
package queue
