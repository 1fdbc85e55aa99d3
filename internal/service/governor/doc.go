// Package governor raises the immediate, out-of-band alerts (low power and
// continuous activity) and rate-limits each of them with its own cooldown.
package governor
