// Package notifier formats alerts and event batches and hands them to a sink.
package notifier
