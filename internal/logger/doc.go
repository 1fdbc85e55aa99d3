// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - an optional append-only error log that receives every Error entry,
//   - level parsing and convenience functions (Infof, ErrorKV, etc.).
//
// Services accept a context and extract the logger from it, so every sensor,
// sink and loop stage logs with its own name and fields.
package logger
