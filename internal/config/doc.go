// Package config defines the monitor settings and provides helpers to load,
// validate, save and watch them in YAML format.
//
// Credentials may also come from a .env file or the environment, which take
// precedence over the YAML file.
package config
