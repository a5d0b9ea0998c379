// Package config provides configuration structures and utilities for corpusfetch.
// It defines the run options populated from command-line flags, the
// per-source profiles read from the .corpusfetch file and the XDG
// directories used for the run history database.
package config
