// Package config holds the omfamily-cli configuration file
// (~/.omfamily/cli.yaml). Flags and OMFAMILY_* environment variables
// override it.
package config
