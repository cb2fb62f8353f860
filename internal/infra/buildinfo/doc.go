// Package buildinfo exposes build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/omfamily/internal/infra/buildinfo.Version=v1.0.0"
//
// Register publishes it as the omfamily_build info family.
package buildinfo
