// Package handler implements the exporter's JSON and text endpoints.
package handler
