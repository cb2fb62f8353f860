// Package command defines the omfamily-cli commands using urfave/cli/v2.
//
// Every command writes to the app's Writer so results can be captured, and
// renders through internal/cli/output in the format chosen by --output.
package command
