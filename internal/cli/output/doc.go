// Package output renders omfamily-cli results as a table, JSON or YAML.
//
// Table output accepts a *Table directly, any value implementing Tabular,
// or a slice of structs whose exported fields become columns.
package output
