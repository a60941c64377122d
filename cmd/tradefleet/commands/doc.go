// Package commands wires the operator-facing CLI: inspecting configured
// accounts, pricing public inventories and deriving confirmation codes.
// Operations that need a live authenticated session (login, send) are driven
// through the library façade by the embedding service, not this CLI.
package commands
