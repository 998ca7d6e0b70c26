// Package app wires application dependencies for the CLI.
//
// It loads Config from <home>/config.yaml, then builds the device store,
// key manager, registry client and high-level services from it, exposing
// them via the Wire struct for commands to use.
package app
