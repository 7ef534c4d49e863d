// Package cmd implements the command-line interface of dProp. It provides
// commands for running shard servers and for working with property listings
// as a client.
//
// The package is organized into several subpackages:
//
//   - prop: Client commands (insert, search, list, update, delete, placement)
//   - serve: Commands for starting and configuring a shard server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dprop -help for a list of all commands.
package cmd
