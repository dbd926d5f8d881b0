// Package main hosts the asepack CLI entrypoint and command graph.
//
// The Cobra-based command tree wires the sprite pipeline together for batch
// use: pack runs sprite sets through decode, extraction, packing, and
// materialization and writes atlas sheets, while list and show render what
// the catalog recorded. It centralizes configuration resolution and logging
// setup so subcommands stay small.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
