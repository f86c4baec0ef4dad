// Package integration holds end-to-end tests that run complete obfuscations
// against every asset store implementation.
//
// # Test Coverage
//
// The tests check that:
//
//  1. The same subject, configuration and token sequence produce identical
//     output documents on memstore, fsstore and redisstore.
//  2. Output written to fsstore survives reopening the directory, and output
//     written to redisstore is visible to a second client sharing the library.
//  3. Clearing a run removes its folder on every store while the sources
//     stay intact.
//
// # Running
//
// The Redis tests use an embedded miniredis server and need no setup:
//
//	go test ./integration/...
package integration
