// doc.go — Package documentation for foundational cross-cutting types.

// Package types provides the foundational, low-dependency types shared by
// every Gasoline package: captured API traffic, DOM snapshots, screenshots,
// the diff configs and diff result shapes, and the error taxonomy.
//
// Design Principle: narrow dependencies
// This package imports only the Go standard library (request IDs are
// generated in internal/serializer). It is safe to import from any other package
// without creating circular dependencies. All other packages should import
// from types for canonical type definitions.
//
// Architecture Layer: Foundation
// types is the foundation layer:
//   Layer 1: types (data model)             ← YOU ARE HERE
//   Layer 2: serializer, tap, diffutil       (domain algorithms over types)
//   Layer 3: interceptor, apidiff, domdiff, visualdiff, comparer
//   Layer 4: scenario, player, store, streaming, config (external interfaces)
//   Layer 5: cmd/gasoline-replay (wiring)
//
// This layering ensures dependency flows only downward, preventing circular imports.
package types
