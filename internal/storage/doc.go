// Package storage implements the path↔document resolution and unified
// traversal engine behind the storage service.
//
// It bridges two incompatible access models: plain filesystem paths and
// provider-backed document trees reachable only through a granted tree
// handle (the Android Storage Access Framework model). The same listing,
// depth-bounded traversal, and filtering semantics apply to both sides.
//
// Components:
//   - Enumerator: discovers native volumes and granted tree roots
//   - Filter: pure predicate over (size, modified, name, mime)
//   - NativeWalker / SafWalker: one-level listing and depth-bounded traversal
//   - Resolver: maps filesystem paths into granted document trees, memoized
//   - Scheduler: single-worker FIFO queue for all engine I/O
//   - Watcher: mount events for the configured volume bases
//
// Expected absences (missing directory, unresolvable tree, uncovered path)
// are empty results or ("", false) options, never errors. The engine never
// fabricates access it does not have.
package storage
