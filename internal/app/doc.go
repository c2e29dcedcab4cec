// Package app composes the backend into a running application. It wires the
// domain services to a storage backend and manages their lifecycle; business
// rules live in internal/app/services/ and persistence behind the interfaces
// in internal/app/storage/.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # Accounts and streak state
//	│   ├── post/           # Feed posts, comments, likes
//	│   ├── journal/        # Private journal entries
//	│   ├── shelf/          # Book shelf items
//	│   ├── confession/     # Anonymous confession wall
//	│   └── letter/         # Time-capsule letters
//	├── storage/            # Storage contract and adapters
//	│   ├── interfaces.go   # Store interfaces shared by all adapters
//	│   ├── memory/         # Ephemeral adapter with JSON snapshots
//	│   ├── mongodb/        # Document-store adapter
//	│   ├── redisdb/        # Key-value adapter
//	│   └── storagetest/    # Conformance suite every adapter runs
//	├── services/           # Business logic (posts, journal, shelves, ...)
//	├── httpapi/            # Operational HTTP endpoints
//	├── system/             # Service lifecycle management
//	└── metrics/            # Prometheus collectors
//
// The adapters are interchangeable: storage/storagetest pins down the error
// codes, ordering and update semantics they must agree on, and the backend is
// chosen at startup from configuration.
package app
