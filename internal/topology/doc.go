// Package topology implements the transactional entity model for
// Hearthline Core: dwellings, the hubs installed into them, and the
// devices paired to those hubs.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        topology                             │
//	│                                                             │
//	│  ┌───────────────┐   ┌───────────────┐   ┌──────────────┐   │
//	│  │     Store     │   │      Tx       │   │  Validation  │   │
//	│  │  (store.go)   │──▶│ (tx.go et al) │──▶│(validation.go)│  │
//	│  │               │   │               │   │              │   │
//	│  │ • Begin/WithTx│   │ • operations  │   │ • PIN format │   │
//	│  │ • commit hooks│   │ • typed errors│   │ • ranges     │   │
//	│  └───────────────┘   └───────────────┘   └──────────────┘   │
//	└─────────────────────────────────────────────────────────────┘
//
// All mutations run inside a transaction obtained from Store.Begin (or the
// Store.WithTx convenience wrapper). A transaction either commits with all
// of its operations applied, or rolls back leaving the store exactly as it
// was. Validation failures surface as the package's sentinel errors
// (ErrNotFound, ErrDuplicateName, ...) and never leave partial state.
//
// Relationships are held as identifier references, not owning pointers: a
// Hub optionally references its Dwelling, a Device optionally references
// its Hub. The one true ownership relationship is Lock→PIN; PINs live and
// die with their Lock.
//
// # Usage
//
//	store := topology.NewStore(db.DB)
//	err := store.WithTx(ctx, func(tx *topology.Tx) error {
//	    if _, err := tx.NewDwelling(ctx, "beach-house"); err != nil {
//	        return err
//	    }
//	    if _, err := tx.NewHub(ctx, "hub-01"); err != nil {
//	        return err
//	    }
//	    return tx.InstallHub(ctx, "hub-01", "beach-house")
//	})
//
// # Thread Safety
//
// Transactions are serialized: Begin blocks until the previous transaction
// has committed or rolled back, so no partial interleaving of uncommitted
// effects is ever observable.
package topology
