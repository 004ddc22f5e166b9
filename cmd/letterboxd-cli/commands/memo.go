package commands

import (
	"github.com/dgraph-io/badger/v4"
)

// newRuntimeMemo opens the in-memory badger DB diary enrichment memoizes
// per-film runtime lookups in.
func newRuntimeMemo() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return badger.Open(opts)
}
