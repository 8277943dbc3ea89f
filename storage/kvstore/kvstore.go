// Package kvstore provides the transactional key-value sources backing the
// global state: a LevelDB implementation for production and an in-memory
// implementation for tests.
//
// Sources follow a single-writer / many-reader model. Read transactions are
// consistent snapshots and can be held concurrently, write transactions are
// serialized by the backend.
package kvstore

import (
	"github.com/meridian-network/meridian/common"
)

const (
	// ErrNotFound is reported when a key holds no data.
	ErrNotFound = common.ConstError("key not found")
	// ErrClosed is reported when a source is used after Close.
	ErrClosed = common.ConstError("source already closed")
)

// Reader provides read access to key-value data.
type Reader interface {
	// Get retrieves the data stored under the key, or ErrNotFound.
	Get(key []byte) ([]byte, error)
}

// Writer extends read access with mutations.
type Writer interface {
	Reader
	Put(key, value []byte) error
	Delete(key []byte) error
}

// ReadTxn is a consistent point-in-time view of a source.
type ReadTxn interface {
	Reader
	// Release frees the resources held by the view.
	Release()
}

// WriteTxn is a read-write transaction. Mutations become visible to other
// transactions only after Commit.
type WriteTxn interface {
	Writer
	Commit() error
	// Discard drops all pending mutations. Calling it after Commit is a
	// no-op.
	Discard()
}

// Source is a transactional key-value store.
type Source interface {
	ReadTxn() (ReadTxn, error)
	WriteTxn() (WriteTxn, error)
	Close() error
}
