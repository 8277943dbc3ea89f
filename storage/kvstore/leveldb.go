package kvstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB is a Source persisted in a LevelDB instance. Read transactions
// are backed by LevelDB snapshots, write transactions by native LevelDB
// transactions, which the driver serializes. It is safe for concurrent use.
type LevelDB struct {
	db           *leveldb.DB
	readOptions  opt.ReadOptions
	writeOptions opt.WriteOptions

	lock   sync.Mutex
	closed bool
}

// OpenLevelDB opens (or creates) a LevelDB backed source at the given path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) ReadTxn() (ReadTxn, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	snapshot, err := l.db.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire leveldb snapshot: %w", err)
	}
	return &levelDBReadTxn{snapshot: snapshot, options: &l.readOptions}, nil
}

func (l *LevelDB) WriteTxn() (WriteTxn, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	txn, err := l.db.OpenTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb transaction: %w", err)
	}
	return &levelDBWriteTxn{txn: txn, readOptions: &l.readOptions, writeOptions: &l.writeOptions}, nil
}

func (l *LevelDB) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

func (l *LevelDB) checkOpen() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return ErrClosed
	}
	return nil
}

type levelDBReadTxn struct {
	snapshot *leveldb.Snapshot
	options  *opt.ReadOptions
}

func (t *levelDBReadTxn) Get(key []byte) ([]byte, error) {
	data, err := t.snapshot.Get(key, t.options)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (t *levelDBReadTxn) Release() {
	t.snapshot.Release()
}

type levelDBWriteTxn struct {
	txn          *leveldb.Transaction
	readOptions  *opt.ReadOptions
	writeOptions *opt.WriteOptions
}

func (t *levelDBWriteTxn) Get(key []byte) ([]byte, error) {
	data, err := t.txn.Get(key, t.readOptions)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (t *levelDBWriteTxn) Put(key, value []byte) error {
	return t.txn.Put(key, value, t.writeOptions)
}

func (t *levelDBWriteTxn) Delete(key []byte) error {
	return t.txn.Delete(key, t.writeOptions)
}

func (t *levelDBWriteTxn) Commit() error {
	return t.txn.Commit()
}

func (t *levelDBWriteTxn) Discard() {
	t.txn.Discard()
}
