package ports

//go:generate go run go.uber.org/mock/mockgen -source=result_database.go -destination=mocks/result_database_mock.go -package=mocks

// ResultDatabase is the opaque key/value store the engine persists build
// values to, parameterized by a schema version equal to the host delegate's
// version. A schema mismatch on open re-initializes the database rather than
// migrating it (no auto-upgrade across schema versions).
type ResultDatabase interface {
	// Get returns the stored bytes for key, or ok=false if absent.
	Get(key []byte) (value []byte, ok bool, err error)
	Put(key, value []byte) error
	Close() error
}
