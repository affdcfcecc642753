package config

const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetStoreDSN() string
}

type Store struct {
	src source
}

var _ StoreConfig = Store{}

func (s Store) GetStoreDriver() string {
	return s.src.get("STORE_DRIVER", StoreDriverSQLite)
}

func (s Store) GetStoreDSN() string {
	return s.src.get("STORE_DSN", "file:lia.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
}
