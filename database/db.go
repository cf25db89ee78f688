package database

import (
	"database/sql"
	"log"
	"math/big"
	"sync"

	"github.com/coopledger/coopledger/cache"
	"github.com/coopledger/coopledger/config"
	"github.com/coopledger/coopledger/internal/apierror"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		accountCache, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("cache initialization error, continuing without cache: %v", errCache)
		}
		instance = &Datasource{Conn: con, Cache: accountCache}
	})
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Database connection was not initialized", nil)
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	return db, nil
}

// scanBigInt converts a NUMERIC column value, returned by the driver as a
// string, into a *big.Int.
func scanBigInt(src string) (*big.Int, error) {
	if src == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(src, 10)
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to parse numeric column", src)
	}
	return value, nil
}
