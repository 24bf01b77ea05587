// Package sql implements the faucet's claim storage on a relational database
// through gorm. SQLite (pure Go driver) and PostgreSQL are supported.
package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/faucet/internal/faucet"
	"github.com/gabapcia/faucet/internal/pkg/resilience/retry"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnsupportedDriver = errors.New("unsupported sql driver")

// claim is the row model of the claims table. The unique index on address is
// what makes MarkClaimed an atomic insert-if-absent.
type claim struct {
	ID          uint      `gorm:"primaryKey"`
	Address     string    `gorm:"size:42;not null;uniqueIndex"`
	ClaimedAt   time.Time `gorm:"not null"`
	TxReference string    `gorm:"size:80;not null"`
}

func (claim) TableName() string {
	return "claims"
}

type store struct {
	db *gorm.DB
}

// Open connects to the database, applies driver-specific settings and migrates the claims table.
//
// Parameters:
//   - driver: DriverSQLite or DriverPostgres.
//   - dsn: a file path (or ":memory:") for SQLite, a connection string for PostgreSQL.
func Open(ctx context.Context, driver, dsn string) (*store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	var db *gorm.DB
	err := retry.New(retry.WithDelay(200*time.Millisecond)).Execute(ctx, func() (err error) {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		if err := configureSQLite(db); err != nil {
			return nil, err
		}
	}

	if err := db.WithContext(ctx).AutoMigrate(&claim{}); err != nil {
		return nil, err
	}

	return &store{db: db}, nil
}

// configureSQLite pins the pool to one connection, so ":memory:" databases are
// shared and writers never hit SQLITE_BUSY against each other.
func configureSQLite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// HasClaimed counts the rows matching the address.
func (s *store) HasClaimed(ctx context.Context, address string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&claim{}).
		Where("address = ?", address).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
	}

	return n > 0, nil
}

// MarkClaimed inserts the row with ON CONFLICT (address) DO NOTHING.
// Zero affected rows means another record already holds the address.
func (s *store) MarkClaimed(ctx context.Context, address, txReference string) error {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoNothing: true,
		}).
		Create(&claim{
			Address:     address,
			ClaimedAt:   time.Now().UTC(),
			TxReference: txReference,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, res.Error)
	}

	if res.RowsAffected == 0 {
		return faucet.ErrDuplicateClaim
	}

	return nil
}

// ListClaims returns every record ordered by claim time.
func (s *store) ListClaims(ctx context.Context) ([]faucet.ClaimRecord, error) {
	var rows []claim
	err := s.db.WithContext(ctx).
		Order("claimed_at, address").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
	}

	records := make([]faucet.ClaimRecord, len(rows))
	for i, row := range rows {
		records[i] = faucet.ClaimRecord{
			Address:     row.Address,
			ClaimedAt:   row.ClaimedAt.UTC(),
			TxReference: row.TxReference,
		}
	}

	return records, nil
}

var (
	_ faucet.ClaimStorage = new(store)
	_ faucet.ClaimLister  = new(store)
)
