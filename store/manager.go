package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Manager owns the single shared database handle. There is no background
// keep-alive: every caller goes through Conn, which pings the current handle
// and lazily reopens it after a detected drop. A caller arriving while a
// reconnect is in flight simply waits for it to finish.
type Manager struct {
	mu   sync.Mutex
	db   *gorm.DB
	open func() (*gorm.DB, error)
}

// NewManager builds a manager for a MySQL DSN. No connection is made until
// the first Conn call.
func NewManager(dsn string) *Manager {
	return &Manager{
		open: func() (*gorm.DB, error) {
			db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
			if err != nil {
				return nil, err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			// Pool tuning; the lifetime cap keeps handles from outliving
			// MySQL's wait_timeout.
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetMaxOpenConns(100)
			sqlDB.SetConnMaxLifetime(time.Hour)
			return db, nil
		},
	}
}

// NewManagerWithOpener builds a manager around a custom opener. Tests use
// this to run against an in-memory database.
func NewManagerWithOpener(open func() (*gorm.DB, error)) *Manager {
	return &Manager{open: open}
}

// Conn returns a live handle, reconnecting first if the current one is dead
// or was never established.
func (m *Manager) Conn(ctx context.Context) (*gorm.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil && sqlDB.PingContext(ctx) == nil {
			return m.db, nil
		}
		log.Println("Database connection lost, reconnecting...")
	}

	db, err := m.open()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db
	log.Println("Database connected")
	return m.db, nil
}
