package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteOpener() func() (*gorm.DB, error) {
	return func() (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	}
}

func TestConnConnectsLazily(t *testing.T) {
	opens := 0
	m := NewManagerWithOpener(func() (*gorm.DB, error) {
		opens++
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	})
	assert.Equal(t, 0, opens, "no connection before first use")

	db, err := m.Conn(context.Background())
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, 1, opens)
}

func TestConnReusesHealthyHandle(t *testing.T) {
	opens := 0
	m := NewManagerWithOpener(func() (*gorm.DB, error) {
		opens++
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	})

	first, err := m.Conn(context.Background())
	require.NoError(t, err)
	second, err := m.Conn(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, opens)
}

func TestConnReconnectsAfterDrop(t *testing.T) {
	opens := 0
	m := NewManagerWithOpener(func() (*gorm.DB, error) {
		opens++
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	})

	db, err := m.Conn(context.Background())
	require.NoError(t, err)

	// Kill the underlying connection; the next Conn must reopen.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	db2, err := m.Conn(context.Background())
	require.NoError(t, err)
	require.NotNil(t, db2)
	assert.Equal(t, 2, opens)
}

func TestConnSurfacesOpenError(t *testing.T) {
	boom := errors.New("dial failed")
	m := NewManagerWithOpener(func() (*gorm.DB, error) {
		return nil, boom
	})

	_, err := m.Conn(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestConnConcurrentCallers(t *testing.T) {
	m := NewManagerWithOpener(sqliteOpener())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := m.Conn(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, db)
		}()
	}
	wg.Wait()
}
