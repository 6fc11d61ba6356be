package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eventkeeper/internal/app/server/config"
)

// MockMigrator is a mock for the Migrator interface
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		DB: config.DB{DatabaseURI: "postgres://localhost/events", Migrations: "migrations"},
	}
}

func TestMigration_Up(t *testing.T) {
	tests := []struct {
		name     string
		upErr    error
		srcErr   error
		dbErr    error
		wantErr  bool
		contains string
	}{
		{name: "applies migrations"},
		{name: "no change is not an error", upErr: migrate.ErrNoChange},
		{name: "up failure", upErr: errors.New("dirty database"), wantErr: true, contains: "dirty database"},
		{name: "close failure is reported", srcErr: errors.New("source closed twice"), wantErr: true, contains: "source closed twice"},
		{name: "both failures are kept", upErr: errors.New("syntax error"), dbErr: errors.New("conn reset"), wantErr: true, contains: "conn reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockM := new(MockMigrator)
			mockM.On("Up").Return(tt.upErr)
			mockM.On("Close").Return(tt.srcErr, tt.dbErr)

			var gotSource, gotDB string
			engine := func(source, db string) (Migrator, error) {
				gotSource, gotDB = source, db
				return mockM, nil
			}

			err := NewMigration(testConfig(), engine).Up()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.contains)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "file://migrations", gotSource)
			assert.Equal(t, "postgres://localhost/events", gotDB)
			mockM.AssertExpectations(t)
		})
	}
}

func TestMigration_Up_EngineError(t *testing.T) {
	engine := func(source, db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration(testConfig(), engine).Up()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "engine crash")
}
