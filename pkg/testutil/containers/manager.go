//go:build integration

package containers

import (
	"sync"
	"testing"
)

// Manager starts each container once per test binary and hands the same
// instance to every suite.
type Manager struct {
	mu       sync.Mutex
	postgres map[string]*PostgresContainer
	kafka    *KafkaContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{postgres: make(map[string]*PostgresContainer)}
	})
	return manager
}

// GetPostgres returns the shared Postgres container opened with the pgx driver.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	return m.GetPostgresWithDriver(t, "pgx")
}

// GetPostgresWithDriver returns a container whose pool uses driver. Each
// driver gets its own container so suites can truncate independently.
func (m *Manager) GetPostgresWithDriver(t *testing.T, driver string) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.postgres[driver]; ok {
		return c
	}
	c := NewPostgresContainer(t, driver)
	m.postgres[driver] = c
	return c
}

func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kafka == nil {
		m.kafka = NewKafkaContainer(t)
	}
	return m.kafka
}
