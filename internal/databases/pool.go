package databases

import (
	"context"
	"sync"
	"time"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/secrets"
)

// PoolManager reuses open customer-database handles across discovery
// requests, keyed by connection id. Sync runs open their own dedicated
// clients instead, so closing a run never invalidates a pooled handle.
type PoolManager struct {
	mu      sync.Mutex
	clients map[uint]*SQLClient
	secrets *secrets.Manager
}

func NewPoolManager(sec *secrets.Manager) *PoolManager {
	return &PoolManager{
		clients: make(map[uint]*SQLClient),
		secrets: sec,
	}
}

// Get returns the open client for a connection, creating it on first use.
func (m *PoolManager) Get(ctx context.Context, conn *models.DatabaseConnection) (*SQLClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// if exists — reuse
	if c, ok := m.clients[conn.ID]; ok {
		return c, nil
	}

	username, err := m.secrets.Decrypt(conn.Username)
	if err != nil {
		return nil, err
	}
	password, err := m.secrets.Decrypt(conn.Password)
	if err != nil {
		return nil, err
	}

	client, err := Open(ctx, conn.Engine, conn.Host, conn.Port, conn.DatabaseName, username, password, conn.Params)
	if err != nil {
		return nil, err
	}

	// performance: low idle
	client.db.SetMaxOpenConns(3)
	client.db.SetMaxIdleConns(1)
	client.db.SetConnMaxLifetime(30 * time.Minute)
	client.db.SetConnMaxIdleTime(10 * time.Minute)

	m.clients[conn.ID] = client
	return client, nil
}

func (m *PoolManager) CloseConn(connID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[connID]; ok {
		_ = c.Close()
		delete(m.clients, connID)
	}
}

func (m *PoolManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, c := range m.clients {
		_ = c.Close()
		delete(m.clients, id)
	}
}
