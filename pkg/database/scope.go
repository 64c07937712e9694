package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Scope pins one pooled connection for the duration of a ledger operation,
// so a read-existing/compare-or-insert sequence observes its own writes.
type Scope struct {
	Conn *pgxpool.Conn
}

// Close releases the connection back to the pool.
// This MUST be called when the scope is no longer needed.
func (s *Scope) Close() {
	if s.Conn == nil {
		return
	}
	s.Conn.Release()
}

// AcquireScope acquires a connection from the pool for one execution context.
// The returned Scope MUST be closed with defer scope.Close().
func (db *DB) AcquireScope(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Scope{Conn: conn}, nil
}
