// Package session provides the per-request store session. Each in-flight
// GraphQL request owns exactly one session, acquired before execution and
// released on every exit path; resolvers reach it through the request
// context. Query cancellation propagates through the context.
package session

import (
	"context"
	"database/sql"
	"fmt"
)

// Rows abstracts sql.Rows so sessions can wrap cleanup behavior.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// Session is the store capability handed to resolvers: parameterized reads
// and writes bound to one underlying connection.
type Session interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sessionContextKey struct{}

// WithSession stores a session in the request context.
func WithSession(ctx context.Context, s Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext retrieves the request session from context.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(sessionContextKey{}).(Session)
	return s, ok
}

// ConnSession binds a session to one *sql.Conn so that every statement of a
// request sees the same connection state. Release returns the connection to
// the pool; the session is unusable afterwards.
type ConnSession struct {
	conn *sql.Conn
}

// Acquire checks a connection out of the pool for one request.
func Acquire(ctx context.Context, db *sql.DB) (*ConnSession, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &ConnSession{conn: conn}, nil
}

func (s *ConnSession) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if s.conn == nil {
		return nil, sql.ErrConnDone
	}
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *ConnSession) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.conn == nil {
		return nil, sql.ErrConnDone
	}
	return s.conn.ExecContext(ctx, query, args...)
}

// Release returns the underlying connection to the pool. Safe to call more
// than once.
func (s *ConnSession) Release() error {
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	return conn.Close()
}

// DBSession runs every statement directly against a database handle. Used by
// tests and embedded callers that don't need per-request connection pinning.
type DBSession struct {
	db *sql.DB
}

// NewDBSession wraps a database handle as a session.
func NewDBSession(db *sql.DB) *DBSession {
	return &DBSession{db: db}
}

func (s *DBSession) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if s.db == nil {
		return nil, sql.ErrConnDone
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *DBSession) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.db == nil {
		return nil, sql.ErrConnDone
	}
	return s.db.ExecContext(ctx, query, args...)
}
