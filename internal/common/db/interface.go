package db

import "context"

// Database defines the unified interface for relational database access.
// This abstraction allows switching drivers (MySQL, PostgreSQL) without
// touching repository code.
type Database interface {
	Querier

	// Transaction executes a function within a database transaction
	Transaction(ctx context.Context, fn func(tx Transaction) error) error

	// Ping verifies a connection to the database is still alive
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error
}

// Querier abstracts database operations shared by database and transaction.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
}

// Transaction represents an in-flight database transaction.
type Transaction interface {
	Querier

	Commit() error
	Rollback() error
}

// Rows is the result of a query returning multiple rows.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Row is the result of a query returning at most one row.
type Row interface {
	Scan(dest ...interface{}) error
}

// Result summarizes an executed statement.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}
