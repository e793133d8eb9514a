// Package store provides SQLite persistence for the orders collection and
// serves it as a paginated, sortable, filterable fetch.Source.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Order is one row of the orders collection.
type Order struct {
	ID       int64
	Customer string
	Status   string
	Amount   float64
	Created  time.Time
}

// Statuses are the order states, in lifecycle order.
var Statuses = []string{"pending", "paid", "shipped", "refunded", "cancelled"}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := New(db)
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// New wraps an already-open database. The schema is assumed to exist.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		customer TEXT NOT NULL,
		status TEXT NOT NULL,
		amount REAL NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveOrders stores orders, returning count of new orders inserted.
// Existing IDs are silently ignored via INSERT OR IGNORE.
// Thread-safe: acquires write lock.
func (s *Store) SaveOrders(orders []Order) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(orders) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO orders (id, customer, status, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	newCount := 0
	for _, o := range orders {
		result, err := stmt.Exec(o.ID, o.Customer, o.Status, o.Amount, o.Created.UTC())
		if err != nil {
			return 0, fmt.Errorf("insert order %d: %w", o.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		if affected > 0 {
			newCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return newCount, nil
}

// Count returns the number of stored orders.
// Thread-safe: acquires read lock.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

var seedCustomers = []string{
	"Ada Lovelace", "Grace Hopper", "Alan Turing", "Edsger Dijkstra",
	"Barbara Liskov", "Donald Knuth", "Margaret Hamilton", "Ken Thompson",
	"Frances Allen", "Niklaus Wirth", "Radia Perlman", "John McCarthy",
}

// SeedOrders builds n deterministic demo orders starting at id 1.
func SeedOrders(n int, start time.Time) []Order {
	orders := make([]Order, n)
	for i := range orders {
		orders[i] = Order{
			ID:       int64(i + 1),
			Customer: seedCustomers[(i*7)%len(seedCustomers)],
			Status:   Statuses[(i*3)%len(Statuses)],
			Amount:   float64((i*7919)%500000) / 100,
			Created:  start.Add(time.Duration(i) * 90 * time.Minute),
		}
	}
	return orders
}
