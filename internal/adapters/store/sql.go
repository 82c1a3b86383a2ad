package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/hansgunawan/portfolio/internal/domain/entities"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// SQLStore implements ports.ContactStore on SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore opens the database and creates the schema if needed.
// For sqlite3 the DSN is a file path whose directory is created on demand.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "./data/contacts.db"
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres store requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLStore{db: db, driver: driver}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

// initSchema creates the necessary tables.
func (s *SQLStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contact_messages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	_, err := s.db.Exec(schema)
	return err
}

// bind rewrites ? placeholders for drivers that number them.
func (s *SQLStore) bind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Create inserts a message.
func (s *SQLStore) Create(ctx context.Context, msg entities.ContactMessage) error {
	_, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO contact_messages (id, name, email, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), msg.ID, msg.Name, msg.Email, msg.Message, msg.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting contact message: %w", err)
	}
	return nil
}

// Get looks a message up by id.
func (s *SQLStore) Get(ctx context.Context, id string) (entities.ContactMessage, bool, error) {
	var (
		msg     entities.ContactMessage
		created time.Time
	)
	err := s.db.QueryRowContext(ctx, s.bind(`
		SELECT id, name, email, message, created_at
		FROM contact_messages WHERE id = ?
	`), id).Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ContactMessage{}, false, nil
	}
	if err != nil {
		return entities.ContactMessage{}, false, fmt.Errorf("querying contact message: %w", err)
	}
	msg.CreatedAt = created
	return msg, true, nil
}

// Count returns the number of stored messages.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contact_messages").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
