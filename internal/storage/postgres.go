package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// OpenPostgres opens (and migrates) a Postgres-backed repository.
func OpenPostgres(dsn string) (*SQLRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runPostgresMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: dialectPostgres}, nil
}
