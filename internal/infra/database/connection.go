package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/ligue-crm/internal/infra/config"
)

// NewDBConnection abre a conexão e testa o Ping
func NewDBConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	// 1. Abre o pool (sql.Open só valida a URL)
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}

	// 2. Configura o pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// 3. Ping
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// checkAffected turns a zero-row UPDATE into ErrNotFound
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
