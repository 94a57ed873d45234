package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sessiond/internal/config"
	"sessiond/internal/logger"
	"sessiond/internal/repository/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" //used for migrations
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" //postgres driver
)

const recordColumns = `
	t.id, t.access_value, t.user_email, t.deactivated, t.expired, t.created_at,
	r.id, r.token_id, r.value, r.expiration_status, r.created_at, r.expires_at`

type tokenRepo struct {
	db  *sqlx.DB
	l   logger.Logger
	cfg config.DatabaseConfig
}

// NewTokenRepository opens a postgres-backed token store.
func NewTokenRepository(cfg config.DatabaseConfig, l logger.Logger) (models.TokenRepository, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %v", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("could not establish db connection: %v", err)
	}

	return &tokenRepo{db: db, l: l, cfg: cfg}, nil
}

func (r *tokenRepo) Close() error {
	return r.db.Close()
}

func (r *tokenRepo) RunMigrations(migrationsPath string) error {
	driver, err := postgres.WithInstance(r.db.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres", driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// Create persists a TokenRecord together with its RefreshRecord in one
// transaction, so a session is never observable without its rotation key.
func (r *tokenRepo) Create(ctx context.Context, record *models.TokenRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.l.Error("Failed to begin transaction", logger.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPair(ctx, tx, record); err != nil {
		r.l.Error("Failed to insert token pair", logger.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		r.l.Error("Failed to commit token pair insert", logger.Error(err))
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.l.Info("Token record created",
		logger.Int64("id", record.ID),
		logger.String("user_email", record.UserEmail))
	return nil
}

func (r *tokenRepo) GetActiveByAccessValue(ctx context.Context, accessValue string) (*models.TokenRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM token_records t
		JOIN refresh_records r ON r.token_id = t.id
		WHERE t.access_value = $1 AND t.deactivated = false AND t.expired = false`

	return r.getRecord(ctx, query, accessValue)
}

func (r *tokenRepo) GetActiveByUserEmail(ctx context.Context, userEmail string) (*models.TokenRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM token_records t
		JOIN refresh_records r ON r.token_id = t.id
		WHERE t.user_email = $1 AND t.deactivated = false AND t.expired = false
		ORDER BY t.created_at DESC
		LIMIT 1`

	return r.getRecord(ctx, query, userEmail)
}

func (r *tokenRepo) GetByRefreshValue(ctx context.Context, refreshValue string) (*models.TokenRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM token_records t
		JOIN refresh_records r ON r.token_id = t.id
		WHERE r.value = $1`

	return r.getRecord(ctx, query, refreshValue)
}

func (r *tokenRepo) DeactivateAllByUserEmail(ctx context.Context, userEmail string) ([]string, error) {
	displaced, err := deactivateAll(ctx, r.db, userEmail)
	if err != nil {
		r.l.Error("Failed to deactivate tokens",
			logger.String("user_email", userEmail),
			logger.Error(err))
		return nil, err
	}
	return displaced, nil
}

// ReplaceForUser tombstones every record the user owns and inserts the new
// pair inside one transaction. A concurrent reader either sees the old active
// session or the new one, never both and never neither.
func (r *tokenRepo) ReplaceForUser(ctx context.Context, record *models.TokenRecord) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.l.Error("Failed to begin transaction", logger.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	displaced, err := deactivateAll(ctx, tx, record.UserEmail)
	if err != nil {
		r.l.Error("Failed to deactivate prior tokens", logger.Error(err))
		return nil, err
	}

	if err := insertPair(ctx, tx, record); err != nil {
		r.l.Error("Failed to insert replacement token pair", logger.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		r.l.Error("Failed to commit session replacement", logger.Error(err))
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	r.l.Info("Session replaced",
		logger.String("user_email", record.UserEmail),
		logger.Int("displaced", len(displaced)))
	return displaced, nil
}

func (r *tokenRepo) Deactivate(ctx context.Context, tokenID int64) error {
	query := `
		UPDATE token_records
		SET deactivated = true, expired = true
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, tokenID)
	if err != nil {
		r.l.Error("Failed to deactivate token", logger.Error(err), logger.Int64("token_id", tokenID))
		return fmt.Errorf("failed to deactivate token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.l.Error("Failed to get rows affected after deactivate", logger.Error(err))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		r.l.Warn("Token not found for deactivate", logger.Int64("token_id", tokenID))
		return models.ErrNotFound
	}

	r.l.Info("Token record deactivated", logger.Int64("token_id", tokenID))
	return nil
}

// PurgeRetired deletes sessions that are both deactivated and expired. Rows
// that are only time-expired survive: a stale record can still be the user's
// most recent session until something replaces or revokes it.
func (r *tokenRepo) PurgeRetired(ctx context.Context) (int64, error) {
	query := `DELETE FROM token_records WHERE deactivated = true AND expired = true`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge retired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *tokenRepo) getRecord(ctx context.Context, query string, arg interface{}) (*models.TokenRecord, error) {
	record := &models.TokenRecord{Refresh: &models.RefreshRecord{}}

	err := r.db.QueryRowxContext(ctx, query, arg).Scan(
		&record.ID, &record.AccessValue, &record.UserEmail,
		&record.Deactivated, &record.Expired, &record.CreatedAt,
		&record.Refresh.ID, &record.Refresh.TokenID, &record.Refresh.Value,
		&record.Refresh.ExpirationStatus, &record.Refresh.CreatedAt, &record.Refresh.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token record: %w", err)
	}

	return record, nil
}

func deactivateAll(ctx context.Context, q sqlx.QueryerContext, userEmail string) ([]string, error) {
	query := `
		UPDATE token_records
		SET deactivated = true, expired = true
		WHERE user_email = $1 AND (deactivated = false OR expired = false)
		RETURNING access_value`

	rows, err := q.QueryxContext(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate tokens for user %s: %w", userEmail, err)
	}
	defer rows.Close()

	var displaced []string
	for rows.Next() {
		var accessValue string
		if err := rows.Scan(&accessValue); err != nil {
			return nil, fmt.Errorf("failed to scan deactivated token: %w", err)
		}
		displaced = append(displaced, accessValue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deactivated tokens: %w", err)
	}

	return displaced, nil
}

func insertPair(ctx context.Context, q sqlx.QueryerContext, record *models.TokenRecord) error {
	tokenQuery := `
		INSERT INTO token_records (access_value, user_email, deactivated, expired)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := q.QueryRowxContext(ctx, tokenQuery,
		record.AccessValue, record.UserEmail, record.Deactivated, record.Expired,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert token record: %w", err)
	}

	refreshQuery := `
		INSERT INTO refresh_records (token_id, value, expiration_status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	record.Refresh.TokenID = record.ID
	err = q.QueryRowxContext(ctx, refreshQuery,
		record.Refresh.TokenID, record.Refresh.Value, record.Refresh.ExpirationStatus,
		record.Refresh.CreatedAt, record.Refresh.ExpiresAt,
	).Scan(&record.Refresh.ID)
	if err != nil {
		return fmt.Errorf("failed to insert refresh record: %w", err)
	}

	return nil
}
