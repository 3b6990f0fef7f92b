package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

// QRRepository implements port.QRRepository using PostgreSQL.
type QRRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewQRRepository wires a PostgreSQL-backed QR credential repository.
func NewQRRepository(pool *pgxpool.Pool) *QRRepository {
	return &QRRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *QRRepository) WithTx(tx pgx.Tx) *QRRepository {
	if tx == nil {
		return r
	}
	return &QRRepository{pool: r.pool, exec: tx, builder: r.builder}
}

const qrColumns = "id, owner_id, type, payload, expires_at, is_active, created_at"

// Insert stores a freshly issued credential.
func (r *QRRepository) Insert(ctx context.Context, credential domain.QRCredential) error {
	payload, err := json.Marshal(credential.Payload)
	if err != nil {
		return fmt.Errorf("marshal qr payload: %w", err)
	}

	stmt, args, err := r.builder.Insert("qr_codes").
		Columns("id", "owner_id", "type", "payload", "expires_at", "is_active").
		Values(credential.ID, credential.OwnerID, credential.Type, payload, credential.ExpiresAt, credential.IsActive).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert qr sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert qr: %w", err)
	}
	return nil
}

// ActiveByOwner returns the active credential of one owner, or ErrNotFound.
func (r *QRRepository) ActiveByOwner(ctx context.Context, ownerID, qrType string) (*domain.QRCredential, error) {
	stmt, args, err := r.builder.Select(qrColumns).
		From("qr_codes").
		Where(squirrel.Eq{"owner_id": ownerID, "type": qrType, "is_active": true}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select active qr sql: %w", err)
	}

	credential, err := scanQR(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan qr: %w", err)
	}
	return credential, nil
}

// DeactivateActive supersedes the owner's active credentials. Rows are kept
// for history, never deleted.
func (r *QRRepository) DeactivateActive(ctx context.Context, ownerID, qrType string) error {
	stmt, args, err := r.builder.Update("qr_codes").
		Set("is_active", false).
		Where(squirrel.Eq{"owner_id": ownerID, "type": qrType, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate qr sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("deactivate qr: %w", err)
	}
	return nil
}

// LatestByOwners returns the newest credential per owner for list joins.
func (r *QRRepository) LatestByOwners(ctx context.Context, ownerIDs []string) (map[string]domain.QRCredential, error) {
	if len(ownerIDs) == 0 {
		return map[string]domain.QRCredential{}, nil
	}

	stmt, args, err := r.builder.Select(qrColumns).
		From("qr_codes").
		Where(squirrel.Eq{"owner_id": ownerIDs}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list qrs sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query qrs: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]domain.QRCredential, len(ownerIDs))
	for rows.Next() {
		credential, err := scanQR(rows)
		if err != nil {
			return nil, fmt.Errorf("scan qr: %w", err)
		}
		if _, seen := latest[credential.OwnerID]; seen {
			continue
		}
		latest[credential.OwnerID] = *credential
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qrs: %w", err)
	}
	return latest, nil
}

func scanQR(row pgx.Row) (*domain.QRCredential, error) {
	var (
		credential domain.QRCredential
		payload    []byte
	)
	if err := row.Scan(&credential.ID, &credential.OwnerID, &credential.Type, &payload, &credential.ExpiresAt, &credential.IsActive, &credential.CreatedAt); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &credential.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal qr payload: %w", err)
		}
	}
	return &credential, nil
}
