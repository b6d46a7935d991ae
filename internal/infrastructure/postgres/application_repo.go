package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
	pkgpostgres "github.com/AlifSrSE/css/pkg/postgres"
)

// ApplicationRepository implements port.ApplicationRepository using PostgreSQL.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository creates a new PostgreSQL-backed ApplicationRepository.
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Save persists an Application using an upsert with optimistic concurrency
// control. Domain events go to the outbox in the same transaction.
func (r *ApplicationRepository) Save(ctx context.Context, app model.Application) error {
	data, err := json.Marshal(app.Data())
	if err != nil {
		return fmt.Errorf("failed to marshal application data: %w", err)
	}

	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		const upsertSQL = `
			INSERT INTO credit_applications (
				id, status, submitted_by, business_name, business_type,
				loan_amount_requested, loan_purpose, data, version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				status = EXCLUDED.status,
				version = EXCLUDED.version,
				updated_at = EXCLUDED.updated_at
			WHERE credit_applications.version = EXCLUDED.version - 1
		`
		result, err := tx.Exec(ctx, upsertSQL,
			app.ID(),
			app.Status().String(),
			app.SubmittedBy(),
			app.Business().BusinessName,
			app.Business().BusinessType,
			app.LoanAmountRequested(),
			app.LoanPurpose(),
			data,
			app.Version(),
			app.CreatedAt(),
			app.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert application: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("application %s: %w", app.ID(), port.ErrConcurrentModification)
		}

		return writeOutbox(ctx, tx, app.DomainEvents())
	})
}

// FindByID retrieves an Application by its identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (model.Application, error) {
	const query = `
		SELECT id, status, submitted_by, loan_amount_requested, loan_purpose,
		       data, version, created_at, updated_at
		FROM credit_applications
		WHERE id = $1
	`
	var (
		appID     string
		status    string
		by        string
		amount    decimal.Decimal
		purpose   string
		data      []byte
		version   int
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&appID, &status, &by, &amount, &purpose, &data, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Application{}, port.ErrApplicationNotFound
		}
		return model.Application{}, fmt.Errorf("failed to scan application: %w", err)
	}
	return reconstructApplication(appID, status, by, amount, purpose, data, version, createdAt, updatedAt)
}

// reconstructApplication rebuilds the aggregate from scanned column values.
func reconstructApplication(
	id, statusStr, submittedBy string,
	amount decimal.Decimal,
	purpose string,
	rawData []byte,
	version int,
	createdAt, updatedAt time.Time,
) (model.Application, error) {
	status, err := valueobject.NewApplicationStatus(statusStr)
	if err != nil {
		return model.Application{}, fmt.Errorf("invalid stored status: %w", err)
	}
	var data model.ApplicationData
	if err := json.Unmarshal(rawData, &data); err != nil {
		return model.Application{}, fmt.Errorf("invalid stored application data: %w", err)
	}
	return model.ReconstructApplication(
		id, data, status, submittedBy, amount, purpose, version, createdAt, updatedAt,
	), nil
}
