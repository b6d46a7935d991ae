package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	pkgpostgres "github.com/AlifSrSE/css/pkg/postgres"
)

// ScoreRepository implements port.ScoreRepository using PostgreSQL. Every
// calculation is a new row; the latest row per application is current.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new PostgreSQL-backed ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

const scoreColumns = `id, application_id, result, ai_prediction, calculated_at, calculated_by, model_version`

// Save inserts the score and its events in one transaction.
func (r *ScoreRepository) Save(ctx context.Context, score model.CreditScore) error {
	id, err := uuid.Parse(score.ID())
	if err != nil {
		return fmt.Errorf("invalid score id %q: %w", score.ID(), err)
	}
	result := score.Result()
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal score result: %w", err)
	}
	var predictionJSON []byte
	if p := score.AIPrediction(); p != nil {
		if predictionJSON, err = json.Marshal(p); err != nil {
			return fmt.Errorf("failed to marshal ai prediction: %w", err)
		}
	}

	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		const insertSQL = `
			INSERT INTO credit_scores (
				id, application_id, final_score, grade, risk_level, default_probability,
				max_loan_amount, result, ai_prediction, calculated_at, calculated_by, model_version
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		if _, err := tx.Exec(ctx, insertSQL,
			id,
			score.ApplicationID(),
			result.FinalScore,
			result.Grade.String(),
			result.RiskTier.String(),
			result.DefaultProbability,
			result.MaxLoanAmount,
			resultJSON,
			predictionJSON,
			score.CalculatedAt(),
			score.CalculatedBy(),
			score.ModelVersion(),
		); err != nil {
			return fmt.Errorf("failed to insert credit score: %w", err)
		}
		return writeOutbox(ctx, tx, score.DomainEvents())
	})
}

// FindLatestByApplicationID returns the most recent score of an application.
func (r *ScoreRepository) FindLatestByApplicationID(ctx context.Context, applicationID string) (model.CreditScore, error) {
	query := `SELECT ` + scoreColumns + `
		FROM credit_scores
		WHERE application_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1`

	score, err := scanScore(r.pool.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CreditScore{}, port.ErrScoreNotFound
		}
		return model.CreditScore{}, err
	}
	return score, nil
}

// List returns scores calculated within q's window, newest first.
func (r *ScoreRepository) List(ctx context.Context, q port.ScoreQuery) ([]model.CreditScore, error) {
	query, args := listQuery(q)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit scores: %w", err)
	}
	defer rows.Close()

	var scores []model.CreditScore
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credit score rows: %w", err)
	}
	return scores, nil
}

// listQuery builds the filtered listing statement.
func listQuery(q port.ScoreQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !q.Since.IsZero() {
		args = append(args, q.Since)
		where = append(where, fmt.Sprintf("calculated_at >= $%d", len(args)))
	}
	if !q.Until.IsZero() {
		args = append(args, q.Until)
		where = append(where, fmt.Sprintf("calculated_at < $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + scoreColumns + ` FROM credit_scores`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY calculated_at DESC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func scanScore(row pgx.Row) (model.CreditScore, error) {
	var (
		id             uuid.UUID
		applicationID  string
		resultJSON     []byte
		predictionJSON []byte
		calculatedAt   time.Time
		calculatedBy   string
		modelVersion   string
	)
	if err := row.Scan(&id, &applicationID, &resultJSON, &predictionJSON, &calculatedAt, &calculatedBy, &modelVersion); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CreditScore{}, err
		}
		return model.CreditScore{}, fmt.Errorf("failed to scan credit score: %w", err)
	}
	return reconstructScore(id.String(), applicationID, resultJSON, predictionJSON, calculatedAt, calculatedBy, modelVersion)
}

// reconstructScore rebuilds a CreditScore from stored column values.
func reconstructScore(
	id, applicationID string,
	resultJSON, predictionJSON []byte,
	calculatedAt time.Time,
	calculatedBy, modelVersion string,
) (model.CreditScore, error) {
	var result model.ScoreResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return model.CreditScore{}, fmt.Errorf("invalid stored score result: %w", err)
	}
	var prediction *model.AIPrediction
	if len(predictionJSON) > 0 {
		prediction = &model.AIPrediction{}
		if err := json.Unmarshal(predictionJSON, prediction); err != nil {
			return model.CreditScore{}, fmt.Errorf("invalid stored ai prediction: %w", err)
		}
	}
	return model.ReconstructCreditScore(
		id, applicationID, result, prediction, calculatedAt.UTC(), calculatedBy, modelVersion,
	), nil
}
