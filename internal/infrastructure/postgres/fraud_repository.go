package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	pkgpostgres "github.com/bibbank/fraudwatch/pkg/postgres"
)

var tracer = otel.Tracer("fraudwatch/postgres")

var flaggedColumns = []string{
	"step", "type", "amount",
	"name_orig", "old_balance_orig", "new_balance_orig",
	"name_dest", "old_balance_dest", "new_balance_dest",
	"confidence", "flagged_fraud", "detected_at",
}

// FraudRepository implements port.FraudRepository using PostgreSQL.
type FraudRepository struct {
	pool *pgxpool.Pool
}

// NewFraudRepository creates a new PostgreSQL-backed fraud repository.
func NewFraudRepository(pool *pgxpool.Pool) *FraudRepository {
	return &FraudRepository{pool: pool}
}

// WriteBatch inserts the processing log and every flagged row in one
// transaction. The log row is written first so its ID is known; the flagged
// rows follow through COPY.
func (r *FraudRepository) WriteBatch(ctx context.Context, flagged []model.FlaggedTransaction, filename string, totalTransactions int) (model.ProcessingLog, error) {
	ctx, span := tracer.Start(ctx, "FraudRepository.WriteBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.filename", filename),
		attribute.Int("batch.flagged", len(flagged)),
	)

	for _, f := range flagged {
		if err := f.Validate(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return model.ProcessingLog{}, model.NewStorageError("write batch", err)
		}
	}

	now := time.Now().UTC()
	log := model.ProcessingLog{
		Filename:          filename,
		TotalTransactions: totalTransactions,
		FraudulentCount:   len(flagged),
	}

	err := pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO processing_logs (filename, total_transactions, fraudulent_count, processed_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, processed_at
		`, filename, totalTransactions, len(flagged), now).Scan(&log.ID, &log.ProcessedAt)
		if err != nil {
			return fmt.Errorf("failed to insert processing log: %w", err)
		}

		if len(flagged) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(flagged))
		for _, f := range flagged {
			rows = append(rows, []any{
				f.Step, string(f.Type), f.Amount,
				f.NameOrig, f.OldBalanceOrig, f.NewBalanceOrig,
				f.NameDest, f.OldBalanceDest, f.NewBalanceDest,
				int16(f.Confidence), true, now,
			})
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"flagged_transactions"}, flaggedColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy flagged transactions: %w", err)
		}
		if int(n) != len(flagged) {
			return fmt.Errorf("copied %d flagged transactions, want %d", n, len(flagged))
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return model.ProcessingLog{}, model.NewStorageError("write batch", err)
	}

	return log, nil
}

// ReadFlagged returns at most limit flagged transactions, newest first.
func (r *FraudRepository) ReadFlagged(ctx context.Context, limit int) ([]model.FlaggedTransaction, error) {
	if limit < 0 {
		limit = 0
	}

	query := `
		SELECT id, step, type, amount,
			name_orig, old_balance_orig, new_balance_orig,
			name_dest, old_balance_dest, new_balance_dest,
			confidence, flagged_fraud, detected_at
		FROM flagged_transactions
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, model.NewStorageError("read flagged", fmt.Errorf("failed to query flagged transactions: %w", err))
	}
	defer rows.Close()

	out := make([]model.FlaggedTransaction, 0)
	for rows.Next() {
		f, err := scanFlagged(rows)
		if err != nil {
			return nil, model.NewStorageError("read flagged", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("read flagged", err)
	}

	return out, nil
}

// ReadLogs returns at most limit processing logs, newest first.
func (r *FraudRepository) ReadLogs(ctx context.Context, limit int) ([]model.ProcessingLog, error) {
	if limit < 0 {
		limit = 0
	}

	query := `
		SELECT id, filename, total_transactions, fraudulent_count, processed_at
		FROM processing_logs
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, model.NewStorageError("read logs", fmt.Errorf("failed to query processing logs: %w", err))
	}
	defer rows.Close()

	out := make([]model.ProcessingLog, 0)
	for rows.Next() {
		var l model.ProcessingLog
		if err := rows.Scan(&l.ID, &l.Filename, &l.TotalTransactions, &l.FraudulentCount, &l.ProcessedAt); err != nil {
			return nil, model.NewStorageError("read logs", fmt.Errorf("failed to scan processing log: %w", err))
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("read logs", err)
	}

	return out, nil
}

// ClearAll deletes every flagged transaction and log in one transaction.
// DELETE rather than TRUNCATE keeps the identity sequences where they are.
func (r *FraudRepository) ClearAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "FraudRepository.ClearAll")
	defer span.End()

	err := pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM flagged_transactions`); err != nil {
			return fmt.Errorf("failed to delete flagged transactions: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM processing_logs`); err != nil {
			return fmt.Errorf("failed to delete processing logs: %w", err)
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return model.NewStorageError("clear all", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *FraudRepository) Ping(ctx context.Context) error {
	if err := pkgpostgres.HealthCheck(ctx, r.pool); err != nil {
		return model.NewStorageError("ping", err)
	}
	return nil
}

func scanFlagged(rows pgx.Rows) (model.FlaggedTransaction, error) {
	var (
		f          model.FlaggedTransaction
		typ        string
		confidence int16
	)

	err := rows.Scan(
		&f.ID, &f.Step, &typ, &f.Amount,
		&f.NameOrig, &f.OldBalanceOrig, &f.NewBalanceOrig,
		&f.NameDest, &f.OldBalanceDest, &f.NewBalanceDest,
		&confidence, &f.FlaggedFraud, &f.DetectedAt,
	)
	if err != nil {
		return model.FlaggedTransaction{}, fmt.Errorf("failed to scan flagged transaction: %w", err)
	}

	f.Type = model.TransactionType(typ)
	f.Confidence = int(confidence)
	return f, nil
}
