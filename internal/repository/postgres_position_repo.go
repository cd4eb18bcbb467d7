package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/predictpix/predictpix-api/internal/model"
)

// foreignKeyViolation はPostgreSQLの外部キー制約違反のSQLSTATE。
const foreignKeyViolation = pq.ErrorCode("23503")

// PostgresPositionRepo はPostgreSQLを使用したポジションリポジトリ。
type PostgresPositionRepo struct {
	db *sql.DB
}

// NewPostgresPositionRepo はPostgresPositionRepoを生成する。
func NewPostgresPositionRepo(db *sql.DB) *PostgresPositionRepo {
	return &PostgresPositionRepo{db: db}
}

var _ PositionRepository = (*PostgresPositionRepo)(nil)

// Create はポジションを作成し、作成された行を返す。
func (r *PostgresPositionRepo) Create(ctx context.Context, userID, marketID string, side model.Side, amount float64) (*model.Position, error) {
	p := &model.Position{}
	var storedSide string

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO positions (user_id, market_id, side, amount)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, market_id, side, amount, created_at`,
		userID, marketID, string(side), amount,
	).Scan(&p.ID, &p.UserID, &p.MarketID, &storedSide, &p.Amount, &p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrMarketNotFound
		}
		return nil, fmt.Errorf("ポジションの作成に失敗しました: %w", err)
	}
	p.Side = model.Side(storedSide)

	return p, nil
}

// List はユーザーのポジションを作成日時の降順で取得する。
func (r *PostgresPositionRepo) List(ctx context.Context, q model.PositionQuery) ([]*model.Position, error) {
	query, args := buildPositionListQuery(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ポジション一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	positions := make([]*model.Position, 0)
	for rows.Next() {
		p := &model.Position{}
		var side string
		if err := rows.Scan(&p.ID, &p.UserID, &p.MarketID, &side, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ポジション行の読み取りに失敗しました: %w", err)
		}
		p.Side = model.Side(side)
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ポジション一覧の走査に失敗しました: %w", err)
	}

	return positions, nil
}

// buildPositionListQuery はマーケット指定の有無に応じたクエリと引数を組み立てる。
func buildPositionListQuery(q model.PositionQuery) (string, []any) {
	query := `SELECT id, user_id, market_id, side, amount, created_at
	          FROM positions
	          WHERE user_id = $1`
	args := []any{q.UserID}

	if q.MarketID != "" {
		args = append(args, q.MarketID)
		query += fmt.Sprintf(" AND market_id = $%d", len(args))
	}

	args = append(args, q.Page.Limit, q.Page.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return query, args
}

// isForeignKeyViolation はエラーが外部キー制約違反かどうかを判定する。
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}
