package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/predictpix/predictpix-api/internal/model"
)

// PostgresMarketRepo はPostgreSQLを使用したマーケットリポジトリ。
type PostgresMarketRepo struct {
	db *sql.DB
}

// NewPostgresMarketRepo はPostgresMarketRepoを生成する。
func NewPostgresMarketRepo(db *sql.DB) *PostgresMarketRepo {
	return &PostgresMarketRepo{db: db}
}

var _ MarketRepository = (*PostgresMarketRepo)(nil)

// marketOrderClause はORDER BY句を返す。列名と方向は固定の候補からのみ選ぶ。
func marketOrderClause(sort model.MarketSort, dir model.SortDirection) string {
	column := "created_at"
	if sort == model.MarketSortEndDate {
		column = "end_date"
	}
	direction := "DESC"
	if dir == model.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", column, direction, direction)
}

// List は条件に従ってマーケットを取得する。
func (r *PostgresMarketRepo) List(ctx context.Context, q model.MarketQuery) ([]*model.Market, error) {
	query := `SELECT id, question, category, tier, status,
	                 created_at, end_date, liquidity, resolved, outcome
	          FROM markets ` + marketOrderClause(q.Sort, q.Direction) + `
	          LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, q.Page.Limit, q.Page.Offset)
	if err != nil {
		return nil, fmt.Errorf("マーケット一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	markets := make([]*model.Market, 0)
	for rows.Next() {
		m := &model.Market{}
		var category, tier, status, outcome sql.NullString
		var endDate sql.NullTime
		var liquidity sql.NullFloat64

		if err := rows.Scan(
			&m.ID, &m.Question, &category, &tier, &status,
			&m.CreatedAt, &endDate, &liquidity, &m.Resolved, &outcome,
		); err != nil {
			return nil, fmt.Errorf("マーケット行の読み取りに失敗しました: %w", err)
		}

		m.Category = nullStringValue(category)
		m.Tier = nullStringValue(tier)
		m.Status = nullStringValue(status)
		if endDate.Valid {
			m.EndDate = &endDate.Time
		}
		if liquidity.Valid {
			m.Liquidity = liquidity.Float64
		}
		if outcome.Valid {
			m.Outcome = &outcome.String
		}

		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("マーケット一覧の走査に失敗しました: %w", err)
	}

	return markets, nil
}

// Count はマーケットの総数を返す。
func (r *PostgresMarketRepo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM markets`).Scan(&total); err != nil {
		return 0, fmt.Errorf("マーケット件数の取得に失敗しました: %w", err)
	}
	return total, nil
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
