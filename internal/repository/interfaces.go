// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/predictpix/predictpix-api/internal/model"
)

// ErrMarketNotFound は参照先のマーケットが存在しないことを示す。
var ErrMarketNotFound = errors.New("market not found")

// MarketRepository はマーケットデータの読み出しインターフェース。
type MarketRepository interface {
	// List は条件に従ってマーケットを取得する。
	List(ctx context.Context, q model.MarketQuery) ([]*model.Market, error)

	// Count はマーケットの総数を返す。
	Count(ctx context.Context) (int, error)
}

// PositionRepository はポジションデータの永続化インターフェース。
type PositionRepository interface {
	// Create はポジションを作成し、採番されたIDと作成日時を含む行を返す。
	// マーケットが存在しない場合は ErrMarketNotFound を返す。
	Create(ctx context.Context, userID, marketID string, side model.Side, amount float64) (*model.Position, error)

	// List はユーザーのポジションを作成日時の降順で取得する。
	List(ctx context.Context, q model.PositionQuery) ([]*model.Position, error)
}
