package model

import "time"

// Side はポジションの賭け方向。
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Position はユーザーがマーケットに対して取ったポジション。
type Position struct {
	ID        string
	UserID    string
	MarketID  string
	Side      Side
	Amount    float64
	CreatedAt time.Time
}

// PositionQuery はポジション一覧の取得条件。
type PositionQuery struct {
	UserID   string
	MarketID string // 空の場合は全マーケット
	Page     Page
}
