package model

import (
	"strings"
	"time"
)

// Market は予測マーケットを表す。
type Market struct {
	ID        string
	Question  string
	Category  string
	Tier      string
	Status    string
	CreatedAt time.Time
	EndDate   *time.Time // 未設定の場合はnil
	Liquidity float64
	Resolved  bool
	Outcome   *string // 未確定の場合はnil
}

// MarketSort はマーケット一覧の並び替えキー。
type MarketSort string

const (
	// MarketSortCreatedAt は作成日時順。
	MarketSortCreatedAt MarketSort = "created_at"
	// MarketSortEndDate は終了日時順。
	MarketSortEndDate MarketSort = "end_date"
)

// ParseMarketSort は並び替えキーを解釈する。未知の値はcreated_atとして扱う。
func ParseMarketSort(s string) MarketSort {
	switch MarketSort(s) {
	case MarketSortEndDate:
		return MarketSortEndDate
	default:
		return MarketSortCreatedAt
	}
}

// SortDirection は並び順。
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection は並び順を解釈する。大文字小文字を区別せず "asc" 以外はdescとする。
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(s, string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// MarketQuery はマーケット一覧の取得条件。
type MarketQuery struct {
	Page      Page
	Sort      MarketSort
	Direction SortDirection
}
