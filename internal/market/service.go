// Package market はマーケット一覧のドメインロジックを提供する。
package market

import (
	"context"
	"fmt"

	"github.com/predictpix/predictpix-api/internal/model"
	"github.com/predictpix/predictpix-api/internal/repository"
)

// ListResult はマーケット一覧とページ情報。
type ListResult struct {
	Items []*model.Market
	Page  model.PageInfo
}

// Service はマーケット一覧のサービス層。
type Service struct {
	repo repository.MarketRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.MarketRepository) *Service {
	return &Service{repo: repo}
}

// List はページング条件を検証し、マーケット一覧と総件数を返す。
// totalは絞り込み前のマーケット総数。
func (s *Service) List(ctx context.Context, q model.MarketQuery) (*ListResult, error) {
	if err := q.Page.Validate(); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("マーケット一覧の取得に失敗しました: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("マーケット件数の取得に失敗しました: %w", err)
	}

	return &ListResult{
		Items: items,
		Page: model.PageInfo{
			Limit:  q.Page.Limit,
			Offset: q.Page.Offset,
			Total:  total,
		},
	}, nil
}
