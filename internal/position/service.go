// Package position はポジション（予測）の作成と一覧のドメインロジックを提供する。
package position

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/predictpix/predictpix-api/internal/model"
	"github.com/predictpix/predictpix-api/internal/repository"
)

// PredictInput は予測リクエストの入力値。
type PredictInput struct {
	MarketID string
	UserID   string
	Side     string
	Amount   float64
}

// ListInput はポジション一覧の入力値。
type ListInput struct {
	UserID   string
	MarketID string // 省略可
	Page     model.Page
}

// ListResult はポジション一覧とページ情報。
type ListResult struct {
	Items []*model.Position
	Page  model.PageInfo
}

// Service はポジションのサービス層。
type Service struct {
	repo repository.PositionRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.PositionRepository) *Service {
	return &Service{repo: repo}
}

// Predict は入力を検証し、マーケットに対するポジションを作成する。
// sideは大文字小文字を区別せずに受け付け、小文字で保存する。
func (s *Service) Predict(ctx context.Context, in PredictInput) (*model.Position, error) {
	marketID, err := parseUUID("market_id", in.MarketID)
	if err != nil {
		return nil, err
	}
	userID, err := parseUUID("user_id", in.UserID)
	if err != nil {
		return nil, err
	}

	side, err := parseSide(in.Side)
	if err != nil {
		return nil, err
	}

	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, model.NewInvalidAmountError()
	}

	p, err := s.repo.Create(ctx, userID, marketID, side, in.Amount)
	if errors.Is(err, repository.ErrMarketNotFound) {
		return nil, model.NewMarketNotFoundError(marketID)
	}
	if err != nil {
		return nil, fmt.Errorf("ポジションの作成に失敗しました: %w", err)
	}

	return p, nil
}

// List はユーザーのポジション一覧を返す。
// totalは返却した件数。
func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	userID, err := parseUUID("user_id", in.UserID)
	if err != nil {
		return nil, err
	}

	var marketID string
	if in.MarketID != "" {
		if marketID, err = parseUUID("market_id", in.MarketID); err != nil {
			return nil, err
		}
	}

	if err := in.Page.Validate(); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, model.PositionQuery{
		UserID:   userID,
		MarketID: marketID,
		Page:     in.Page,
	})
	if err != nil {
		return nil, fmt.Errorf("ポジション一覧の取得に失敗しました: %w", err)
	}

	return &ListResult{
		Items: items,
		Page: model.PageInfo{
			Limit:  in.Page.Limit,
			Offset: in.Page.Offset,
			Total:  len(items),
		},
	}, nil
}

// parseUUID はUUID文字列を検証し、正規形の小文字表現で返す。
func parseUUID(name, raw string) (string, error) {
	if raw == "" {
		return "", model.NewInvalidParameterError(name, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", model.NewInvalidParameterError(name, "must be a UUID")
	}
	return id.String(), nil
}

// parseSide はsideを yes/no に正規化する。
func parseSide(raw string) (model.Side, error) {
	switch model.Side(strings.ToLower(strings.TrimSpace(raw))) {
	case model.SideYes:
		return model.SideYes, nil
	case model.SideNo:
		return model.SideNo, nil
	default:
		return "", model.NewInvalidSideError()
	}
}
