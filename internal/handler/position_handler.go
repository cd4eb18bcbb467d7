package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/predictpix/predictpix-api/internal/middleware"
	"github.com/predictpix/predictpix-api/internal/model"
	"github.com/predictpix/predictpix-api/internal/position"
)

// maxPredictBodyBytes は予測リクエストボディの上限。
const maxPredictBodyBytes = 16 << 10

// PositionServiceInterface はポジションハンドラーが必要とするサービスインターフェース。
type PositionServiceInterface interface {
	Predict(ctx context.Context, in position.PredictInput) (*model.Position, error)
	List(ctx context.Context, in position.ListInput) (*position.ListResult, error)
}

// PositionHandler は予測作成とポジション一覧のHTTPハンドラー。
type PositionHandler struct {
	service PositionServiceInterface
}

// NewPositionHandler はPositionHandlerを生成する。
func NewPositionHandler(service PositionServiceInterface) *PositionHandler {
	return &PositionHandler{service: service}
}

// predictRequest は予測作成リクエストのボディ。
// amountは数値と数値文字列のどちらも受け付ける。
type predictRequest struct {
	UserID string      `json:"user_id"`
	Side   string      `json:"side"`
	Amount json.Number `json:"amount"`
}

// positionResponse はポジションのAPIレスポンス。
type positionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MarketID  string    `json:"market_id"`
	Side      string    `json:"side"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// positionListResponse はポジション一覧のAPIレスポンス。
type positionListResponse struct {
	Items []positionResponse `json:"items"`
	Page  model.PageInfo     `json:"page"`
}

// Predict はマーケットに対するポジションを作成する。
// POST /api/markets/{market_id}/predict
func (h *PositionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBodyBytes)).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestBodyError())
		return
	}

	amount, err := req.Amount.Float64()
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidAmountError())
		return
	}

	p, err := h.service.Predict(r.Context(), position.PredictInput{
		MarketID: chi.URLParam(r, "market_id"),
		UserID:   req.UserID,
		Side:     req.Side,
		Amount:   amount,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPositionResponse(p))
}

// ListPositions はユーザーのポジション一覧を新しい順に返す。
// GET /api/positions?user_id=&market_id=&limit=&offset=
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	q := r.URL.Query()
	result, err := h.service.List(r.Context(), position.ListInput{
		UserID:   q.Get("user_id"),
		MarketID: q.Get("market_id"),
		Page:     page,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]positionResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, toPositionResponse(p))
	}

	writeJSON(w, http.StatusOK, positionListResponse{
		Items: items,
		Page:  result.Page,
	})
}

func toPositionResponse(p *model.Position) positionResponse {
	return positionResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		MarketID:  p.MarketID,
		Side:      string(p.Side),
		Amount:    p.Amount,
		CreatedAt: p.CreatedAt,
	}
}
