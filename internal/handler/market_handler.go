package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/predictpix/predictpix-api/internal/market"
	"github.com/predictpix/predictpix-api/internal/model"
)

// MarketServiceInterface はマーケットハンドラーが必要とするサービスインターフェース。
type MarketServiceInterface interface {
	List(ctx context.Context, q model.MarketQuery) (*market.ListResult, error)
}

// MarketHandler はマーケット一覧のHTTPハンドラー。
type MarketHandler struct {
	service MarketServiceInterface
}

// NewMarketHandler はMarketHandlerを生成する。
func NewMarketHandler(service MarketServiceInterface) *MarketHandler {
	return &MarketHandler{service: service}
}

// marketResponse はマーケットのAPIレスポンス。
type marketResponse struct {
	ID        string     `json:"id"`
	Question  string     `json:"question"`
	Category  string     `json:"category"`
	Tier      string     `json:"tier"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	EndDate   *time.Time `json:"end_date"`
	Liquidity float64    `json:"liquidity"`
	Resolved  bool       `json:"resolved"`
	Outcome   *string    `json:"outcome"`
}

// marketListResponse はマーケット一覧のAPIレスポンス。
type marketListResponse struct {
	Items []marketResponse `json:"items"`
	Page  model.PageInfo   `json:"page"`
}

// ListMarkets はマーケット一覧を返す。認証不要。
// GET /api/markets?limit=&offset=&sort=&direction=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	q := r.URL.Query()
	result, err := h.service.List(r.Context(), model.MarketQuery{
		Page:      page,
		Sort:      model.ParseMarketSort(q.Get("sort")),
		Direction: model.ParseSortDirection(q.Get("direction")),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]marketResponse, 0, len(result.Items))
	for _, m := range result.Items {
		items = append(items, toMarketResponse(m))
	}

	writeJSON(w, http.StatusOK, marketListResponse{
		Items: items,
		Page:  result.Page,
	})
}

func toMarketResponse(m *model.Market) marketResponse {
	return marketResponse{
		ID:        m.ID,
		Question:  m.Question,
		Category:  m.Category,
		Tier:      m.Tier,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		EndDate:   m.EndDate,
		Liquidity: m.Liquidity,
		Resolved:  m.Resolved,
		Outcome:   m.Outcome,
	}
}
