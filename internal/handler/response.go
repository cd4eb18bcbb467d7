// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/predictpix/predictpix-api/internal/middleware"
	"github.com/predictpix/predictpix-api/internal/model"
)

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeTokenExpired, model.ErrCodeTokenInvalid:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidParameter, model.ErrCodeInvalidSide,
		model.ErrCodeInvalidAmount, model.ErrCodeInvalidRequestBody:
		return http.StatusBadRequest
	case model.ErrCodeMarketNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parsePage はlimit/offsetクエリパラメータを解釈する。
// 範囲の検証はサービス層で行う。
func parsePage(r *http.Request) (model.Page, error) {
	limit, err := queryInt(r, "limit", model.DefaultPageLimit)
	if err != nil {
		return model.Page{}, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{Limit: limit, Offset: offset}, nil
}

// queryInt は整数のクエリパラメータを返す。未指定の場合はdefaultValを返す。
func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewInvalidParameterError(name, "must be an integer")
	}
	return v, nil
}
