package model

// ページングの既定値と上限
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page は一覧取得のlimit/offset指定。
type Page struct {
	Limit  int
	Offset int
}

// PageInfo は一覧レスポンスに含めるページ情報。
type PageInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Validate はlimitが1から100、offsetが0以上であることを検証する。
func (p Page) Validate() error {
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return NewInvalidParameterError("limit", "must be between 1 and 100")
	}
	if p.Offset < 0 {
		return NewInvalidParameterError("offset", "must be greater than or equal to 0")
	}
	return nil
}
