package response

import (
	"payments-service/internal/domain/loyalty"
	"payments-service/internal/usecase/queries"
)

type LotResponse struct {
	ExpiresAt int64 `json:"expires_at"`
	Points    int64 `json:"points"`
}

type BalanceResponse struct {
	UserID      string        `json:"user_id"`
	TotalPoints int64         `json:"total_points"`
	Expiring    []LotResponse `json:"expiring"`
}

func FromBalanceView(userID string, v *queries.BalanceView) *BalanceResponse {
	lots := make([]LotResponse, len(v.Expiring))
	for i, lot := range v.Expiring {
		lots[i] = LotResponse{ExpiresAt: lot.ExpiresAt.Unix(), Points: lot.Points}
	}
	return &BalanceResponse{
		UserID:      userID,
		TotalPoints: v.TotalPoints,
		Expiring:    lots,
	}
}

type EntryResponse struct {
	Kind        string  `json:"kind"`
	Points      int64   `json:"points,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	CouponCode  string  `json:"coupon_code,omitempty"`
	Timestamp   int64   `json:"timestamp"`
	Description string  `json:"description,omitempty"`
}

type HistoryResponse struct {
	UserID  string          `json:"user_id"`
	Entries []EntryResponse `json:"entries"`
}

func FromHistory(userID string, entries []loyalty.Entry) *HistoryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryResponse{
			Kind:        string(e.Kind),
			Points:      e.Points,
			Amount:      e.Amount,
			CouponCode:  e.CouponCode,
			Timestamp:   e.Timestamp.Unix(),
			Description: e.Description,
		}
	}
	return &HistoryResponse{UserID: userID, Entries: out}
}
