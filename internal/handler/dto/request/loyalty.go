package request

type CreditPointsRequest struct {
	Points      int64  `json:"points" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=255"`
}

type DebitPointsRequest struct {
	Points      int64  `json:"points" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=255"`
}

type CashTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"max=255"`
}
