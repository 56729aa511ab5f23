package dto

type EntryRequest struct {
	Amount      int64  `json:"amount" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	Description string `json:"description"`
}

type AdminEntryRequest struct {
	AccountID   int64  `json:"account_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	Description string `json:"description"`
}

type EntryResponse struct {
	NewBalance int64 `json:"new_balance"`
}
