package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/internal/adapter/gin/middleware"
	"recharge-service/internal/usecase/recharge"
	"recharge-service/internal/usecase/transaction"
	apperrors "recharge-service/pkg/errors"
)

// TransactionHandler handles recharges and transaction reporting
type TransactionHandler struct {
	recharge recharge.Usecase
	txns     transaction.Usecase
	log      *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler instance
func NewTransactionHandler(r recharge.Usecase, t transaction.Usecase, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{recharge: r, txns: t, log: log}
}

// RechargeRequest represents the HTTP request body for a recharge
type RechargeRequest struct {
	PlanID int64  `json:"planId"`
	Mobile string `json:"mobile"`
	Coupon string `json:"coupon"`
}

// RechargeResponse represents the HTTP response for a recharge
type RechargeResponse struct {
	Status      string              `json:"status"`
	Balance     float64             `json:"balance"`
	Discount    float64             `json:"discount"`
	Plan        PlanResponse        `json:"plan"`
	Transaction TransactionResponse `json:"transaction"`
}

// SummaryResponse represents the dashboard summary
type SummaryResponse struct {
	TotalSpent          float64 `json:"totalSpent"`
	TotalAdded          float64 `json:"totalAdded"`
	SuccessfulRecharges int64   `json:"successfulRecharges"`
	FailedRecharges     int64   `json:"failedRecharges"`
	SuccessRate         float64 `json:"successRate"`
	TransactionCount    int64   `json:"transactionCount"`
}

// MonthlySpendResponse is one month of spending
type MonthlySpendResponse struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

// OperatorStatResponse is the recharge volume of one operator
type OperatorStatResponse struct {
	Operator string  `json:"operator"`
	Count    int64   `json:"count"`
	Amount   float64 `json:"amount"`
}

// AnalyticsResponse represents spending analytics
type AnalyticsResponse struct {
	TotalSpent        float64                `json:"totalSpent"`
	AverageRecharge   float64                `json:"avgRecharge"`
	HighestRecharge   float64                `json:"highestRecharge"`
	TotalTransactions int64                  `json:"totalTransactions"`
	MostUsedOperator  string                 `json:"mostUsedOperator"`
	AverageInterval   int64                  `json:"avgInterval"`
	Monthly           []MonthlySpendResponse `json:"monthlyData"`
	Operators         []OperatorStatResponse `json:"operators"`
}

// Recharge handles POST /api/transactions. An operator failure answers 200
// with a failed, refunded transaction.
func (h *TransactionHandler) Recharge(c *gin.Context) {
	var req RechargeRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.recharge.Recharge(c.Request.Context(), recharge.Request{
		UserID: middleware.ActorFrom(c).UserID,
		PlanID: req.PlanID,
		Mobile: req.Mobile,
		Coupon: req.Coupon,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if resp.Success {
		status = http.StatusCreated
	}
	c.JSON(status, Envelope{
		Success: resp.Success,
		Message: resp.Message,
		Error:   failureCode(resp.Success, "recharge_failed"),
		Data: RechargeResponse{
			Status:      resp.Transaction.Status,
			Balance:     paiseToRupees(resp.Balance),
			Discount:    paiseToRupees(resp.Discount),
			Plan:        toPlanResponse(resp.Plan),
			Transaction: toTransactionResponse(resp.Transaction),
		},
	})
}

// parseTime accepts RFC 3339 timestamps or plain dates. A plain date used
// as an upper bound covers the whole day.
func parseTime(c *gin.Context, name string, upper bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if upper {
			t = t.AddDate(0, 0, 1)
		}
		return &t, nil
	}
	return nil, apperrors.NewValidationError(name, name+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

// ListTransactions handles GET /api/transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	from, err := parseTime(c, "from", false)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	to, err := parseTime(c, "to", true)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp, err := h.txns.History(c.Request.Context(), middleware.ActorFrom(c), transaction.ListRequest{
		UserID: queryInt(c, "userId"),
		Type:   c.Query("type"),
		Status: c.Query("status"),
		From:   from,
		To:     to,
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, toTransactionResponses(resp.Transactions), resp.Pagination)
}

// GetTransaction handles GET /api/transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.txns.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, toTransactionResponse(t), "")
}

// subject is the user a report is about: the caller, or ?userId= for admins.
func subject(c *gin.Context) int64 {
	actor := middleware.ActorFrom(c)
	if id := queryInt(c, "userId"); id > 0 && actor.IsAdmin() {
		return id
	}
	return actor.UserID
}

// Summary handles GET /api/transactions/summary
func (h *TransactionHandler) Summary(c *gin.Context) {
	s, err := h.txns.Summary(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, SummaryResponse{
		TotalSpent:          paiseToRupees(s.TotalSpent),
		TotalAdded:          paiseToRupees(s.TotalAdded),
		SuccessfulRecharges: s.SuccessfulRecharges,
		FailedRecharges:     s.FailedRecharges,
		SuccessRate:         s.SuccessRate,
		TransactionCount:    s.TransactionCount,
	}, "")
}

// Analytics handles GET /api/transactions/analytics
func (h *TransactionHandler) Analytics(c *gin.Context) {
	a, err := h.txns.Analytics(c.Request.Context(), subject(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	monthly := make([]MonthlySpendResponse, len(a.Monthly))
	for i, m := range a.Monthly {
		monthly[i] = MonthlySpendResponse{Month: m.Month, Amount: paiseToRupees(m.Amount), Count: m.Count}
	}
	respond(c, http.StatusOK, AnalyticsResponse{
		TotalSpent:        paiseToRupees(a.TotalSpent),
		AverageRecharge:   paiseToRupees(a.AverageRecharge),
		HighestRecharge:   paiseToRupees(a.HighestRecharge),
		TotalTransactions: a.TotalTransactions,
		MostUsedOperator:  a.MostUsedOperator,
		AverageInterval:   a.AverageInterval,
		Monthly:           monthly,
		Operators:         toOperatorStats(a.Operators),
	}, "")
}
