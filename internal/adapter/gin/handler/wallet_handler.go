package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/internal/adapter/gin/middleware"
	"recharge-service/internal/usecase/wallet"
)

// WalletHandler handles balance, top-up and payment history requests
type WalletHandler struct {
	uc  wallet.Usecase
	log *zap.Logger
}

// NewWalletHandler creates a new WalletHandler instance
func NewWalletHandler(uc wallet.Usecase, log *zap.Logger) *WalletHandler {
	return &WalletHandler{uc: uc, log: log}
}

// CardRequest carries card details for a card top-up
type CardRequest struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
	Name   string `json:"name"`
}

// TopupRequest represents the HTTP request body for a wallet top-up
type TopupRequest struct {
	Amount float64      `json:"amount"`
	Method string       `json:"method"`
	UPIID  string       `json:"upiId"`
	Card   *CardRequest `json:"card"`
}

// TopupResponse represents the HTTP response for a wallet top-up
type TopupResponse struct {
	Status      string              `json:"status"`
	Balance     float64             `json:"balance"`
	Transaction TransactionResponse `json:"transaction"`
	Payment     PaymentResponse     `json:"payment"`
}

// Balance handles GET /api/wallet
func (h *WalletHandler) Balance(c *gin.Context) {
	balance, err := h.uc.Balance(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"balance": paiseToRupees(balance)}, "")
}

// Topup handles POST /api/wallet/topup. A declined payment answers 200 with
// a failed status; only invalid requests and server errors are errors.
func (h *WalletHandler) Topup(c *gin.Context) {
	var req TopupRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	in := wallet.TopupRequest{
		UserID: middleware.ActorFrom(c).UserID,
		Amount: rupeesToPaise(req.Amount),
		Method: req.Method,
		UPIID:  req.UPIID,
	}
	if req.Card != nil {
		in.Card = &wallet.CardDetails{Number: req.Card.Number, Expiry: req.Card.Expiry, CVV: req.Card.CVV, Name: req.Card.Name}
	}

	resp, err := h.uc.Topup(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: resp.Success,
		Message: resp.Message,
		Error:   failureCode(resp.Success, "payment_failed"),
		Data: TopupResponse{
			Status:      resp.Transaction.Status,
			Balance:     paiseToRupees(resp.Balance),
			Transaction: toTransactionResponse(resp.Transaction),
			Payment:     toPaymentResponse(resp.Payment),
		},
	})
}

// ListPayments handles GET /api/payments
func (h *WalletHandler) ListPayments(c *gin.Context) {
	resp, err := h.uc.ListPayments(c.Request.Context(), middleware.ActorFrom(c), wallet.ListPaymentsRequest{
		UserID: queryInt(c, "userId"),
		Status: c.Query("status"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	payments := make([]PaymentResponse, len(resp.Payments))
	for i := range resp.Payments {
		payments[i] = toPaymentResponse(&resp.Payments[i])
	}
	respondList(c, payments, resp.Pagination)
}

func failureCode(success bool, code string) string {
	if success {
		return ""
	}
	return code
}
