package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "recharge-service/internal/domain/transaction"
	"recharge-service/internal/usecase/transaction"
)

// AdminHandler serves the back-office dashboard
type AdminHandler struct {
	uc  transaction.Usecase
	log *zap.Logger
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(uc transaction.Usecase, log *zap.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, log: log}
}

// DailyCountResponse is one day of recharge activity
type DailyCountResponse struct {
	Date       string  `json:"date"`
	Successful int64   `json:"successful"`
	Failed     int64   `json:"failed"`
	Amount     float64 `json:"amount"`
}

// OverviewResponse represents the admin dashboard
type OverviewResponse struct {
	TotalUsers        int64                  `json:"totalUsers"`
	TotalPlans        int64                  `json:"totalPlans"`
	TotalTransactions int64                  `json:"totalTransactions"`
	TotalRevenue      float64                `json:"totalRevenue"`
	TotalTopups       float64                `json:"totalTopups"`
	TodaySuccessful   int64                  `json:"todaySuccessful"`
	TodayFailed       int64                  `json:"todayFailed"`
	TodayRevenue      float64                `json:"todayRevenue"`
	Operators         []OperatorStatResponse `json:"operators"`
	Last7Days         []DailyCountResponse   `json:"last7Days"`
}

func toOperatorStats(stats []domain.OperatorStat) []OperatorStatResponse {
	out := make([]OperatorStatResponse, len(stats))
	for i, s := range stats {
		out[i] = OperatorStatResponse{Operator: s.Operator, Count: s.Count, Amount: paiseToRupees(s.Amount)}
	}
	return out
}

// Overview handles GET /api/admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	o, err := h.uc.AdminOverview(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	days := make([]DailyCountResponse, len(o.Last7Days))
	for i, d := range o.Last7Days {
		days[i] = DailyCountResponse{Date: d.Date, Successful: d.Successful, Failed: d.Failed, Amount: paiseToRupees(d.Amount)}
	}
	respond(c, http.StatusOK, OverviewResponse{
		TotalUsers:        o.TotalUsers,
		TotalPlans:        o.TotalPlans,
		TotalTransactions: o.TotalTransactions,
		TotalRevenue:      paiseToRupees(o.TotalRevenue),
		TotalTopups:       paiseToRupees(o.TotalTopups),
		TodaySuccessful:   o.TodaySuccessful,
		TodayFailed:       o.TodayFailed,
		TodayRevenue:      paiseToRupees(o.TodayRevenue),
		Operators:         toOperatorStats(o.Operators),
		Last7Days:         days,
	}, "")
}
