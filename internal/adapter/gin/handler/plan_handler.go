package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/internal/usecase/plan"
)

// PlanHandler handles HTTP requests for the plan catalog
type PlanHandler struct {
	uc  plan.Usecase
	log *zap.Logger
}

// NewPlanHandler creates a new PlanHandler instance
func NewPlanHandler(uc plan.Usecase, log *zap.Logger) *PlanHandler {
	return &PlanHandler{uc: uc, log: log}
}

// PlanRequest represents the HTTP request body for creating or updating a plan
type PlanRequest struct {
	Name     string  `json:"name"`
	Operator string  `json:"operator"`
	Price    float64 `json:"price"`
	Data     string  `json:"data"`
	Validity int     `json:"validity"`
	Category string  `json:"category"`
	Benefits string  `json:"benefits"`
	Popular  bool    `json:"popular"`
}

func (r PlanRequest) input() plan.PlanInput {
	return plan.PlanInput{
		Name:     r.Name,
		Operator: r.Operator,
		Price:    rupeesToPaise(r.Price),
		Data:     r.Data,
		Validity: r.Validity,
		Category: r.Category,
		Benefits: r.Benefits,
		Popular:  r.Popular,
	}
}

// ListPlans handles GET /api/plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	minPrice, err := queryRupees(c, "minPrice")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	maxPrice, err := queryRupees(c, "maxPrice")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp, err := h.uc.ListPlans(c.Request.Context(), plan.ListPlansRequest{
		Query:    c.Query("query"),
		Operator: c.Query("operator"),
		Category: c.Query("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Validity: int(queryInt(c, "validity")),
		Popular:  queryBool(c, "popular"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, toPlanResponses(resp.Plans), resp.Pagination)
}

// PopularPlans handles GET /api/plans/popular
func (h *PlanHandler) PopularPlans(c *gin.Context) {
	plans, err := h.uc.PopularPlans(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, toPlanResponses(plans), "")
}

// GetPlan handles GET /api/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.uc.GetPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, toPlanResponse(p), "")
}

// CreatePlan handles POST /api/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	p, err := h.uc.CreatePlan(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, toPlanResponse(p), "Plan created")
}

// UpdatePlan handles PUT /api/plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PlanRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	p, err := h.uc.UpdatePlan(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, toPlanResponse(p), "Plan updated")
}

// DeletePlan handles DELETE /api/plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.DeletePlan(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "Plan deleted")
}

// Operators handles GET /api/plans/operators
func (h *PlanHandler) Operators(c *gin.Context) {
	ops, err := h.uc.Operators(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, ops, "")
}

// Categories handles GET /api/plans/categories
func (h *PlanHandler) Categories(c *gin.Context) {
	cats, err := h.uc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, cats, "")
}
