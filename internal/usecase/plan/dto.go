package plan

import (
	domain "recharge-service/internal/domain/plan"
	"recharge-service/internal/domain/user"
)

// ListPlansRequest represents the request payload for browsing the catalog.
// Prices are in paise; zero values mean "any".
type ListPlansRequest struct {
	Query    string
	Operator string `validate:"omitempty,oneof=Airtel Jio Vi BSNL airtel jio vi bsnl"`
	Category string `validate:"omitempty,oneof=unlimited data talktime international long-term special general"`
	MinPrice int64  `validate:"gte=0"`
	MaxPrice int64  `validate:"gte=0"`
	Validity int    `validate:"gte=0"`
	Popular  *bool
	SortBy   string `validate:"omitempty,oneof=price validity name"`
	Order    string `validate:"omitempty,oneof=asc desc"`
	Page     int64
	Limit    int64
}

// ListPlansResponse represents the response payload for plan listing.
type ListPlansResponse struct {
	Plans      []domain.Plan
	Pagination *user.Pagination
}

// PlanInput holds the editable fields of a plan. Price is in paise.
type PlanInput struct {
	Name     string `validate:"required,min=2,max=100"`
	Operator string `validate:"required,oneof=Airtel Jio Vi BSNL"`
	Price    int64  `validate:"required,gt=0"`
	Data     string `validate:"max=50"`
	Validity int    `validate:"required,gte=1,lte=3650"`
	Category string `validate:"omitempty,oneof=unlimited data talktime international long-term special general"`
	Benefits string `validate:"max=500"`
	Popular  bool
}

func (in PlanInput) apply(p *domain.Plan) {
	p.Name = in.Name
	p.Operator = in.Operator
	p.Price = in.Price
	p.Data = in.Data
	p.Validity = in.Validity
	p.Category = in.Category
	if p.Category == "" {
		p.Category = "general"
	}
	p.Benefits = in.Benefits
	p.Popular = in.Popular
}
