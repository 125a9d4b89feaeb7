package plan

import "time"

// Operators supported by the catalog.
var Operators = []string{"Airtel", "Jio", "Vi", "BSNL"}

// Categories a plan can be filed under.
var Categories = []string{"unlimited", "data", "talktime", "international", "long-term", "special", "general"}

// Plan is a prepaid or postpaid offer sold by an operator.
type Plan struct {
	ID        int64
	Name      string
	Operator  string
	Price     int64 // paise
	Data      string
	Validity  int // days
	Category  string
	Benefits  string
	Popular   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows plan listings. Zero values mean "any".
type Filter struct {
	Query    string
	Operator string
	Category string
	MinPrice int64
	MaxPrice int64
	Validity int
	Popular  *bool
	SortBy   string // price, validity, name
	SortDesc bool
	Page     int64
	Limit    int64
}

// IsOperator reports whether op is a known operator.
func IsOperator(op string) bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}
