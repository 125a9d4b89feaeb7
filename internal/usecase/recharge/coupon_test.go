package recharge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "recharge-service/pkg/errors"
)

func TestApplyCoupon(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		code     string
		want     int64
		wantCode string
	}{
		{name: "no coupon", price: 29900, code: "", want: 29900},
		{name: "save20", price: 29900, code: "SAVE20", want: 23920, wantCode: "SAVE20"},
		{name: "save20 lower case", price: 10000, code: " save20 ", want: 8000, wantCode: "SAVE20"},
		{name: "flat50 above minimum", price: 29900, code: "FLAT50", want: 24900, wantCode: "FLAT50"},
		{name: "flat50 at minimum", price: 20000, code: "FLAT50", want: 15000, wantCode: "FLAT50"},
		{name: "flat50 below minimum", price: 19900, code: "FLAT50", want: 19900, wantCode: "FLAT50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, code, err := ApplyCoupon(tt.price, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestApplyCoupon_Unknown(t *testing.T) {
	_, _, err := ApplyCoupon(29900, "FREE100")
	require.Error(t, err)
	assert.Equal(t, "validation_error", apperrors.Slug(err))
}
