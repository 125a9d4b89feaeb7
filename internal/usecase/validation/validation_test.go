package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	apperrors "recharge-service/pkg/errors"
)

type sample struct {
	Name   string `validate:"required,min=3"`
	Mobile string `validate:"omitempty,mobile"`
	Expiry string `validate:"omitempty,cardexpiry"`
	CVV    string `validate:"omitempty,cvv"`
	UPI    string `validate:"omitempty,upi"`
	Method string `validate:"omitempty,oneof=upi card"`
}

func TestStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{name: "valid", in: sample{Name: "Asha", Mobile: "9876543210", Expiry: "12/29", CVV: "123", UPI: "asha@okaxis", Method: "upi"}},
		{name: "missing name", in: sample{}, wantErr: "Name is required"},
		{name: "short name", in: sample{Name: "A"}, wantErr: "Name must be at least 3"},
		{name: "bad mobile", in: sample{Name: "Asha", Mobile: "98765"}, wantErr: "Mobile must be a 10-digit mobile number"},
		{name: "bad expiry", in: sample{Name: "Asha", Expiry: "13/29"}, wantErr: "Expiry must be in MM/YY format"},
		{name: "bad cvv", in: sample{Name: "Asha", CVV: "12a"}, wantErr: "CVV must be 3 digits"},
		{name: "bad upi", in: sample{Name: "Asha", UPI: "no-at-sign"}, wantErr: "UPI must be a valid UPI ID"},
		{name: "bad method", in: sample{Name: "Asha", Method: "cash"}, wantErr: "Method must be one of: upi card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, codes.InvalidArgument, apperrors.Code(err))
		})
	}
}
