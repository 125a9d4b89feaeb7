package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRupees(t *testing.T) {
	assert.Equal(t, int64(29900), FromRupees(299))
	assert.Equal(t, int64(23920), FromRupees(239.2))
	assert.Equal(t, int64(1), FromRupees(0.005))
	assert.Equal(t, int64(0), FromRupees(0))
}

func TestToRupees(t *testing.T) {
	assert.Equal(t, 299.0, ToRupees(29900))
	assert.Equal(t, 239.2, ToRupees(23920))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "₹299", Format(29900))
	assert.Equal(t, "₹239.20", Format(23920))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, int64(5980), Percent(29900, 20))
	assert.Equal(t, int64(0), Percent(0, 20))
}
