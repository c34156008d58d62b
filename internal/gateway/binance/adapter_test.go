package binance

import (
	"testing"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)

	a, err := New(Config{APIKey: "k", APISecret: "s"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "prod", a.Mode())
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, "open", mapStatus(gobinance.OrderStatusTypeNew))
	assert.Equal(t, "open", mapStatus(gobinance.OrderStatusTypePartiallyFilled))
	assert.Equal(t, "filled", mapStatus(gobinance.OrderStatusTypeFilled))
	assert.Equal(t, "canceled", mapStatus(gobinance.OrderStatusTypeCanceled))
	assert.Equal(t, "canceled", mapStatus(gobinance.OrderStatusTypeRejected))
	assert.Equal(t, "canceled", mapStatus(gobinance.OrderStatusTypeExpired))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 50000.25, parseFloat(" 50000.25 "))
	assert.Equal(t, 0.0, parseFloat("garbage"))
	assert.Equal(t, "0.001", formatFloat(0.001))

	assert.Nil(t, optPrice(""))
	p := optPrice("42.5")
	if assert.NotNil(t, p) {
		assert.Equal(t, 42.5, *p)
	}

	id, err := parseOrderID("12345")
	assert.NoError(t, err)
	assert.Equal(t, int64(12345), id)
	_, err = parseOrderID("abc")
	assert.Error(t, err)
}
