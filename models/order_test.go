package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supply-order-service/models"
)

func TestComputeAmounts(t *testing.T) {
	o := &models.Order{
		Items: []models.LineItem{
			{ProductID: primitive.NewObjectID(), Quantity: 2, UnitPrice: 10.5},
			{ProductID: primitive.NewObjectID(), Quantity: 3, UnitPrice: 4},
		},
		Discount:  5,
		TaxAmount: 2,
	}

	o.ComputeAmounts()

	assert.Equal(t, 21.0, o.Items[0].LineTotal)
	assert.Equal(t, 12.0, o.Items[1].LineTotal)
	assert.Equal(t, 33.0, o.TotalAmount)
	assert.Equal(t, 30.0, o.FinalAmount) // 33 - 5 + 2
}

func TestComputeAmounts_OverwritesClientValues(t *testing.T) {
	o := &models.Order{
		Items:       []models.LineItem{{Quantity: 1, UnitPrice: 10, LineTotal: 9999}},
		TotalAmount: 9999,
		FinalAmount: 9999,
	}

	o.ComputeAmounts()

	assert.Equal(t, 10.0, o.Items[0].LineTotal)
	assert.Equal(t, 10.0, o.TotalAmount)
	assert.Equal(t, 10.0, o.FinalAmount)
}

func TestComposeFullAddress(t *testing.T) {
	a := &models.ShippingAddress{
		Street:     "12 Market Rd",
		City:       "Pune",
		State:      "",
		PostalCode: "411001",
		Country:    "IN",
	}

	a.ComposeFullAddress()
	assert.Equal(t, "12 Market Rd, Pune, 411001, IN", a.FullAddress)
}

func TestComposeFullAddress_TrimsWhitespaceParts(t *testing.T) {
	a := &models.ShippingAddress{Street: "  5 Dock St ", City: "   ", Country: "GB"}

	a.ComposeFullAddress()
	assert.Equal(t, "5 Dock St, GB", a.FullAddress)
}

func TestNewOrderNumber(t *testing.T) {
	n1 := models.NewOrderNumber()
	n2 := models.NewOrderNumber()

	assert.True(t, strings.HasPrefix(n1, "WO-"))
	assert.NotEqual(t, n1, n2)

	parts := strings.SplitN(n1, "-", 3)
	assert.Len(t, parts, 3)
	assert.Len(t, parts[2], 8)
}

func TestFormatNote(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	note := models.FormatNote(at, "damaged packaging")
	assert.Equal(t, "[2025-03-14T09:26:53Z] damaged packaging", note)
}
