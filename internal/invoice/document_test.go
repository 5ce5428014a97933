package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:          primitive.NewObjectID(),
		OrderNumber: "ORD-1700000000000-A1B2C3D4E",
		Customer: models.OrderCustomer{
			FullName: "Ayşe Yılmaz",
			Email:    "ayse@example.com",
			Address:  "Çiçek Sok. No: 5",
			City:     "İstanbul",
		},
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Çelik Kapı", Price: 750, Quantity: 1},
			{ProductID: "p2", Name: "Pencere Doğraması", Price: 125, Quantity: 2},
		},
		Total:     1000,
		Status:    models.OrderStatusPending,
		CreatedAt: time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestBuildDocumentTotals(t *testing.T) {
	doc := BuildDocument(sampleOrder(), DefaultCompany)

	assert.Equal(t, "1.000,00 TL", doc.Subtotal)
	assert.Equal(t, "200,00 TL", doc.Tax)
	assert.Equal(t, "1.200,00 TL", doc.GrandTotal)
}

func TestBuildDocumentDates(t *testing.T) {
	doc := BuildDocument(sampleOrder(), DefaultCompany)

	assert.Equal(t, "10/01/2026 14:30", doc.IssueDate)
	assert.Equal(t, "09/02/2026", doc.DueDate)
}

func TestBuildDocumentLines(t *testing.T) {
	doc := BuildDocument(sampleOrder(), DefaultCompany)

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, []string{"Çelik Kapı"}, doc.Lines[0].Description)
	assert.Equal(t, "750,00 TL", doc.Lines[0].UnitPrice)
	assert.Equal(t, "750,00 TL", doc.Lines[0].LineTotal)
	assert.False(t, doc.Lines[0].Shaded)

	assert.Equal(t, 2, doc.Lines[1].Quantity)
	assert.Equal(t, "250,00 TL", doc.Lines[1].LineTotal)
	assert.True(t, doc.Lines[1].Shaded)

	assert.Zero(t, doc.OmittedRows)
}

func TestBuildDocumentRowCapacity(t *testing.T) {
	order := sampleOrder()
	order.Items = nil
	for i := 0; i < 15; i++ {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: "p", Name: "Kalem", Price: 10, Quantity: 1,
		})
	}

	doc := BuildDocument(order, DefaultCompany)

	assert.Len(t, doc.Lines, maxTableRows)
	assert.Equal(t, 3, doc.OmittedRows)
}

func TestBuildDocumentNumberFallsBackToID(t *testing.T) {
	order := sampleOrder()
	order.OrderNumber = "  "

	doc := BuildDocument(order, DefaultCompany)

	assert.Equal(t, order.ID.Hex(), doc.Number)
}

func TestBuildDocumentCustomerBlock(t *testing.T) {
	doc := BuildDocument(sampleOrder(), DefaultCompany)

	assert.Equal(t, "Ayşe Yılmaz", doc.Customer.Name)
	assert.Contains(t, doc.Customer.Lines, "ayse@example.com")
}

func TestGrandTotalAmountMatchesDocument(t *testing.T) {
	// Totals chosen so that naive float multiplication by 1.20 rounds
	// differently than per-step decimal rounding.
	for _, total := range []float64{1000, 333.335, 0.125, 999.995} {
		order := sampleOrder()
		order.Total = total

		doc := BuildDocument(order, DefaultCompany)
		assert.Equal(t, doc.GrandTotal, GrandTotalAmount(total), "total %v", total)
	}
}

func TestGrandTotalAmount(t *testing.T) {
	assert.Equal(t, "1.200,00 TL", GrandTotalAmount(1000))
	assert.Equal(t, "400,01 TL", GrandTotalAmount(333.335))
	assert.Equal(t, "0,16 TL", GrandTotalAmount(0.125))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0,00 TL"},
		{5, "5,00 TL"},
		{999.9, "999,90 TL"},
		{1200, "1.200,00 TL"},
		{1234567.891, "1.234.567,89 TL"},
		{-1500, "-1.500,00 TL"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.value), "FormatAmount(%v)", tt.value)
	}
}
