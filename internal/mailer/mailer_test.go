package mailer

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/invoice"
	"backend/internal/models"
)

func configuredSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		User: "noreply@example.com",
		Pass: "secret",
		From: "noreply@example.com",
	}
}

func sampleOrder() models.Order {
	return models.Order{
		OrderNumber: "ORD-1700000000000-A1B2C3D4E",
		Customer: models.OrderCustomer{
			FullName: "Ayşe Yılmaz",
			Email:    "ayse@example.com",
		},
		Total:     1000,
		CreatedAt: time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestSendInvoiceSkippedWhenUnconfigured(t *testing.T) {
	d := New(config.SMTPConfig{}, zap.NewNop())

	result, err := d.SendInvoice(context.Background(), sampleOrder(), []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, result)
}

func TestSendInvoiceSkippedWithoutCustomerEmail(t *testing.T) {
	d := New(configuredSMTP(), zap.NewNop())
	d.send = func(string, []byte) error {
		t.Fatal("send must not be called without a recipient")
		return nil
	}

	order := sampleOrder()
	order.Customer.Email = "  "

	result, err := d.SendInvoice(context.Background(), order, []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, result)
}

func TestSendInvoiceMessage(t *testing.T) {
	d := New(configuredSMTP(), zap.NewNop())

	var gotTo string
	var gotMsg []byte
	d.send = func(to string, msg []byte) error {
		gotTo = to
		gotMsg = msg
		return nil
	}

	pdf := []byte("%PDF-1.7 fake invoice body")
	result, err := d.SendInvoice(context.Background(), sampleOrder(), pdf)

	require.NoError(t, err)
	assert.Equal(t, ResultSent, result)
	assert.Equal(t, "ayse@example.com", gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "From: noreply@example.com")
	assert.Contains(t, msg, "To: ayse@example.com")
	assert.Contains(t, msg, "Subject: Faturanız - ORD-1700000000000-A1B2C3D4E")
	assert.Contains(t, msg, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, msg, `attachment; filename="fatura-ORD-1700000000000-A1B2C3D4E.pdf"`)

	// Gross total, VAT included, appears in the HTML body.
	assert.Contains(t, msg, "1.200,00 TL")
	assert.Contains(t, msg, "Sayın Ayşe Yılmaz")

	// Attachment bytes travel base64 encoded.
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString(pdf))
}

func TestSendInvoiceBodyTotalMatchesInvoice(t *testing.T) {
	d := New(configuredSMTP(), zap.NewNop())

	var gotMsg []byte
	d.send = func(_ string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	order := sampleOrder()
	order.Total = 333.335

	_, err := d.SendInvoice(context.Background(), order, []byte("%PDF"))
	require.NoError(t, err)

	// Per-step decimal rounding, same as the PDF: 333.34 + 66.67.
	assert.Contains(t, string(gotMsg), "400,01 TL")
	assert.Contains(t, string(gotMsg), invoice.GrandTotalAmount(order.Total))
}

func TestSendInvoiceFailedOnTransportError(t *testing.T) {
	d := New(configuredSMTP(), zap.NewNop())
	d.send = func(string, []byte) error {
		return assert.AnError
	}

	result, err := d.SendInvoice(context.Background(), sampleOrder(), []byte("%PDF"))

	require.Error(t, err)
	assert.Equal(t, ResultFailed, result)
}

func TestSendInvoiceFailedOnCancelledContext(t *testing.T) {
	d := New(configuredSMTP(), zap.NewNop())
	d.send = func(string, []byte) error {
		t.Fatal("send must not be called after cancellation")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := d.SendInvoice(ctx, sampleOrder(), []byte("%PDF"))

	require.Error(t, err)
	assert.Equal(t, ResultFailed, result)
}

func TestBuildMessageBase64LineLength(t *testing.T) {
	msg, err := buildMessage("a@b.c", "d@e.f", "s", []byte("<p>hi</p>"), "f.pdf", make([]byte, 4096))
	require.NoError(t, err)

	inAttachment := false
	for _, line := range strings.Split(string(msg), "\r\n") {
		if strings.Contains(line, "Content-Transfer-Encoding: base64") {
			inAttachment = true
			continue
		}
		if inAttachment && strings.HasPrefix(line, "--") {
			break
		}
		if inAttachment && len(line) > 76 {
			t.Fatalf("base64 line exceeds 76 columns: %d", len(line))
		}
	}
}
