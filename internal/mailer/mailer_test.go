package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmation(t *testing.T) {
	subject, body, err := Render(OrderConfirmationTemplate, OrderEmail{
		Subject:     "Order SOUQ-AAAA-1234 confirmed",
		Dir:         "rtl",
		Greeting:    "مرحبا",
		OrderNumber: "SOUQ-AAAA-1234",
		Lines:       []OrderLine{{Name: "تمر", Quantity: 2, LineTotal: "25.00"}},
		Total:       "25.00",
		Currency:    "SAR",
	})
	require.NoError(t, err)

	assert.Equal(t, "Order SOUQ-AAAA-1234 confirmed", subject)
	assert.Contains(t, body, `dir="rtl"`)
	assert.Contains(t, body, "تمر")
	assert.Contains(t, body, "25.00 SAR")
	assert.NotContains(t, body, "<p>- ")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("missing.tmpl", nil)
	assert.Error(t, err)
}

func TestNewSMTPRequiresHost(t *testing.T) {
	_, err := NewSMTP("", 587, "", "", "shop@example.com")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
