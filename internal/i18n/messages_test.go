package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	msgs, err := NewMessages()
	require.NoError(t, err)

	assert.Equal(t, "The requested resource was not found", msgs.T(English, "not_found"))
	assert.Equal(t, "العنصر المطلوب غير موجود", msgs.T(Arabic, "not_found"))
	assert.Equal(t, "The requested resource was not found", msgs.T("fr", "not_found"))
	assert.Equal(t, "missing_id", msgs.T(Arabic, "missing_id"))
	assert.Equal(t,
		"Your order SQ-1 has been received",
		msgs.TData(English, "order_subject", map[string]any{"OrderNumber": "SQ-1"}),
	)
}

func TestMessages_NilReceiver(t *testing.T) {
	var msgs *Messages
	assert.Equal(t, "not_found", msgs.T(English, "not_found"))
}
