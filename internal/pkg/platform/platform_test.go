package platform

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodrigoFalk/LinkPulse/app/models"
)

func decodeFixture(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))
	return obj
}

const hotmartFixture = `{
	"event": "PURCHASE_APPROVED",
	"data": {
		"purchase": {
			"transaction": "HP123456789",
			"status": "APPROVED",
			"order_date": 1723645800000,
			"price": {"value": 26.99, "currency_value": "BRL"},
			"payment": {"type": "PIX"},
			"origin": {"sck": "clk_abc123"}
		},
		"product": {"id": 4487000, "name": "Curso de Marketing"},
		"buyer": {"name": "Maria Souza", "email": "maria@example.com", "checkout_phone": "11999990000"}
	}
}`

const kirvanoFixture = `{
	"event": "SALE_APPROVED",
	"data": {
		"transactionId": "KV-9911",
		"status": "approved",
		"amount": 97.00,
		"baseAmount": 97.00,
		"fees": 7.76,
		"paymentMethod": "credit_card",
		"product": {"id": "prod_55", "name": "Mentoria"},
		"customer": {"name": "Joao Lima", "email": "joao@example.com"},
		"checkout": {"utm_source": "facebook", "utm_medium": "cpc", "utm_term": "clk_kv1"},
		"orderBumps": [{"name": "Ebook Extra", "amount": 19.90}]
	}
}`

const kiwifyFixture = `{
	"order_id": "KW-3001",
	"order_ref": "ref-3001",
	"order_status": "paid",
	"webhook_event_type": "order_approved",
	"payment_method": "boleto",
	"approved_date": "2024-08-14 12:30:00",
	"Product": {"product_id": "kw_prod_9", "product_name": "Planilha Financeira"},
	"Customer": {"full_name": "Ana Costa", "email": "ana@example.com", "mobile": "21988887777"},
	"Commissions": {"charge_amount": 26.99, "kiwify_fee": 2.43, "my_commission": 24.56, "currency": "BRL"},
	"TrackingParameters": {"utm_source": "instagram", "utm_term": "clk_kw1"}
}`

func TestDetect_DeclaredPlatformOverridesHeuristic(t *testing.T) {
	obj := decodeFixture(t, hotmartFixture)
	assert.Equal(t, models.PlatformKirvano, Detect(obj, models.PlatformKirvano))
	assert.Equal(t, models.PlatformHotmart, Detect(obj, models.PlatformAuto))
	assert.Equal(t, models.PlatformHotmart, Detect(obj, ""))
}

func TestDetect_EventPrefixes(t *testing.T) {
	assert.Equal(t, models.PlatformHotmart, Detect(map[string]interface{}{"event": "PURCHASE_REFUNDED"}, models.PlatformAuto))
	assert.Equal(t, models.PlatformKirvano, Detect(map[string]interface{}{"event": "SALE_CHARGEBACK"}, models.PlatformAuto))
	assert.Equal(t, models.PlatformKiwify, Detect(map[string]interface{}{"webhook_event_type": "order_refunded"}, models.PlatformAuto))
	assert.Equal(t, models.PlatformUnknown, Detect(map[string]interface{}{"hello": "world"}, models.PlatformAuto))
}

func TestNormalize_Hotmart(t *testing.T) {
	sale, platformID, ok := Normalize(decodeFixture(t, hotmartFixture))
	require.True(t, ok)
	assert.Equal(t, models.PlatformHotmart, platformID)

	assert.Equal(t, "HP123456789", sale.TransactionID)
	assert.Equal(t, 26.99, sale.Amount)
	assert.Equal(t, "BRL", sale.Currency)
	assert.Equal(t, "Curso de Marketing", sale.ProductName)
	assert.Equal(t, "4487000", sale.ExternalProductID)
	assert.Equal(t, "PIX", sale.PaymentMethod)
	assert.Equal(t, "APPROVED", sale.RawStatus)
	assert.Equal(t, "PURCHASE_APPROVED", sale.EventType)
	assert.Equal(t, "maria@example.com", sale.CustomerEmail)
	assert.Equal(t, "clk_abc123", sale.ClickID)
	assert.False(t, sale.PaidAt.IsZero())
}

// Amount fidelity: platform values are decimal currency units and must be
// stored verbatim, never divided by 100.
func TestNormalize_AmountIsDecimalCurrencyUnits(t *testing.T) {
	sale, _, ok := Normalize(decodeFixture(t, hotmartFixture))
	require.True(t, ok)
	assert.Equal(t, 26.99, sale.Amount)
	assert.NotEqual(t, 0.2699, sale.Amount)
	assert.NotEqual(t, 2699.0, sale.Amount)
}

func TestNormalize_Kirvano(t *testing.T) {
	sale, platformID, ok := Normalize(decodeFixture(t, kirvanoFixture))
	require.True(t, ok)
	assert.Equal(t, models.PlatformKirvano, platformID)

	assert.Equal(t, "KV-9911", sale.TransactionID)
	assert.Equal(t, 97.00, sale.Amount)
	assert.Equal(t, 7.76, sale.Fees)
	assert.InDelta(t, 89.24, sale.NetAmount, 0.001)
	assert.Equal(t, "approved", sale.RawStatus)
	require.Len(t, sale.OrderBumps, 1)
	assert.Equal(t, "Ebook Extra", sale.OrderBumps[0].Name)
	assert.Equal(t, 19.90, sale.OrderBumps[0].Amount)

	// UTM block from data.checkout, the first location with a source anchor.
	assert.Equal(t, "facebook", sale.UTMSource)
	assert.Equal(t, "cpc", sale.UTMMedium)
	assert.Equal(t, "clk_kv1", sale.UTMTerm)
	assert.Equal(t, "clk_kv1", sale.FallbackTerm)
	assert.Empty(t, sale.ClickID, "utm_term must never be promoted to a direct click id")
}

func TestNormalize_Kiwify(t *testing.T) {
	sale, platformID, ok := Normalize(decodeFixture(t, kiwifyFixture))
	require.True(t, ok)
	assert.Equal(t, models.PlatformKiwify, platformID)

	assert.Equal(t, "KW-3001", sale.TransactionID)
	assert.Equal(t, "ref-3001", sale.RefID)
	assert.Equal(t, 26.99, sale.Amount)
	assert.Equal(t, 24.56, sale.NetAmount)
	assert.Equal(t, "paid", sale.RawStatus)
	assert.Equal(t, "order_approved", sale.EventType)
	assert.Equal(t, "instagram", sale.UTMSource)
	assert.Equal(t, "clk_kw1", sale.FallbackTerm)
}

func TestNormalize_UnknownShape(t *testing.T) {
	_, _, ok := Normalize(decodeFixture(t, `{"hello": "world", "amount": 10}`))
	assert.False(t, ok)
}

func TestNormalize_MislabeledWebhookStillNormalizesByShape(t *testing.T) {
	// Shape is Hotmart regardless of what the webhook declares; Normalize
	// probes shapes, not labels.
	sale, platformID, ok := Normalize(decodeFixture(t, hotmartFixture))
	require.True(t, ok)
	assert.Equal(t, models.PlatformHotmart, platformID)
	assert.Equal(t, "HP123456789", sale.TransactionID)
}

func TestUnwrapData_ArrayWrappedSale(t *testing.T) {
	obj := decodeFixture(t, `{"event": "SALE_APPROVED", "data": [{"amount": 50.0, "transactionId": "KV-1", "status": "approved"}]}`)
	sale, _, ok := Normalize(UnwrapData(obj))
	require.True(t, ok)
	assert.Equal(t, "KV-1", sale.TransactionID)
	assert.Equal(t, 50.0, sale.Amount)
}

func TestNormalize_DefaultCurrency(t *testing.T) {
	obj := decodeFixture(t, `{"event": "SALE_APPROVED", "data": {"amount": 10.0, "transactionId": "KV-2", "status": "approved"}}`)
	sale, _, ok := Normalize(obj)
	require.True(t, ok)
	assert.Equal(t, "BRL", sale.Currency)
}

func TestNormalize_TruncatesOversizedFields(t *testing.T) {
	longTerm := strings.Repeat("x", 500)
	obj := decodeFixture(t, `{"event": "SALE_APPROVED", "data": {"amount": 10.0, "transactionId": "KV-3", "status": "approved"}}`)
	obj["utm_source"] = "google"
	obj["utm_term"] = longTerm

	sale, _, ok := Normalize(obj)
	require.True(t, ok)
	assert.Len(t, sale.UTMTerm, MaxUTMLen)
	assert.Len(t, sale.FallbackTerm, MaxUTMLen)
}

func TestExtractTracking_NeverMixesLocations(t *testing.T) {
	// Top level has the anchor; data.checkout has a medium but no source.
	// The medium from the other location must not leak in.
	obj := decodeFixture(t, `{
		"event": "SALE_APPROVED",
		"utm_source": "google",
		"data": {
			"amount": 10.0,
			"transactionId": "KV-4",
			"status": "approved",
			"checkout": {"utm_medium": "cpc"}
		}
	}`)

	sale, _, ok := Normalize(obj)
	require.True(t, ok)
	assert.Equal(t, "google", sale.UTMSource)
	assert.Empty(t, sale.UTMMedium)
}
