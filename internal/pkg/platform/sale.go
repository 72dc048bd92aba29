package platform

import "time"

// Maximum stored lengths for normalized string fields. Payload fields are
// truncated before they ever reach a row, so an oversized upstream value can
// not pollute storage.
const (
	MaxUTMLen         = 200
	MaxNameLen        = 255
	MaxEmailLen       = 200
	MaxTransactionLen = 191
	MaxEventTypeLen   = 120
)

// OrderBump is an additional line item sold alongside the primary product
// in the same transaction.
type OrderBump struct {
	Name   string
	Amount float64
}

// NormalizedSale is the canonical sale record produced by a platform
// normalizer, independent of which checkout platform sent the payload.
//
// Amounts are decimal currency units exactly as the platforms send them
// (26.99 means R$ 26,99). They are never divided by 100: every supported
// platform was observed sending decimal values, not integer cents.
type NormalizedSale struct {
	TransactionID     string
	RefID             string
	Amount            float64
	BaseAmount        float64
	Fees              float64
	NetAmount         float64
	Currency          string
	ProductName       string
	ExternalProductID string
	PaidAt            time.Time
	IsOrderBump       bool
	PaymentMethod     string
	EventType         string // raw platform event/status string, kept for audit
	RawStatus         string // platform status value fed to the classifier
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string

	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMContent  string
	UTMTerm     string

	// ClickID is a direct tracking id (click_id / sck fields only).
	// FallbackTerm is the separately captured utm_term value used by the
	// second and third attribution tiers; it is never promoted to ClickID
	// here.
	ClickID      string
	FallbackTerm string

	OrderBumps []OrderBump
}

// Truncate caps every string field to its declared maximum length.
func (s *NormalizedSale) Truncate() {
	s.TransactionID = truncate(s.TransactionID, MaxTransactionLen)
	s.RefID = truncate(s.RefID, MaxTransactionLen)
	s.Currency = truncate(s.Currency, 8)
	s.ProductName = truncate(s.ProductName, MaxNameLen)
	s.ExternalProductID = truncate(s.ExternalProductID, MaxTransactionLen)
	s.PaymentMethod = truncate(s.PaymentMethod, 50)
	s.EventType = truncate(s.EventType, MaxEventTypeLen)
	s.CustomerName = truncate(s.CustomerName, MaxEmailLen)
	s.CustomerEmail = truncate(s.CustomerEmail, MaxEmailLen)
	s.CustomerPhone = truncate(s.CustomerPhone, 32)
	s.UTMSource = truncate(s.UTMSource, MaxUTMLen)
	s.UTMMedium = truncate(s.UTMMedium, MaxUTMLen)
	s.UTMCampaign = truncate(s.UTMCampaign, MaxUTMLen)
	s.UTMContent = truncate(s.UTMContent, MaxUTMLen)
	s.UTMTerm = truncate(s.UTMTerm, MaxUTMLen)
	s.ClickID = truncate(s.ClickID, 64)
	s.FallbackTerm = truncate(s.FallbackTerm, MaxUTMLen)
	for i := range s.OrderBumps {
		s.OrderBumps[i].Name = truncate(s.OrderBumps[i].Name, MaxNameLen)
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
