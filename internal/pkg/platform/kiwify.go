package platform

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
)

// Kiwify posts a flat order object: order_id plus an order_status string,
// PascalCase Product/Customer/Commissions objects and tracking parameters
// under TrackingParameters.
var kiwify = Platform{
	ID: models.PlatformKiwify,
	Matches: func(obj map[string]interface{}) bool {
		return hasKey(obj, "order_status") && firstString(obj, "order_id", "order_ref") != ""
	},
	Normalize: func(obj map[string]interface{}) *NormalizedSale {
		product := getMap(obj, "Product")
		customer := getMap(obj, "Customer")
		commissions := getMap(obj, "Commissions")

		amount := firstFloat(commissions, "charge_amount", "product_base_price")
		base := getFloat(commissions, "product_base_price")
		if base == 0 {
			base = amount
		}
		fees := getFloat(commissions, "kiwify_fee")
		net := getFloat(commissions, "my_commission")
		if net == 0 && fees > 0 {
			net = amount - fees
		}

		sale := &NormalizedSale{
			TransactionID:     getString(obj, "order_id"),
			RefID:             getString(obj, "order_ref"),
			Amount:            amount,
			BaseAmount:        base,
			Fees:              fees,
			NetAmount:         net,
			Currency:          getString(commissions, "currency"),
			ProductName:       getString(product, "product_name"),
			ExternalProductID: getString(product, "product_id"),
			PaidAt:            getTime(obj, "approved_date", "created_at"),
			PaymentMethod:     getString(obj, "payment_method"),
			EventType:         firstString(obj, "webhook_event_type", "order_status"),
			RawStatus:         getString(obj, "order_status"),
			CustomerName:      getString(customer, "full_name"),
			CustomerEmail:     getString(customer, "email"),
			CustomerPhone:     getString(customer, "mobile"),
		}

		return sale
	},
}
