package platform

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
)

// Hotmart wraps everything in data.purchase: transaction id, price object,
// status, payment and the order-bump flag all live there, with product and
// buyer as siblings.
var hotmart = Platform{
	ID: models.PlatformHotmart,
	Matches: func(obj map[string]interface{}) bool {
		data := getMap(obj, "data")
		return getMap(data, "purchase") != nil
	},
	Normalize: func(obj map[string]interface{}) *NormalizedSale {
		data := getMap(obj, "data")
		purchase := getMap(data, "purchase")
		price := getMap(purchase, "price")
		payment := getMap(purchase, "payment")
		product := getMap(data, "product")
		buyer := getMap(data, "buyer")

		amount := getFloat(price, "value")
		base := getFloat(getMap(purchase, "original_offer_price"), "value")
		if base == 0 {
			base = amount
		}

		sale := &NormalizedSale{
			TransactionID:     firstString(purchase, "transaction", "transaction_id"),
			RefID:             getString(purchase, "order_ref"),
			Amount:            amount,
			BaseAmount:        base,
			Currency:          firstString(price, "currency_value", "currency_code"),
			ProductName:       getString(product, "name"),
			ExternalProductID: firstString(product, "id", "ucode"),
			PaidAt:            getTime(purchase, "approved_date", "order_date"),
			PaymentMethod:     getString(payment, "type"),
			EventType:         getString(obj, "event"),
			RawStatus:         getString(purchase, "status"),
			CustomerName:      getString(buyer, "name"),
			CustomerEmail:     getString(buyer, "email"),
			CustomerPhone:     firstString(buyer, "checkout_phone", "phone"),
			IsOrderBump:       getBool(getMap(purchase, "order_bump"), "is_order_bump"),
		}
		if sale.RawStatus == "" {
			sale.RawStatus = sale.EventType
		}

		// Commission entries flagged as order bumps become extra line items.
		for _, raw := range getSlice(data, "order_bumps") {
			bump, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			sale.OrderBumps = append(sale.OrderBumps, OrderBump{
				Name:   getString(bump, "name"),
				Amount: getFloat(bump, "value"),
			})
		}

		return sale
	},
}
