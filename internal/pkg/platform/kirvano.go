package platform

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
)

// Kirvano sends a data object with flat camelCase amount fields
// (data.amount / data.baseAmount) plus nested product and customer objects.
var kirvano = Platform{
	ID: models.PlatformKirvano,
	Matches: func(obj map[string]interface{}) bool {
		data := getMap(obj, "data")
		return hasKey(data, "amount") || hasKey(data, "baseAmount")
	},
	Normalize: func(obj map[string]interface{}) *NormalizedSale {
		data := getMap(obj, "data")
		product := getMap(data, "product")
		customer := getMap(data, "customer")

		amount := firstFloat(data, "amount", "baseAmount")
		base := getFloat(data, "baseAmount")
		if base == 0 {
			base = amount
		}
		fees := getFloat(data, "fees")
		net := getFloat(data, "netAmount")
		if net == 0 && fees > 0 {
			net = amount - fees
		}

		sale := &NormalizedSale{
			TransactionID:     firstString(data, "transactionId", "transaction_id", "id", "saleId"),
			RefID:             firstString(data, "refId", "checkoutId"),
			Amount:            amount,
			BaseAmount:        base,
			Fees:              fees,
			NetAmount:         net,
			Currency:          getString(data, "currency"),
			ProductName:       getString(product, "name"),
			ExternalProductID: getString(product, "id"),
			PaidAt:            getTime(data, "paidAt", "createdAt"),
			PaymentMethod:     firstString(data, "paymentMethod", "payment_method"),
			EventType:         getString(obj, "event"),
			RawStatus:         getString(data, "status"),
			CustomerName:      getString(customer, "name"),
			CustomerEmail:     getString(customer, "email"),
			CustomerPhone:     firstString(customer, "phone", "phoneNumber"),
			IsOrderBump:       getBool(data, "isOrderBump"),
		}
		if sale.RawStatus == "" {
			sale.RawStatus = sale.EventType
		}

		for _, raw := range getSlice(data, "orderBumps") {
			bump, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			sale.OrderBumps = append(sale.OrderBumps, OrderBump{
				Name:   getString(bump, "name"),
				Amount: getFloat(bump, "amount"),
			})
		}

		return sale
	},
}
