package mailer

import "fmt"

var statusLabels = map[string]string{
	"pending":    "Pending",
	"assembling": "Being assembled",
	"shipped":    "Shipped",
	"delivered":  "Delivered",
	"canceled":   "Canceled",
}

// OrderConfirmation builds the body sent right after checkout.
func OrderConfirmation(name, orderNumber, address, total string) (subject, body string) {
	subject = fmt.Sprintf("Order confirmation #%s", orderNumber)
	body = fmt.Sprintf(
		"Hello, %s!\n\n"+
			"Your order #%s has been placed successfully.\n"+
			"Delivery address: %s\n"+
			"Order total: %s\n\n"+
			"We will let you know when the status of your order changes.",
		name, orderNumber, address, total,
	)
	return subject, body
}

// OrderStatusUpdate builds the body sent on an admin status transition.
func OrderStatusUpdate(name, orderNumber, status string) (subject, body string) {
	label, ok := statusLabels[status]
	if !ok {
		label = status
	}
	subject = fmt.Sprintf("Order #%s status update", orderNumber)
	body = fmt.Sprintf(
		"Hello, %s!\n\n"+
			"The status of your order #%s has changed to: %s.",
		name, orderNumber, label,
	)
	return subject, body
}

// InactivityReminder builds the "we miss you" body for idle accounts.
func InactivityReminder(name string) (subject, body string) {
	subject = "We miss you!"
	body = fmt.Sprintf(
		"Hello, %s!\n\n"+
			"We noticed you have not visited our store for a while. "+
			"A lot of new products have arrived that might interest you.\n\n"+
			"Visit the site to see what is new and check the current deals!",
		name,
	)
	return subject, body
}
