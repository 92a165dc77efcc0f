// Package status holds the fixed, ordered set of order and order line statuses.
package status

const (
	NotProcessed = "Not processed"
	Processing   = "Processing"
	Shipped      = "Shipped"
	Delivered    = "Delivered"
	Cancelled    = "Cancelled"
)

// ChargeSucceeded is the charge status that moves a line or order to Processing.
const ChargeSucceeded = "succeeded"

var values = []string{NotProcessed, Processing, Shipped, Delivered, Cancelled}

// Values returns a copy of the enumeration in display order.
func Values() []string {
	v := make([]string, len(values))
	copy(v, values)
	return v
}

func IsValid(s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
