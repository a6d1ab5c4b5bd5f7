package utils

import (
	"fmt"
	"net/url"
)

// UPIDeepLink builds a upi://pay deep link for the given merchant and
// amount. amountPaise is converted to a decimal rupee string because UPI
// apps expect "am" in rupees with two decimals. The note (tn) typically
// carries the payment reference so the customer can quote it back.
func UPIDeepLink(vpa, payeeName string, amountPaise int64, note string) string {
	v := url.Values{}
	v.Set("pa", vpa)
	v.Set("pn", payeeName)
	v.Set("am", PaiseToRupees(amountPaise))
	v.Set("cu", "INR")
	if note != "" {
		v.Set("tn", note)
	}
	return "upi://pay?" + v.Encode()
}

// PaiseToRupees renders an integer paise amount as a rupee string with
// two decimal places, e.g. 45000 -> "450.00".
func PaiseToRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}
