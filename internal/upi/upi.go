package upi

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// PayLink builds the upi://pay deep link the customer app opens or renders
// as a QR. Amounts are whole rupees; UPI wants two decimals on the wire.
func PayLink(vpa string, amount int) string {
	return fmt.Sprintf("upi://pay?pa=%s&am=%d.00&cu=INR", vpa, amount)
}

// QRPNG renders a pay link as a PNG, sized for a phone screen.
func QRPNG(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, 256)
}
