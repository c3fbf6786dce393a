package booking

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// ConfirmationQR renders the booking id as a PNG QR code.
func ConfirmationQR(requestID string) ([]byte, error) {
	png, err := qrcode.Encode(requestID, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode confirmation qr failed: %w", err)
	}
	return png, nil
}
