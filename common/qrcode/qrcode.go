package qrcode

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// GenerateQRCodeBase64 generates a QR code as a data URI (PNG format),
// usable directly in an <img src="..."> tag.
func GenerateQRCodeBase64(text string, size int) (string, error) {
	pngBytes, err := GenerateQRCodePngBytes(text, size)
	if err != nil {
		return "", err
	}

	base64Str := base64.StdEncoding.EncodeToString(pngBytes)
	return fmt.Sprintf("data:image/png;base64,%s", base64Str), nil
}

// GenerateQRCodePngBytes generates a QR code as PNG bytes with Medium
// error correction (15% recovery).
func GenerateQRCodePngBytes(text string, size int) ([]byte, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pngBytes, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code PNG: %w", err)
	}

	return pngBytes, nil
}
