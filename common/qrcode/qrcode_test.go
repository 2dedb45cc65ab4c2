package qrcode

import (
	"strings"
	"testing"
)

func TestGenerateQRCodePngBytes(t *testing.T) {
	png, err := GenerateQRCodePngBytes("DONOR:1|O+|jane@example.com", 140)
	if err != nil {
		t.Fatalf("GenerateQRCodePngBytes failed: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected PNG bytes")
	}
	// PNG magic number
	if png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Error("output is not a PNG")
	}
}

func TestGenerateQRCodeBase64IsDataURI(t *testing.T) {
	uri, err := GenerateQRCodeBase64("DONOR:1|O+|jane@example.com", 140)
	if err != nil {
		t.Fatalf("GenerateQRCodeBase64 failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Error("output is not a PNG data URI")
	}
}
