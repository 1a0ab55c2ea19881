package storage

import (
	"strings"
	"testing"
)

func TestReceiptObjectKey(t *testing.T) {
	key := ReceiptObjectKey(7, 42, "original", ".PNG")

	if !strings.HasPrefix(key, "receipts/7/42/") {
		t.Errorf("expected receipts/7/42/ prefix, got %s", key)
	}
	if !strings.HasSuffix(key, "_original.png") {
		t.Errorf("expected lowercased _original.png suffix, got %s", key)
	}
	if ReceiptObjectKey(7, 42, "original", ".png") == ReceiptObjectKey(7, 42, "original", ".png") {
		t.Error("expected unique keys per call")
	}
}
