package browser

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestParseImageDataURL(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4E, 0x47} // PNG magic
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	data, err := ParseImageDataURL(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, raw) {
		t.Errorf("decoded bytes mismatch: %v", data)
	}
}

func TestParseImageDataURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"regular URL", "https://example.com/captcha.png"},
		{"empty", ""},
		{"no payload", "data:image/png;base64,"},
		{"no comma", "data:image/png;base64"},
		{"bad base64", "data:image/png;base64,@@@@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseImageDataURL(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrCaptchaImage) {
				t.Errorf("expected ErrCaptchaImage, got %v", err)
			}
		})
	}
}
