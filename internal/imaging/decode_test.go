package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeConvertsToBGR(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 128, B: 255, A: 255})

	frame, err := Decode(encodePNG(t, img))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if frame.Width != 2 || frame.Height != 1 {
		t.Fatalf("unexpected dimensions %dx%d", frame.Width, frame.Height)
	}
	if len(frame.Pix) != 6 {
		t.Fatalf("expected 6 pixel bytes, got %d", len(frame.Pix))
	}

	// Pure red must land as B=0, G=0, R=255.
	want := []byte{0, 0, 255, 255, 128, 0}
	for i, b := range want {
		if frame.Pix[i] != b {
			t.Errorf("Pix[%d] = %d, want %d", i, frame.Pix[i], b)
		}
	}
}

func TestDecodeGrayscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetGray(x, y, color.Gray{Y: 100})
		}
	}

	frame, err := Decode(encodePNG(t, img))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(frame.Pix) != 3*3*3 {
		t.Fatalf("grayscale source not expanded to 3 channels, got %d bytes", len(frame.Pix))
	}
	for i, b := range frame.Pix {
		if b != 100 {
			t.Fatalf("Pix[%d] = %d, want 100", i, b)
		}
	}
}

func TestDecodeInvalidBytes(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	if err == nil {
		t.Fatal("expected error for invalid image bytes")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if !strings.HasPrefix(decodeErr.Reason, "Invalid image format:") {
		t.Errorf("unexpected message: %q", decodeErr.Reason)
	}
}

func TestDecodeBase64RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: byte(x * 50), G: byte(y * 50), B: 200, A: 255})
		}
	}
	raw := encodePNG(t, img)

	direct, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	encoded := base64.StdEncoding.EncodeToString(raw)
	for _, input := range []string{encoded, "data:image/png;base64," + encoded} {
		frame, err := DecodeBase64(input)
		if err != nil {
			t.Fatalf("DecodeBase64 failed: %v", err)
		}
		if !bytes.Equal(frame.Pix, direct.Pix) {
			t.Error("base64 round trip does not match direct decode")
		}
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	_, err := DecodeBase64("not-base64!!")
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if !strings.HasPrefix(decodeErr.Reason, "Invalid base64 image:") {
		t.Errorf("unexpected message: %q", decodeErr.Reason)
	}
}
