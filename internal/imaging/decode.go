// Package imaging converts uploaded image bytes into the canonical frame
// layout the analysis engine consumes.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Frame is a decoded image normalized to 8-bit, 3-channel, BGR order,
// row-major. Built per request and discarded after the analyzer call.
type Frame struct {
	Width  int
	Height int
	Pix    []byte // Width*Height*3 bytes
}

// DecodeError reports a payload that could not be turned into a Frame.
// Its message is safe to embed in a 400 response.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return e.Reason
}

// Decode parses raw image bytes (JPEG, PNG or GIF) into a Frame.
func Decode(data []byte) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("Invalid image format: %s", err)}
	}
	return toBGR(img), nil
}

// DecodeBase64 decodes a base64 payload, tolerating a
// "data:image/...;base64," prefix, then parses it like Decode.
func DecodeBase64(encoded string) (*Frame, error) {
	if i := strings.Index(encoded, ","); i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("Invalid base64 image: %s", err)}
	}
	return Decode(data)
}

// toBGR flattens any source color model to the canonical 3-channel grid.
// The analyzer expects BGR, so the channel swap out of RGB order is
// mandatory here.
func toBGR(img image.Image) *Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	f := &Frame{Width: w, Height: h, Pix: make([]byte, w*h*3)}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			f.Pix[i] = byte(b >> 8)
			f.Pix[i+1] = byte(g >> 8)
			f.Pix[i+2] = byte(r >> 8)
			i += 3
		}
	}
	return f
}
