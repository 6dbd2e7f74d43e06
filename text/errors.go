package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrNilDevice is returned when a renderer is created without a device.
	ErrNilDevice = errors.New("text: nil device")

	// ErrNoFontTexture is returned when a font is given without its atlas texture.
	ErrNoFontTexture = errors.New("text: font given without atlas texture")
)
