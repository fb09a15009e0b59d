package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ProfilePictureSize bounds both sides of a stored profile picture.
const ProfilePictureSize = 256

// ProfilePictureContentType is the type of every stored profile picture.
const ProfilePictureContentType = "image/jpeg"

var ErrInvalidImage = errors.New("invalid image")

// ProfilePictureObject is the object key of a user's picture. One per user;
// uploads overwrite.
func ProfilePictureObject(userID string) string {
	return "profile-pictures/" + userID + ".jpg"
}

// NormalizeProfilePicture decodes a GIF, JPEG or PNG, fits it inside a
// ProfilePictureSize square keeping the aspect ratio, and re-encodes it as JPEG.
// Smaller images are not upscaled.
func NormalizeProfilePicture(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	fitted := imaging.Fit(img, ProfilePictureSize, ProfilePictureSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
