package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	maxCaptureDimension = 1280 // Maximum width or height at capture time
	captureQuality      = 85
)

// GetImageOrientation extracts the EXIF orientation from JPEG data using goexif library
func GetImageOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1 // Default orientation if no EXIF data or error
	}

	orientation, err := x.Get(exif.Orientation)
	if err != nil {
		return 1 // Default orientation if orientation tag not found
	}

	orientVal, err := orientation.Int(0)
	if err != nil {
		return 1 // Default orientation if value cannot be read
	}

	return orientVal
}

// CorrectImageOrientation applies the correct orientation to the image
func CorrectImageOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch orientation {
	case 2: // Flip horizontal
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(width-1-x, y, img.At(x, y))
			}
		}
		return newImg
	case 3: // Rotate 180
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(width-1-x, height-1-y, img.At(x, y))
			}
		}
		return newImg
	case 4: // Flip vertical
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(x, height-1-y, img.At(x, y))
			}
		}
		return newImg
	case 6: // Rotate 90 clockwise
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(height-1-y, x, img.At(x, y))
			}
		}
		return newImg
	case 8: // Rotate 90 counter-clockwise
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(y, width-1-x, img.At(x, y))
			}
		}
		return newImg
	default: // Orientation 1 or unknown
		return img
	}
}

// FitInside computes the dimensions of srcW x srcH scaled uniformly to fit
// inside targetW x targetH. Aspect ratio is preserved; the image is never
// stretched or cropped.
func FitInside(srcW, srcH, targetW, targetH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return targetW, targetH
	}

	scaleX := float64(targetW) / float64(srcW)
	scaleY := float64(targetH) / float64(srcH)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	newW := int(float64(srcW) * scale)
	newH := int(float64(srcH) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}

// Reencode decodes image data (JPEG or PNG), scales it uniformly to fit the
// target box and re-encodes it as JPEG at the given quality. The output is
// sized exactly to the fitted dimensions, which is the dominant lever for
// report file size: images are always embedded at their final render box,
// never at native resolution.
func Reencode(data []byte, targetW, targetH, quality int) ([]byte, error) {
	orientation := GetImageOrientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if orientation != 1 {
		img = CorrectImageOrientation(img, orientation)
	}

	bounds := img.Bounds()
	newW, newH := FitInside(bounds.Dx(), bounds.Dy(), targetW, targetH)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode scaled image: %w", err)
	}

	return buf.Bytes(), nil
}

// Dimensions decodes only the image header and returns the pixel dimensions.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Compress applies the capture-time size filter: images larger than
// maxCaptureDimension on either side are scaled down, preserving aspect
// ratio and EXIF orientation, and re-encoded as JPEG. Images already within
// the limit are returned unchanged.
func Compress(data []byte) ([]byte, error) {
	orientation := GetImageOrientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if orientation != 1 {
		img = CorrectImageOrientation(img, orientation)
		log.Infof("Applied orientation correction: %d", orientation)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	if originalWidth <= maxCaptureDimension && originalHeight <= maxCaptureDimension && orientation == 1 {
		return data, nil
	}

	newW, newH := originalWidth, originalHeight
	if originalWidth > maxCaptureDimension || originalHeight > maxCaptureDimension {
		newW, newH = FitInside(originalWidth, originalHeight, maxCaptureDimension, maxCaptureDimension)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: captureQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode compressed image: %w", err)
	}

	compressed := buf.Bytes()
	log.Infof("Image compressed: %d bytes -> %d bytes (quality: %d, original: %dx%d, new: %dx%d, orientation: %d)",
		len(data), len(compressed), captureQuality, originalWidth, originalHeight, newW, newH, orientation)

	return compressed, nil
}
