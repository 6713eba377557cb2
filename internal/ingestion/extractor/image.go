package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/platform/openai"
)

// OCRInstruction is sent with every image.
const OCRInstruction = "You are an OCR model that extracts text from images accurately. " +
	"Return EITHER the extracted text OR a description of the image if no text is found."

var imageFormats = []string{"png", "jpeg", "jpg", "gif", "webp", "bmp", "tiff", "tif"}

type imageExtractor struct {
	vision Vision
	log    *logger.Logger
}

func (e *imageExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	payload, mime, err := normalizeImage(data)
	if err != nil {
		return "", err
	}
	url := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
	text, err := e.vision.DescribeImage(ctx, OCRInstruction, openai.ImageInput{ImageURL: url})
	if err != nil {
		return "", perrors.Completion("ocr", err)
	}
	return text, nil
}

// normalizeImage re-encodes formats the vision API does not take as PNG.
func normalizeImage(data []byte) ([]byte, string, error) {
	mime := sniffImage(data)
	var decode func(r *bytes.Reader) (image.Image, error)
	switch mime {
	case "image/png", "image/jpeg", "image/gif":
		return data, mime, nil
	case "image/bmp":
		decode = func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }
	case "image/tiff":
		decode = func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }
	case "image/webp":
		decode = func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) }
	default:
		return nil, "", fmt.Errorf("unrecognized image bytes (%s)", mime)
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", mime, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

func sniffImage(data []byte) string {
	if len(data) >= 4 {
		if (data[0] == 'I' && data[1] == 'I' && data[2] == 42 && data[3] == 0) ||
			(data[0] == 'M' && data[1] == 'M' && data[2] == 0 && data[3] == 42) {
			return "image/tiff"
		}
	}
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return mime
}
