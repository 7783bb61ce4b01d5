package scanning

import (
	"fmt"

	zxinggo "github.com/ericlevine/zxinggo"
	"github.com/ericlevine/zxinggo/binarizer"

	// Register format readers.
	_ "github.com/ericlevine/zxinggo/aztec"
	_ "github.com/ericlevine/zxinggo/datamatrix"
	_ "github.com/ericlevine/zxinggo/oned"
	_ "github.com/ericlevine/zxinggo/pdf417"
	_ "github.com/ericlevine/zxinggo/qrcode"
)

// detectFormats lists every format the detector attempts, most common first.
var detectFormats = []zxinggo.Format{
	zxinggo.FormatQRCode,
	zxinggo.FormatEAN13,
	zxinggo.FormatEAN8,
	zxinggo.FormatUPCA,
	zxinggo.FormatUPCE,
	zxinggo.FormatCode128,
	zxinggo.FormatCode39,
	zxinggo.FormatCode93,
	zxinggo.FormatITF,
	zxinggo.FormatCodabar,
	zxinggo.FormatPDF417,
	zxinggo.FormatDataMatrix,
	zxinggo.FormatAztec,
}

// symbologyForFormat maps the vision library's format enumeration onto
// candidate symbology tags.
func symbologyForFormat(f zxinggo.Format) Symbology {
	switch f {
	case zxinggo.FormatQRCode:
		return SymbologyQRCode
	case zxinggo.FormatAztec:
		return SymbologyAztec
	case zxinggo.FormatCodabar:
		return SymbologyCodabar
	case zxinggo.FormatCode39:
		return SymbologyCode39
	case zxinggo.FormatCode93:
		return SymbologyCode93
	case zxinggo.FormatCode128:
		return SymbologyCode128
	case zxinggo.FormatDataMatrix:
		return SymbologyDataMatrix
	case zxinggo.FormatEAN8:
		return SymbologyEAN8
	case zxinggo.FormatEAN13:
		return SymbologyEAN13
	case zxinggo.FormatITF:
		return SymbologyITF
	case zxinggo.FormatPDF417:
		return SymbologyPDF417
	case zxinggo.FormatUPCA:
		return SymbologyUPCA
	case zxinggo.FormatUPCE:
		return SymbologyUPCE
	default:
		// Formats outside the fixed enumeration keep their library name
		// and render as "Unknown" downstream.
		return Symbology(f.String())
	}
}

// ZXing implements the Detector interface using the zxinggo barcode library
type ZXing struct {
	tryHarder bool
}

// NewZXing creates a new ZXing Detector instance. tryHarder trades decode
// time for better detection on noisy frames.
func NewZXing(tryHarder bool) (*ZXing, error) {
	return &ZXing{tryHarder: tryHarder}, nil
}

// DetectFrame analyzes a frame and returns one candidate per distinct
// barcode found in it
func (z *ZXing) DetectFrame(frameData []byte, contentType string) ([]Candidate, error) {
	img, err := frameImage(frameData, contentType)
	if err != nil {
		return nil, err
	}

	source := zxinggo.NewImageLuminanceSource(img)

	// Try the GlobalHistogram binarizer first (fast, works well for clean
	// images), then fall back to the Hybrid binarizer (local adaptive
	// thresholding, better for photographs with uneven lighting).
	bitmaps := []*zxinggo.BinaryBitmap{
		zxinggo.NewBinaryBitmap(binarizer.NewGlobalHistogram(source)),
		zxinggo.NewBinaryBitmap(binarizer.NewHybrid(source)),
	}

	var candidates []Candidate
	seen := map[string]bool{}

	for _, bitmap := range bitmaps {
		for _, format := range detectFormats {
			opts := &zxinggo.DecodeOptions{
				TryHarder:       z.tryHarder,
				PossibleFormats: []zxinggo.Format{format},
			}

			result, err := tryDecode(bitmap, opts)
			if err != nil {
				continue
			}
			key := fmt.Sprintf("%s:%s", result.Format, result.Text)
			if seen[key] {
				continue
			}
			seen[key] = true

			text := result.Text
			candidates = append(candidates, Candidate{
				RawText:   &text,
				Symbology: symbologyForFormat(result.Format),
			})
		}
	}

	return candidates, nil
}

// tryDecode calls zxinggo.Decode but recovers from panics that decoders may
// raise on malformed input, converting them to errors.
func tryDecode(bitmap *zxinggo.BinaryBitmap, opts *zxinggo.DecodeOptions) (result *zxinggo.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return zxinggo.Decode(bitmap, opts)
}

// Close closes the ZXing detector (no-op, the library holds no resources)
func (z *ZXing) Close() error {
	return nil
}
