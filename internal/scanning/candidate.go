package scanning

// Symbology identifies the barcode/QR encoding standard of a decoded
// candidate.
type Symbology string

const (
	SymbologyQRCode     Symbology = "QR_CODE"
	SymbologyAztec      Symbology = "AZTEC"
	SymbologyCodabar    Symbology = "CODABAR"
	SymbologyCode39     Symbology = "CODE_39"
	SymbologyCode93     Symbology = "CODE_93"
	SymbologyCode128    Symbology = "CODE_128"
	SymbologyDataMatrix Symbology = "DATA_MATRIX"
	SymbologyEAN8       Symbology = "EAN_8"
	SymbologyEAN13      Symbology = "EAN_13"
	SymbologyITF        Symbology = "ITF"
	SymbologyPDF417     Symbology = "PDF417"
	SymbologyUPCA       Symbology = "UPC_A"
	SymbologyUPCE       Symbology = "UPC_E"
)

// Label returns the display name for the symbology. Tags outside the fixed
// enumeration map to "Unknown".
func (s Symbology) Label() string {
	switch s {
	case SymbologyQRCode:
		return "QR Code"
	case SymbologyAztec:
		return "AZTEC"
	case SymbologyCodabar:
		return "CODABAR"
	case SymbologyCode39:
		return "CODE 39"
	case SymbologyCode93:
		return "CODE 93"
	case SymbologyCode128:
		return "CODE 128"
	case SymbologyDataMatrix:
		return "DATA MATRIX"
	case SymbologyEAN8:
		return "EAN 8"
	case SymbologyEAN13:
		return "EAN 13"
	case SymbologyITF:
		return "ITF"
	case SymbologyPDF417:
		return "PDF417"
	case SymbologyUPCA:
		return "UPC A"
	case SymbologyUPCE:
		return "UPC E"
	default:
		return "Unknown"
	}
}

// Candidate is one detected code region from a single analyzed frame.
// RawText is nil when the detector located a code but could not extract
// its text.
type Candidate struct {
	RawText   *string
	Symbology Symbology
}
