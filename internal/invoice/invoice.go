// Package invoice defines the structured record carried by invoice barcodes
// and its best-effort decoding from raw barcode text.
package invoice

// Record is the structured payload of an invoice barcode. Records are value
// data: once decoded they are never modified.
type Record struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	Client        Client     `json:"client"`
	Purchase      []LineItem `json:"purchase"`
	TotalAmount   float64    `json:"totalAmount"`
}

// Client identifies the billed party.
type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// LineItem is one purchased item on the invoice.
type LineItem struct {
	Item     string  `json:"item"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}
