package invoice

import (
	"encoding/json"
	"fmt"
)

// Wire shapes use pointer fields so that a missing key is distinguishable
// from a zero value.
type recordWire struct {
	InvoiceNumber *string         `json:"invoiceNumber"`
	Client        *clientWire     `json:"client"`
	Purchase      *[]lineItemWire `json:"purchase"`
	TotalAmount   *float64        `json:"totalAmount"`
}

type clientWire struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type lineItemWire struct {
	Item     *string  `json:"item"`
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

// Decode parses text as an invoice record. Decoding is lenient about extra
// fields but requires every declared field to be present with the declared
// type. Most scanned barcodes are not invoices, so callers treat a failed
// decode as "not an invoice" rather than a condition to surface.
func Decode(text string) (*Record, error) {
	var wire recordWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, fmt.Errorf("unmarshaling invoice: %w", err)
	}

	if wire.InvoiceNumber == nil || wire.Client == nil || wire.Purchase == nil || wire.TotalAmount == nil {
		return nil, fmt.Errorf("invoice is missing required fields")
	}
	if wire.Client.Name == nil || wire.Client.Email == nil || wire.Client.Address == nil {
		return nil, fmt.Errorf("invoice client is missing required fields")
	}

	items := make([]LineItem, 0, len(*wire.Purchase))
	for i, it := range *wire.Purchase {
		if it.Item == nil || it.Quantity == nil || it.Price == nil {
			return nil, fmt.Errorf("invoice line item %d is missing required fields", i)
		}
		items = append(items, LineItem{
			Item:     *it.Item,
			Quantity: *it.Quantity,
			Price:    *it.Price,
		})
	}

	return &Record{
		InvoiceNumber: *wire.InvoiceNumber,
		Client: Client{
			Name:    *wire.Client.Name,
			Email:   *wire.Client.Email,
			Address: *wire.Client.Address,
		},
		Purchase:    items,
		TotalAmount: *wire.TotalAmount,
	}, nil
}
