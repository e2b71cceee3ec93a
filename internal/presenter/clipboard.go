package presenter

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"price-lookup/internal/models"
)

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// OSC52 copies through the terminal with the OSC 52 escape sequence,
// which also works over SSH sessions.
type OSC52 struct {
	W io.Writer
}

func (o OSC52) Copy(text string) error {
	_, err := fmt.Fprintf(o.W, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

// Copyable fields, as typed by the operator.
const (
	FieldReference = "ref"
	FieldBarcode   = "barcode"
	FieldPrice     = "price"
	FieldCost      = "cost"
)

var fieldLabels = map[string]string{
	FieldReference: "Reference",
	FieldBarcode:   "Barcode",
	FieldPrice:     "Retail price",
	FieldCost:      "Cost USD",
}

// FieldValue returns the text copied for field, prices formatted as shown.
func FieldValue(item models.InventoryItem, field string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldReference:
		return item.Reference, nil
	case FieldBarcode:
		return item.Barcode, nil
	case FieldPrice:
		return FormatCurrency(item.ListPrice, VES), nil
	case FieldCost:
		return FormatCurrency(item.InitialCost, USD), nil
	}
	return "", fmt.Errorf("unknown field %q (ref, barcode, price, cost)", field)
}

// CopyField copies field of item and returns the feedback shown to the operator.
func CopyField(clip Clipboard, item models.InventoryItem, field string) (string, error) {
	value, err := FieldValue(item, field)
	if err != nil {
		return "", err
	}
	if err := clip.Copy(value); err != nil {
		return "could not copy", err
	}
	return fieldLabels[strings.ToLower(strings.TrimSpace(field))] + " copied", nil
}
