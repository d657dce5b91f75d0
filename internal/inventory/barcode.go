package inventory

import (
	"fmt"
	"strconv"
)

// BarcodeFromID derives the product barcode from its own row id, zero-padded
// to 12 digits. Client-supplied barcodes are ignored on create and edit; the
// id is the single source of truth, so the code is only known after insert.
func BarcodeFromID(id uint) string {
	return fmt.Sprintf("%012d", id)
}

// ParseQuantity converts form input into a stock quantity. Anything that is
// not a whole number silently becomes 0.
func ParseQuantity(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
