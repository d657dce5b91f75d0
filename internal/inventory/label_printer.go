package inventory

import (
	"fmt"
	"strings"

	"pdv-backend/internal/models"
)

// LabelJob pairs a product with how many labels the printer should cut.
type LabelJob struct {
	Product models.Product
	Copies  int
}

// RenderLabels produces the line-based command stream understood by the
// shelf-label printer (EPL2 dialect). One N..P block per product; the P
// directive carries the copy count.
func RenderLabels(jobs []LabelJob) string {
	var b strings.Builder
	for _, job := range jobs {
		copies := job.Copies
		if copies < 1 {
			copies = 1
		}
		// Truncate on runes, not bytes: product names carry accented
		// characters and a split rune would garble the printer text.
		name := job.Product.Name
		if runes := []rune(name); len(runes) > 30 {
			name = string(runes[:30])
		}

		b.WriteString("N\n")
		fmt.Fprintf(&b, "A30,10,0,3,1,1,N,%q\n", name)
		fmt.Fprintf(&b, "B30,50,0,1,2,2,60,B,%q\n", job.Product.Barcode)
		fmt.Fprintf(&b, "A30,130,0,4,1,1,N,%q\n", fmt.Sprintf("R$ %.2f", job.Product.Price()))
		fmt.Fprintf(&b, "P%d\n", copies)
	}
	return b.String()
}
