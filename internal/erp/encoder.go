package erp

import (
	"fmt"
	"strings"
	"time"
)

// The downstream ERP import consumes a fixed-width text file per order:
//
//	I00{today:DDMMYY}[{delivery:DDMMYY}]
//	H{customer:8}{orderType:1}{campaignNameCompact}
//	D{productCode}{quantity:10}
//
// one D line per order line, CRLF terminated.

const dateLayout = "020106"

type Line struct {
	ProductCode string
	Quantity    int
}

type Document struct {
	Date           time.Time
	DeliveryDate   *time.Time // set only for deferred-delivery campaigns
	CustomerNumber string     // raw, normalized during encoding
	OrderType      string     // V | W
	CampaignName   string
	Lines          []Line
}

// Encode renders the document. Pure: no I/O, no clock reads.
func Encode(doc Document) string {
	var b strings.Builder

	b.WriteString("I00")
	b.WriteString(doc.Date.Format(dateLayout))
	if doc.DeliveryDate != nil {
		b.WriteString(doc.DeliveryDate.Format(dateLayout))
	}
	b.WriteString("\r\n")

	b.WriteString("H")
	b.WriteString(NormalizeCustomerNumber(doc.CustomerNumber))
	b.WriteString(doc.OrderType)
	b.WriteString(CompactName(doc.CampaignName))
	b.WriteString("\r\n")

	for _, l := range doc.Lines {
		fmt.Fprintf(&b, "D%s%010d\r\n", l.ProductCode, l.Quantity)
	}
	return b.String()
}

// NormalizeCustomerNumber maps a raw customer number onto the 8-digit form
// the ERP expects. Idempotent on already-normalized 8-digit input.
func NormalizeCustomerNumber(raw string) string {
	s := raw
	for _, junk := range []string{"*", "-", "E", "CB"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	// 6-digit numbers are legacy short ids: the ERP suffixes them with 00
	// before padding.
	if len(d) == 6 {
		d += "00"
	}
	if len(d) > 8 {
		return d[:8]
	}
	return strings.Repeat("0", 8-len(d)) + d
}

// CompactName strips spaces, hyphens and underscores from the campaign
// name; every other character passes through unchanged.
func CompactName(name string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name)
}
