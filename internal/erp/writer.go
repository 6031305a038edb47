package erp

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const tsLayout = "20060102150405"

// Subdir is the per-country drop directory watched by the ERP import job.
func Subdir(country string) string { return "commande_" + country }

// Filename builds WebAction_{timestamp}_{customerNumber8}.txt.
func Filename(ts time.Time, customerNumber string) string {
	return fmt.Sprintf("WebAction_%s_%s.txt", ts.Format(tsLayout), NormalizeCustomerNumber(customerNumber))
}

// Writer drops encoded orders into the exchange directory.
type Writer struct {
	Root string
}

func (w *Writer) Write(country string, doc Document, ts time.Time) (string, error) {
	dir := filepath.Join(w.Root, Subdir(country))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(ts, doc.CustomerNumber))
	if err := os.WriteFile(path, []byte(Encode(doc)), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
