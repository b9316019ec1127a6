package payslip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// FileName is the archive entry name for one statement.
func FileName(r Report) string {
	return fmt.Sprintf("payslip_%s_%s.pdf", sanitize(r.UserID), sanitize(r.PeriodKey))
}

// GenerateBulkPDFZip renders every report in order into one ZIP. The first
// failing report aborts the whole archive.
func (g *Generator) GenerateBulkPDFZip(reports []Report) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, r := range reports {
		data, err := g.GeneratePDF(r)
		if err != nil {
			return nil, fmt.Errorf("payslip %d (%s): %w", i+1, r.UserID, err)
		}
		entry, err := zw.Create(FileName(r))
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}
