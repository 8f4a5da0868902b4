package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVContentType is sent with CSV exports.
const CSVContentType = "text/csv; charset=utf-8"

var bom = []byte{0xEF, 0xBB, 0xBF}

// Header is the first line of every export.
var Header = []string{
	"Type",
	"Name",
	"Category",
	"IMEI/Code",
	"Buying Price (XAF)",
	"Selling Price (XAF)",
	"Stock",
	"Status",
	"Added Date",
}

// CSV renders rows into a complete BOM-prefixed file. Nothing is returned on
// error, so callers never send a partial file.
func CSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(bom)

	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
