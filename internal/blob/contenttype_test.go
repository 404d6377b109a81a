package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n")

	tests := []struct {
		name    string
		key     string
		payload []byte
		sniff   bool
		want    string
	}{
		{"json", "a.json", nil, false, "application/json"},
		{"upper case extension", "REPORT.JSON", nil, false, "application/json"},
		{"nested key", "reconciliation/out.pdf", nil, false, "application/pdf"},
		{"png", "img/logo.png", nil, false, "image/png"},
		{"csv without charset", "statement/jan.csv", nil, false, "text/csv"},
		{"txt without charset", "notes.TXT", nil, false, "text/plain"},
		{"xlsx", "pnl/q1.xlsx", nil, false, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"xls", "pnl/q1.xls", nil, false, "application/vnd.ms-excel"},
		{"unknown extension", "a.zzqx", nil, false, DefaultContentType},
		{"bin", "a.bin", nil, false, DefaultContentType},
		{"no extension", "statement/latest", pdf, false, DefaultContentType},
		{"dot in directory only", "v1.2/latest", pdf, false, DefaultContentType},
		{"sniffed when enabled", "statement/latest", pdf, true, "application/pdf"},
		{"sniffing ignores known extensions", "a.json", pdf, true, "application/json"},
		{"sniffing empty payload", "latest", nil, true, DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentTypeFor(tt.key, tt.payload, tt.sniff))
		})
	}
}
