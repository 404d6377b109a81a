package blob

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType is stored when no better guess exists.
const DefaultContentType = "application/octet-stream"

// knownTypes pins the types of common report and document formats so the
// stored content type does not depend on the host's mime tables (which add
// "; charset=utf-8" to text types, or are missing on minimal images).
var knownTypes = map[string]string{
	".csv":  "text/csv",
	".txt":  "text/plain",
	".json": "application/json",
	".pdf":  "application/pdf",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".html": "text/html",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".zip":  "application/zip",
}

// ContentTypeFor guesses a MIME type for key.
//
// The key's extension decides when it has one; an unrecognised extension
// yields DefaultContentType. Keys without an extension also get
// DefaultContentType unless sniff is set, in which case the payload's
// leading bytes are inspected.
func ContentTypeFor(key string, payload []byte, sniff bool) string {
	if ext := path.Ext(key); ext != "" {
		if t, ok := knownTypes[strings.ToLower(ext)]; ok {
			return t
		}
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return DefaultContentType
	}
	if sniff && len(payload) > 0 {
		return mimetype.Detect(payload).String()
	}
	return DefaultContentType
}
