package storage

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionMIME backs the fallback lookup for when content sniffing is
// unavailable or inconclusive. Covers the types the engine commonly meets
// on removable media; anything else stays unknown.
var extensionMIME = map[string]string{
	"txt":  "text/plain",
	"csv":  "text/csv",
	"html": "text/html",
	"xml":  "text/xml",
	"json": "application/json",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
	"apk":  "application/vnd.android.package-archive",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
	"svg":  "image/svg+xml",
	"mp3":  "audio/mpeg",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"mkv":  "video/x-matroska",
	"webm": "video/webm",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
}

// DetectPathMIME resolves a file's mime by sniffing content, falling back
// to the extension table when sniffing fails or yields only the generic
// binary type. Returns empty when the mime stays unknown.
func DetectPathMIME(path, name string) string {
	if mt, err := mimetype.DetectFile(path); err == nil {
		if m := mt.String(); m != "" && !isGenericMIME(m) {
			return strings.SplitN(m, ";", 2)[0]
		}
	}
	return MIMEByName(name)
}

// MIMEByName resolves a mime from the name's extension alone.
func MIMEByName(name string) string {
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = strings.ToLower(name[i+1:])
	}
	return extensionMIME[ext]
}

func isGenericMIME(m string) bool {
	return strings.HasPrefix(m, "application/octet-stream")
}
