package utils

import (
	"path"
	"strings"
)

// SanitizeFilename reduces a client supplied file name to a safe base name
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}

// maxExtLength is the longest suffix still treated as an extension when truncating
const maxExtLength = 16

// TruncateFilename shortens name to at most max characters, keeping its
// extension. Lengths count runes, not bytes.
func TruncateFilename(name string, max int) string {
	runes := []rune(name)
	if max <= 0 {
		return ""
	}
	if len(runes) <= max {
		return name
	}

	ext := []rune(path.Ext(name))
	if len(ext) > maxExtLength || len(ext) >= max {
		ext = nil
	}
	base := runes[:len(runes)-len(ext)]
	base = base[:max-len(ext)]
	return strings.TrimRight(string(base), ".") + string(ext)
}

// ReplaceExt swaps the extension of name for ext, which includes the dot
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}
