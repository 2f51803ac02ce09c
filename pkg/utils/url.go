package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

// imageProxyPaths are path markers of image-optimizing proxies that carry the
// original address in a "url" query parameter.
var imageProxyPaths = []string{"/_next/image"}

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
// A nil base returns the parsed reference unchanged.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	if base == nil {
		return relURL.String(), nil
	}
	return base.ResolveReference(relURL).String(), nil
}

// IsImageProxy reports whether raw is a proxy address carrying an original
// image address parameter.
func IsImageProxy(raw string) bool {
	for _, p := range imageProxyPaths {
		if strings.Contains(raw, p) && strings.Contains(raw, "url=") {
			return true
		}
	}
	return false
}

// UnwrapImageProxy returns the original address carried by a proxy address,
// or raw itself when raw is not a proxy address.
func UnwrapImageProxy(raw string) string {
	if !IsImageProxy(raw) {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if orig := u.Query().Get("url"); orig != "" {
		return orig
	}
	return raw
}

// StripQueryAndUnescape percent-decodes raw and drops its query and fragment.
// The result keeps decoded characters instead of re-escaping them.
func StripQueryAndUnescape(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// NormalizeImageLocator turns an image address as found in markup or data
// into the comparable form: proxy unwrapped, absolute against base, query
// stripped and percent-decoded.
func NormalizeImageLocator(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = UnwrapImageProxy(raw)
	abs, err := ToAbsoluteURL(base, raw)
	if err != nil {
		abs = raw
	}
	return StripQueryAndUnescape(abs)
}

// Basename returns the last path segment of a locator after normalization.
func Basename(raw string) string {
	cleaned := StripQueryAndUnescape(raw)
	if cleaned == "" {
		return ""
	}
	if i := strings.Index(cleaned, "://"); i >= 0 {
		rest := cleaned[i+3:]
		slash := strings.IndexByte(rest, '/')
		if slash < 0 {
			return ""
		}
		cleaned = rest[slash:]
	}
	b := path.Base(cleaned)
	if b == "/" || b == "." {
		return ""
	}
	return b
}

// FirstSrcsetCandidate returns the address of the first srcset candidate.
func FirstSrcsetCandidate(srcset string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(srcset), ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
