package domain

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"go.trai.ch/zerr"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// LookupEncoding resolves an encoding label such as "utf-8", "latin1",
// "windows-1252" or "shift_jis". Labels are matched case-insensitively and
// underscores are treated as hyphens.
func LookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		return nil, zerr.With(zerr.Wrap(ErrValidation, "empty encoding"), "encoding", name)
	}

	switch label {
	case "utf8", "utf-8", "utf_8":
		return unicode.UTF8, nil
	case "utf-8-sig", "utf_8_sig":
		return unicode.UTF8BOM, nil
	}

	for _, candidate := range []string{label, strings.ReplaceAll(label, "_", "-")} {
		if enc, err := htmlindex.Get(candidate); err == nil {
			return enc, nil
		}
		if enc, err := ianaindex.IANA.Encoding(candidate); err == nil && enc != nil {
			return enc, nil
		}
	}

	return nil, zerr.With(zerr.Wrap(ErrValidation, "unknown encoding"), "encoding", name)
}

// DecodeText decodes data with the named encoding. Input that is not valid in
// that encoding yields ErrDecode.
func DecodeText(data []byte, name string) (string, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return "", err
	}

	if enc == unicode.UTF8 {
		if !utf8.Valid(data) {
			return "", zerr.With(zerr.Wrap(ErrDecode, "invalid utf-8 sequence"), "encoding", name)
		}
		return string(data), nil
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", zerr.With(zerr.Wrap(ErrDecode, err.Error()), "encoding", name)
	}

	// Decoders substitute U+FFFD for bytes they cannot map.
	if !strings.HasPrefix(strings.ToLower(name), "utf") &&
		strings.ContainsRune(string(out), utf8.RuneError) &&
		!bytes.Contains(data, []byte(string(utf8.RuneError))) {
		return "", zerr.With(zerr.Wrap(ErrDecode, "byte sequence not valid in encoding"), "encoding", name)
	}

	return string(out), nil
}
