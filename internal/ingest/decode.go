package ingest

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// sniffBytes bounds how much of a payload format sniffing inspects.
const sniffBytes = 4096

// DecodeText converts export bytes to a string. Legacy Capitaline files ship
// as UTF-16 (with or without BOM) or Windows-1252 without declaring either,
// so the decoder sniffs before falling back.
func DecodeText(content []byte) string {
	if len(content) >= 2 {
		switch {
		case content[0] == 0xFF && content[1] == 0xFE:
			return decodeAs("utf-16le", content[2:])
		case content[0] == 0xFE && content[1] == 0xFF:
			return decodeAs("utf-16be", content[2:])
		}
	}
	// BOM-less UTF-16 still passes utf8.Valid (NUL is a valid rune), so the
	// NUL check must come first. ASCII text puts the NUL on the high byte,
	// which for little endian is the odd position.
	if bytes.IndexByte(content, 0x00) >= 0 {
		if nulsMostlyOdd(content) {
			return decodeAs("utf-16le", content)
		}
		return decodeAs("utf-16be", content)
	}
	if utf8.Valid(content) {
		return string(content)
	}
	return decodeAs("windows-1252", content)
}

func decodeAs(name string, content []byte) string {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(content)
	}
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(out)
}

func nulsMostlyOdd(content []byte) bool {
	var odd, even int
	for i, b := range content {
		if b != 0x00 {
			continue
		}
		if i%2 == 1 {
			odd++
		} else {
			even++
		}
	}
	return odd >= even
}

var htmlTokens = [][]byte{
	[]byte("<html"),
	[]byte("<table"),
	[]byte("<!doctype html"),
	[]byte("<tr"),
	[]byte("<td"),
}

// looksLikeHTML sniffs HTML payloads saved under an .xls extension, a habit
// of Capitaline's export screens. UTF-16 NULs are stripped before matching.
func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > sniffBytes {
		head = head[:sniffBytes]
	}
	low := bytes.ToLower(bytes.ReplaceAll(head, []byte{0x00}, nil))
	for _, tok := range htmlTokens {
		if bytes.Contains(low, tok) {
			return true
		}
	}
	return false
}
