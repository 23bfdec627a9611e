package document

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/legalarch/docai/internal/core/domain"
)

// legacyCharmaps are tried in order when a text file is not valid UTF-8.
var legacyCharmaps = []*charmap.Charmap{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

func extractTXT(filePath string) (string, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "read text file", err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, cm := range legacyCharmaps {
		decoded, err := cm.NewDecoder().Bytes(raw)
		if err == nil {
			return string(decoded), nil
		}
	}
	// Single-byte charmaps decode anything, so this is unreachable in
	// practice; fall back to a lossy UTF-8 interpretation anyway.
	return strings.ToValidUTF8(string(raw), ""), nil
}

// extractDOC pulls printable ASCII sequences out of a legacy binary Word
// file. There is no full OLE parser here; runs shorter than four characters
// are treated as noise.
func extractDOC(filePath string) (string, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "read doc file", err)
	}

	const minRun = 4
	var b strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= minRun {
			b.Write(run)
			b.WriteByte('\n')
		}
		run = run[:0]
	}
	for _, c := range raw {
		if c >= 0x20 && c <= 0x7e {
			run = append(run, c)
			continue
		}
		flush()
	}
	flush()
	return b.String(), nil
}
