package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// Delimiters in priority order. The first one present in a line is used.
var delimiters = []string{":", ";", "|", "\t", ","}

// maxIdentifiantLen is the exclusive upper bound on identifier length, in runes.
const maxIdentifiantLen = 60

var (
	emailLoosePattern = regexp.MustCompile(`[\w.+-]+@[\w.-]+`)
	emailPattern      = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w{2,}$`)
	telephonePattern  = regexp.MustCompile(`^\+?\d[\d\s\-.()]{6,}$`)
	ipPattern         = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

// ExtractRecord turns one line of raw text into a structured record.
//
// It never fails: malformed input yields a record holding at least
// _source and _raw. Identical input always yields an identical record.
func ExtractRecord(line, source string) domain.Record {
	rec := domain.NewRecord(source, line)

	sep := chooseDelimiter(line)
	if sep == "" {
		whole := strings.TrimSpace(line)
		if emailLoosePattern.MatchString(whole) {
			rec.SetIfAbsent(domain.FieldEmail, whole)
		} else {
			rec.SetIfAbsent(domain.FieldIdentifiant, whole)
		}
		return rec
	}

	for _, part := range strings.Split(line, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		classifyToken(&rec, part)
	}

	return rec
}

// chooseDelimiter returns the first delimiter present in line, or "".
func chooseDelimiter(line string) string {
	for _, d := range delimiters {
		if strings.Contains(line, d) {
			return d
		}
	}
	return ""
}

// classifyToken assigns one trimmed token to the first field of the cascade it
// matches. Dotted quads also fit the phone shape, so telephone claims them
// before ip is tested. Typed fields keep their first value;
// later tokens of the same kind are dropped rather than falling through to
// identifiant or password.
func classifyToken(rec *domain.Record, part string) {
	switch {
	case emailPattern.MatchString(part):
		rec.SetIfAbsent(domain.FieldEmail, part)
	case telephonePattern.MatchString(part):
		rec.SetIfAbsent(domain.FieldTelephone, part)
	case ipPattern.MatchString(part):
		rec.SetIfAbsent(domain.FieldIP, part)
	case strings.HasPrefix(part, "http://") || strings.HasPrefix(part, "https://"):
		rec.SetIfAbsent(domain.FieldURL, part)
	case !rec.Has(domain.FieldIdentifiant) && isIdentifiant(part):
		rec.SetIfAbsent(domain.FieldIdentifiant, part)
	case rec.Has(domain.FieldIdentifiant):
		rec.SetIfAbsent(domain.FieldPassword, part)
	}
}

// isIdentifiant reports whether a token can serve as the primary identifier.
func isIdentifiant(part string) bool {
	return !strings.ContainsFunc(part, unicode.IsSpace) && utf8.RuneCountInString(part) < maxIdentifiantLen
}
