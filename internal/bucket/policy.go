package bucket

import (
	"regexp"
	"strings"
	"time"
)

// Retention is an expiry class selected from the folder name.
type Retention struct {
	Name     string
	Token    string // magic word that selected it; empty for the default
	Duration time.Duration
}

var (
	// RetentionExtended is selected by "RDV" anywhere in the folder name.
	RetentionExtended = Retention{Name: "extended", Token: "RDV", Duration: 90 * 24 * time.Hour}
	// RetentionStandard is selected by "RCP" when "RDV" is absent.
	RetentionStandard = Retention{Name: "standard", Token: "RCP", Duration: 30 * 24 * time.Hour}
	// RetentionDefault applies when no magic word is present.
	RetentionDefault = Retention{Name: "default", Duration: 72 * time.Hour}
)

// magicWords are checked in order; the first match wins.
var magicWords = []struct {
	re        *regexp.Regexp
	retention Retention
}{
	{regexp.MustCompile(`(?i)RDV`), RetentionExtended},
	{regexp.MustCompile(`(?i)RCP`), RetentionStandard},
}

// DeriveExpiry picks the retention class for a raw folder name, strips the
// first occurrence of the matching magic word, collapses whitespace and
// returns the name to store with its expiry relative to now.
func DeriveExpiry(raw string, now time.Time) (name string, expiresAt time.Time, r Retention) {
	name = strings.TrimSpace(raw)
	r = RetentionDefault

	for _, mw := range magicWords {
		if loc := mw.re.FindStringIndex(name); loc != nil {
			name = name[:loc[0]] + name[loc[1]:]
			r = mw.retention
			break
		}
	}

	name = strings.Join(strings.Fields(name), " ")
	return name, now.Add(r.Duration), r
}
