package ranking

import (
	"regexp"
	"strconv"
	"strings"
)

// QueryAnalyzer parses raw query text into a DetectedIntent.
type QueryAnalyzer struct{}

// NewQueryAnalyzer creates a new QueryAnalyzer.
func NewQueryAnalyzer() *QueryAnalyzer {
	return &QueryAnalyzer{}
}

var (
	// Card numbers look like "108", "108a", or prefixed forms such as
	// "RC-1", "SP-12", "BDC-7".
	numericCardNumber  = regexp.MustCompile(`^[0-9]+[A-Za-z]*$`)
	prefixedCardNumber = regexp.MustCompile(`^[A-Z]+-[0-9]+$`)

	yearToken = regexp.MustCompile(`^(19|20)[0-9]{2}$`)
)

// teamAbbreviations is the fixed vocabulary scanned for team hints.
var teamAbbreviations = []string{
	"ARI", "ATL", "BAL", "BOS", "CHC", "CIN", "CLE", "COL", "CWS", "DET",
	"HOU", "KC", "LAA", "LAD", "MIA", "MIL", "MIN", "NYM", "NYY", "OAK",
	"PHI", "PIT", "SD", "SEA", "SF", "STL", "TB", "TEX", "TOR", "WSH",
}

// cardTypeKeywords maps query keywords to the type flag they set. The "/"
// shorthand for serial-numbered parallels is handled separately.
var cardTypeKeywords = map[string]func(*CardTypeFilter){
	"rookie":    func(f *CardTypeFilter) { f.Rookie = true },
	"rc":        func(f *CardTypeFilter) { f.Rookie = true },
	"autograph": func(f *CardTypeFilter) { f.Autograph = true },
	"auto":      func(f *CardTypeFilter) { f.Autograph = true },
	"relic":     func(f *CardTypeFilter) { f.Relic = true },
	"jersey":    func(f *CardTypeFilter) { f.Relic = true },
	"patch":     func(f *CardTypeFilter) { f.Relic = true },
	"parallel":  func(f *CardTypeFilter) { f.Parallel = true },
}

// Analyze parses a query string and returns the detected intent. It is a
// pure function of its input; an empty or whitespace-only query yields an
// empty intent.
func (qa *QueryAnalyzer) Analyze(query string) *DetectedIntent {
	intent := &DetectedIntent{}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return intent
	}

	remainder := qa.extractCardNumber(trimmed, intent)
	qa.detectCardTypes(trimmed, intent)
	qa.detectYear(trimmed, intent)
	qa.detectTeamHints(trimmed, intent)

	if intent.HasCardNumber() {
		if remainder != "" {
			intent.PlayerNameRemainder = remainder
			intent.CardNumberWithPlayer = true
		}
	} else if intent.CardTypes.Any() {
		// "rookie trout" carries no card number; the non-keyword text
		// narrows the type lookup by player instead.
		intent.PlayerNameRemainder = qa.stripTypeKeywords(trimmed)
	}

	return intent
}

// extractCardNumber matches the leading token against the card-number
// patterns. Returns the trimmed text remaining after the token.
func (qa *QueryAnalyzer) extractCardNumber(query string, intent *DetectedIntent) string {
	token := query
	rest := ""
	if idx := strings.IndexFunc(query, func(r rune) bool { return r == ' ' || r == '\t' }); idx >= 0 {
		token = query[:idx]
		rest = strings.TrimSpace(query[idx:])
	}
	if numericCardNumber.MatchString(token) || prefixedCardNumber.MatchString(token) {
		intent.CardNumber = token
		return rest
	}
	return ""
}

// detectCardTypes runs case-insensitive substring checks for the card-type
// vocabulary. Multiple types accumulate; there is no precedence.
func (qa *QueryAnalyzer) detectCardTypes(query string, intent *DetectedIntent) {
	lower := strings.ToLower(query)
	for keyword, set := range cardTypeKeywords {
		if strings.Contains(lower, keyword) {
			set(&intent.CardTypes)
		}
	}
	// Serial-numbered parallels are usually written "12/99".
	if strings.Contains(lower, "/") {
		intent.CardTypes.Parallel = true
	}
}

// detectYear sets YearHint to the first 19xx/20xx token in the query.
func (qa *QueryAnalyzer) detectYear(query string, intent *DetectedIntent) {
	for _, token := range strings.Fields(query) {
		if yearToken.MatchString(token) {
			year, err := strconv.Atoi(token)
			if err == nil {
				intent.YearHint = year
				return
			}
		}
	}
}

// detectTeamHints collects every known team abbreviation appearing in the
// query as a substring.
func (qa *QueryAnalyzer) detectTeamHints(query string, intent *DetectedIntent) {
	upper := strings.ToUpper(query)
	for _, abbr := range teamAbbreviations {
		if strings.Contains(upper, abbr) {
			intent.TeamAbbreviationHints = append(intent.TeamAbbreviationHints, abbr)
		}
	}
}

// stripTypeKeywords removes card-type keyword tokens from the query,
// leaving the player-name text that narrows a card-type lookup.
func (qa *QueryAnalyzer) stripTypeKeywords(query string) string {
	var kept []string
	for _, token := range strings.Fields(query) {
		if _, isKeyword := cardTypeKeywords[strings.ToLower(token)]; isKeyword {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}
