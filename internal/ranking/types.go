// Package ranking provides query intent analysis, entity scoring, and
// result ordering for card-catalog search.
package ranking

// CardTypeFilter is the set of card-type keywords detected in a query.
// Matching uses OR semantics across the set.
type CardTypeFilter struct {
	Rookie    bool
	Autograph bool
	Relic     bool
	Parallel  bool
}

// Any reports whether at least one card type was detected.
func (f CardTypeFilter) Any() bool {
	return f.Rookie || f.Autograph || f.Relic || f.Parallel
}

// Types lists the detected type names in a fixed order.
func (f CardTypeFilter) Types() []string {
	var types []string
	if f.Rookie {
		types = append(types, "rookie")
	}
	if f.Autograph {
		types = append(types, "autograph")
	}
	if f.Relic {
		types = append(types, "relic")
	}
	if f.Parallel {
		types = append(types, "parallel")
	}
	return types
}

// DetectedIntent holds the signals extracted from a raw query. It is
// recomputed per request; nothing here is cached across queries.
type DetectedIntent struct {
	// CardNumber is the leading card-number token ("108", "RC-1"), when present.
	CardNumber string
	// PlayerNameRemainder is the free text left after stripping the card
	// number or the card-type keywords, used to narrow card lookups by player.
	PlayerNameRemainder string
	// CardNumberWithPlayer is true iff both a card number and trailing
	// player text were detected.
	CardNumberWithPlayer bool
	// CardTypes are the card-type keywords found anywhere in the query.
	CardTypes CardTypeFilter
	// YearHint is the first 19xx/20xx token found in the query, or zero.
	YearHint int
	// TeamAbbreviationHints are known team abbreviations appearing in the
	// query. Computed for completeness; they do not influence ranking.
	TeamAbbreviationHints []string
}

// HasCardNumber reports whether a card-number token was extracted.
func (d *DetectedIntent) HasCardNumber() bool {
	return d.CardNumber != ""
}
