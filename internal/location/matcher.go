package location

import "strings"

// Match picks the candidate the user meant.
//
// Candidates are first narrowed to the requested country. With a state, the
// first narrowed candidate whose Admin1 matches is chosen and there is no
// fallback when none does. Without a state, the first narrowed candidate wins
// in provider order. Comparisons ignore case.
func Match(candidates []Candidate, state, country string) (Candidate, bool) {
	inCountry := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Country != "" && strings.EqualFold(c.Country, country) {
			inCountry = append(inCountry, c)
		}
	}
	if len(inCountry) == 0 {
		return Candidate{}, false
	}

	if state == "" {
		return inCountry[0], true
	}

	for _, c := range inCountry {
		if c.Admin1 != "" && strings.EqualFold(c.Admin1, state) {
			return c, true
		}
	}
	return Candidate{}, false
}
