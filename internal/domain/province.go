package domain

import "strings"

// Province is a closed set of Canadian province and territory codes. Bracket
// data is keyed by these codes; anything outside the set is rejected when a
// model is built, never deep in the calculation path.
type Province string

const (
	Alberta              Province = "AB"
	BritishColumbia      Province = "BC"
	Manitoba             Province = "MB"
	NewBrunswick         Province = "NB"
	Newfoundland         Province = "NL"
	NovaScotia           Province = "NS"
	NorthwestTerritories Province = "NT"
	Nunavut              Province = "NU"
	Ontario              Province = "ON"
	PrinceEdwardIsland   Province = "PE"
	Quebec               Province = "QC"
	Saskatchewan         Province = "SK"
	Yukon                Province = "YT"
)

var provinceNames = map[Province]string{
	Alberta:              "Alberta",
	BritishColumbia:      "British Columbia",
	Manitoba:             "Manitoba",
	NewBrunswick:         "New Brunswick",
	Newfoundland:         "Newfoundland and Labrador",
	NovaScotia:           "Nova Scotia",
	NorthwestTerritories: "Northwest Territories",
	Nunavut:              "Nunavut",
	Ontario:              "Ontario",
	PrinceEdwardIsland:   "Prince Edward Island",
	Quebec:               "Quebec",
	Saskatchewan:         "Saskatchewan",
	Yukon:                "Yukon",
}

// ParseProvince validates a two-letter province code (case-insensitive).
func ParseProvince(code string) (Province, error) {
	p := Province(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := provinceNames[p]; !ok {
		return "", &DataUnavailableError{Jurisdiction: code, Message: "unknown province code"}
	}
	return p, nil
}

// Name returns the full province name, or the code itself if unknown.
func (p Province) Name() string {
	if name, ok := provinceNames[p]; ok {
		return name
	}
	return string(p)
}

// AllProvinces returns every known province code in alphabetical order.
func AllProvinces() []Province {
	return []Province{
		Alberta, BritishColumbia, Manitoba, NewBrunswick, Newfoundland,
		NovaScotia, NorthwestTerritories, Nunavut, Ontario,
		PrinceEdwardIsland, Quebec, Saskatchewan, Yukon,
	}
}
