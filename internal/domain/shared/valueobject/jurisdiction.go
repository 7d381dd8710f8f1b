package valueobject

import (
	"strings"
)

// Jurisdiction is a two-letter state/region code used to decide the tax split
type Jurisdiction string

// gstStateCodes maps the numeric prefix of a tax registration number to its state code
var gstStateCodes = map[string]Jurisdiction{
	"01": "JK", "02": "HP", "03": "PB", "04": "CH", "05": "UK",
	"06": "HR", "07": "DL", "08": "RJ", "09": "UP", "10": "BR",
	"11": "SK", "12": "AR", "13": "NL", "14": "MN", "15": "MZ",
	"16": "TR", "17": "ML", "18": "AS", "19": "WB", "20": "JH",
	"21": "OD", "22": "CG", "23": "MP", "24": "GJ", "25": "DD",
	"26": "DN", "27": "MH", "28": "AP", "29": "KA", "30": "GA",
	"31": "LD", "32": "KL", "33": "TN", "34": "PY", "35": "AN",
	"36": "TS", "37": "AP", "38": "LA", "97": "OT",
}

var knownJurisdictions = func() map[Jurisdiction]struct{} {
	m := make(map[Jurisdiction]struct{}, len(gstStateCodes))
	for _, j := range gstStateCodes {
		m[j] = struct{}{}
	}
	return m
}()

// ParseJurisdiction normalizes and validates a state code
func ParseJurisdiction(code string) (Jurisdiction, bool) {
	j := Jurisdiction(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := knownJurisdictions[j]; !ok {
		return "", false
	}
	return j, true
}

// JurisdictionFromTaxRegistration derives the state from the two-digit prefix of a
// tax registration number. The second result is false when the prefix is unknown.
func JurisdictionFromTaxRegistration(taxReg string) (Jurisdiction, bool) {
	taxReg = strings.TrimSpace(taxReg)
	if len(taxReg) < 2 {
		return "", false
	}
	j, ok := gstStateCodes[taxReg[:2]]
	return j, ok
}

func (j Jurisdiction) String() string {
	return string(j)
}

// IsZero reports whether no jurisdiction is set
func (j Jurisdiction) IsZero() bool {
	return j == ""
}
