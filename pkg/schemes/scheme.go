// Package schemes defines the core record types of the scheme master
// pipeline and thread-safe collections over them: catalog schemes from the
// industry association feed, per-RTA scheme records, the mappings linking
// the two, and the published master rows.
package schemes

import (
	"strconv"

	"github.com/agentstation/utc"
)

// CatalogScheme is an identity record from the association's canonical
// scheme catalog. Code is the durable key: a re-import overwrites the
// attributes for an existing code, it never duplicates the record.
type CatalogScheme struct {
	// Core identity
	Code        int    `json:"code" yaml:"code"`               // Stable numeric identifier assigned by the association
	AMC         string `json:"amc" yaml:"amc"`                 // Fund house name
	SchemeName  string `json:"scheme_name" yaml:"scheme_name"` // Scheme name as published
	SchemeType  string `json:"scheme_type,omitempty" yaml:"scheme_type,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty" yaml:"sub_category,omitempty"`
	NAVName     string `json:"nav_name,omitempty" yaml:"nav_name,omitempty"` // Name used in NAV publications

	// NormalizedName is the canonicalized matching key derived from SchemeName.
	NormalizedName string `json:"normalized_name" yaml:"normalized_name"`

	// ISIN variants. A scheme publishes up to three depending on the
	// option: growth, dividend payout, and dividend reinvestment.
	ISINGrowth       string `json:"isin_growth,omitempty" yaml:"isin_growth,omitempty"`
	ISINDivPayout    string `json:"isin_div_payout,omitempty" yaml:"isin_div_payout,omitempty"`
	ISINReinvestment string `json:"isin_reinvestment,omitempty" yaml:"isin_reinvestment,omitempty"`

	MinimumAmount *float64  `json:"minimum_amount,omitempty" yaml:"minimum_amount,omitempty"`
	LaunchDate    *utc.Time `json:"launch_date,omitempty" yaml:"launch_date,omitempty"`
	ClosureDate   *utc.Time `json:"closure_date,omitempty" yaml:"closure_date,omitempty"`

	// Import provenance
	SourceFile string   `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	ImportedAt utc.Time `json:"imported_at" yaml:"imported_at"`
}

// ISINs returns the non-empty ISIN variants of the scheme.
func (s *CatalogScheme) ISINs() []string {
	var isins []string
	for _, isin := range []string{s.ISINGrowth, s.ISINDivPayout, s.ISINReinvestment} {
		if isin != "" {
			isins = append(isins, isin)
		}
	}
	return isins
}

// HasISIN reports whether any of the scheme's ISIN variants equals isin.
func (s *CatalogScheme) HasISIN(isin string) bool {
	if isin == "" {
		return false
	}
	return s.ISINGrowth == isin || s.ISINDivPayout == isin || s.ISINReinvestment == isin
}

// ID returns the scheme code as a string, for logging and error keys.
func (s *CatalogScheme) ID() string {
	return strconv.Itoa(s.Code)
}
