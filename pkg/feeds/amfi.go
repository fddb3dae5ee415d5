package feeds

import (
	"strconv"
	"strings"

	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/normalize"
	"github.com/openfolio/schememaster/pkg/schemes"
)

// AMFI catalog feed columns. The payout/growth ISIN shares one column in
// the published file; which variant it is depends on the scheme name.
const (
	amfiColCode          = "Code"
	amfiColAMC           = "AMC"
	amfiColSchemeName    = "Scheme Name"
	amfiColSchemeType    = "Scheme Type"
	amfiColCategory      = "Scheme Category"
	amfiColNAVName       = "Scheme NAV Name"
	amfiColMinimumAmount = "Scheme Minimum Amount"
	amfiColLaunchDate    = "Launch Date"
	amfiColClosureDate   = "Closure Date"
	amfiColISINPayGrowth = "ISIN Div Payout/ ISIN Growth"
	amfiColISINReinvest  = "ISIN Div Reinvestment"
)

// AMFI normalizes association catalog rows into catalog schemes.
type AMFI struct{}

// NewAMFI returns the catalog adapter for the association feed.
func NewAMFI() *AMFI {
	return &AMFI{}
}

// Source returns the feed source this adapter understands.
func (a *AMFI) Source() schemes.Source {
	return schemes.SourceAMFI
}

// Normalize converts one catalog row. Code and Scheme Name are required;
// everything else degrades to empty or nil.
func (a *AMFI) Normalize(row *schemes.RawRow) (*schemes.CatalogScheme, error) {
	codeStr, err := required(row, a.Source(), amfiColCode)
	if err != nil {
		return nil, err
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return nil, &errors.MalformedRowError{
			Source: string(a.Source()),
			File:   row.SourceFile,
			Line:   row.Line,
			Column: amfiColCode,
			Reason: "not numeric",
		}
	}

	name, err := required(row, a.Source(), amfiColSchemeName)
	if err != nil {
		return nil, err
	}

	scheme := &schemes.CatalogScheme{
		Code:           code,
		AMC:            field(row, amfiColAMC),
		SchemeName:     name,
		SchemeType:     field(row, amfiColSchemeType),
		NAVName:        field(row, amfiColNAVName),
		NormalizedName: normalize.Name(name),
		MinimumAmount:  parseFloat(field(row, amfiColMinimumAmount)),
		LaunchDate:     parseDate(field(row, amfiColLaunchDate)),
		ClosureDate:    parseDate(field(row, amfiColClosureDate)),
		SourceFile:     row.SourceFile,
		ImportedAt:     row.ImportedAt,
	}

	// "Equity Scheme - Large Cap Fund" splits into category and subcategory.
	if category, sub, ok := strings.Cut(field(row, amfiColCategory), " - "); ok {
		scheme.Category = strings.TrimSpace(category)
		scheme.SubCategory = strings.TrimSpace(sub)
	} else {
		scheme.Category = strings.TrimSpace(category)
	}

	a.assignISINs(scheme, row)
	return scheme, nil
}

// assignISINs places the ISIN variants. The shared payout/growth column can
// carry a lone ISIN or both run together; the reinvestment column is its own.
func (a *AMFI) assignISINs(scheme *schemes.CatalogScheme, row *schemes.RawRow) {
	scheme.ISINReinvestment = normalize.CleanISIN(field(row, amfiColISINReinvest))

	isins := normalize.ExtractISINs(field(row, amfiColISINPayGrowth))
	switch len(isins) {
	case 0:
	case 1:
		if a.isPayout(scheme) {
			scheme.ISINDivPayout = isins[0]
		} else {
			scheme.ISINGrowth = isins[0]
		}
	default:
		// Two ISINs run together: the file lists payout first, growth second.
		scheme.ISINDivPayout = isins[0]
		scheme.ISINGrowth = isins[1]
	}
}

// isPayout reports whether a single shared-column ISIN belongs to the
// dividend payout variant, judged from the published names.
func (a *AMFI) isPayout(scheme *schemes.CatalogScheme) bool {
	name := strings.ToLower(scheme.NAVName)
	if name == "" {
		name = strings.ToLower(scheme.SchemeName)
	}
	for _, marker := range []string{"payout", "dividend", "idcw"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
