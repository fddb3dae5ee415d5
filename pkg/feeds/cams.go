package feeds

import (
	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/normalize"
	"github.com/openfolio/schememaster/pkg/schemes"
)

// CAMS scheme master columns, WBR-style upper-snake headers.
const (
	camsColAMCCode      = "AMC_CODE"
	camsColAMCName      = "AMC_NAME"
	camsColSchemeCode   = "SCH_CODE"
	camsColSchemeName   = "SCH_NAME"
	camsColPlan         = "PLAN"
	camsColOption       = "DIVIDEND_REINVEST"
	camsColSchemeType   = "SCH_TYPE"
	camsColISIN         = "ISIN"
	camsColPurAllowed   = "PUR_ALLOWED"
	camsColPurMin       = "NEWP_MINAMT"
	camsColPurMax       = "NEWP_MAXAMT"
	camsColPurMultiple  = "NEWP_MULAMT"
	camsColAddMin       = "ADDP_MINAMT"
	camsColAddMax       = "ADDP_MAXAMT"
	camsColAddMultiple  = "ADDP_MULAMT"
	camsColRedAllowed   = "REDEEM_ALLOWED"
	camsColRedMin       = "RED_MINAMT"
	camsColRedMultiple  = "RED_MULAMT"
	camsColSIPFlag      = "SIP_FLAG"
	camsColSTPFlag      = "STP_FLAG"
	camsColSWPFlag      = "SWP_FLAG"
	camsColSwitchFlag   = "SWITCH_FLAG"
	camsColPurCutoff    = "PUR_CUTOFF_TIME"
	camsColRedCutoff    = "RED_CUTOFF_TIME"
	camsColSwitchCutoff = "SWITCH_CUTOFF_TIME"
	camsColFaceValue    = "FACE_VALUE"
	camsColDemat        = "DEMAT"
	camsColStartDate    = "START_DATE"
	camsColCloseDate    = "CLOSE_DATE"
	camsColLoadDetails  = "LOAD_DETAILS"
)

// CAMS normalizes CAMS scheme master rows. CAMS folds plan and option
// into short codes on the row; both stay part of the natural key even
// when blank.
type CAMS struct{}

// NewCAMS returns the CAMS registrar adapter.
func NewCAMS() *CAMS {
	return &CAMS{}
}

// Source returns the feed source this adapter understands.
func (c *CAMS) Source() schemes.Source {
	return schemes.SourceCAMS
}

// Normalize converts one CAMS row. Scheme code, scheme name, and a valid
// ISIN are required; CAMS publishes one flag per systematic plan family.
func (c *CAMS) Normalize(row *schemes.RawRow) (*schemes.RtaSchemeRecord, error) {
	schemeCode, err := required(row, c.Source(), camsColSchemeCode)
	if err != nil {
		return nil, err
	}
	name, err := required(row, c.Source(), camsColSchemeName)
	if err != nil {
		return nil, err
	}
	rawISIN, err := required(row, c.Source(), camsColISIN)
	if err != nil {
		return nil, err
	}
	isin := normalize.CleanISIN(rawISIN)
	if isin == "" {
		return nil, &errors.MalformedRowError{
			Source: string(c.Source()),
			File:   row.SourceFile,
			Line:   row.Line,
			Column: camsColISIN,
			Reason: "not a valid ISIN",
		}
	}

	record := &schemes.RtaSchemeRecord{
		Key: schemes.RtaKey{
			Source:     c.Source(),
			SchemeCode: schemeCode,
			PlanCode:   field(row, camsColPlan),
			OptionCode: field(row, camsColOption),
		},
		AMCCode:        field(row, camsColAMCCode),
		AMCName:        field(row, camsColAMCName),
		SchemeName:     name,
		FundType:       field(row, camsColSchemeType),
		ISIN:           isin,
		NormalizedName: normalize.Name(name),

		PurchaseAllowed:     parseBool(field(row, camsColPurAllowed)),
		PurchaseMinAmount:   parseFloat(field(row, camsColPurMin)),
		PurchaseMaxAmount:   parseFloat(field(row, camsColPurMax)),
		PurchaseMultiple:    parseFloat(field(row, camsColPurMultiple)),
		PurchaseCutoff:      parseCutoff(field(row, camsColPurCutoff)),
		AdditionalMinAmount: parseFloat(field(row, camsColAddMin)),
		AdditionalMaxAmount: parseFloat(field(row, camsColAddMax)),
		AdditionalMultiple:  parseFloat(field(row, camsColAddMultiple)),

		RedemptionAllowed:   parseBool(field(row, camsColRedAllowed)),
		RedemptionMinAmount: parseFloat(field(row, camsColRedMin)),
		RedemptionMultiple:  parseFloat(field(row, camsColRedMultiple)),
		RedemptionCutoff:    parseCutoff(field(row, camsColRedCutoff)),

		SIPAllowed:    parseBool(field(row, camsColSIPFlag)),
		STPInAllowed:  parseBool(field(row, camsColSTPFlag)),
		STPOutAllowed: parseBool(field(row, camsColSTPFlag)),
		SWPAllowed:    parseBool(field(row, camsColSWPFlag)),

		SwitchInAllowed:  parseBool(field(row, camsColSwitchFlag)),
		SwitchOutAllowed: parseBool(field(row, camsColSwitchFlag)),
		SwitchCutoff:     parseCutoff(field(row, camsColSwitchCutoff)),

		LoadDetails: field(row, camsColLoadDetails),
		FaceValue:   parseFloat(field(row, camsColFaceValue)),
		DematAllow:  parseBool(field(row, camsColDemat)),
		OpenDate:    parseDate(field(row, camsColStartDate)),
		CloseDate:   parseDate(field(row, camsColCloseDate)),

		SourceFile: row.SourceFile,
		ImportedAt: row.ImportedAt,
	}
	return record, nil
}
