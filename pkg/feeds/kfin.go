package feeds

import (
	"github.com/openfolio/schememaster/pkg/errors"
	"github.com/openfolio/schememaster/pkg/normalize"
	"github.com/openfolio/schememaster/pkg/schemes"
)

// KFin scheme master columns. KFin publishes plan and option as separate
// code/description pairs, unlike CAMS.
const (
	kfinColAMCCode      = "AMC_CODE"
	kfinColAMCName      = "AMC_NAME"
	kfinColSchemeCode   = "SCHEME_CODE"
	kfinColSchemeName   = "SCHEME_DESC"
	kfinColPlanCode     = "PLAN_CODE"
	kfinColPlanDesc     = "PLAN_DESC"
	kfinColOptionCode   = "OPTION_CODE"
	kfinColOptionDesc   = "OPTION_DESC"
	kfinColNature       = "NATURE"
	kfinColFundType     = "FUND_TYPE"
	kfinColISIN         = "ISIN"
	kfinColPurAllow     = "PUR_ALLOW"
	kfinColPurMin       = "PUR_MIN_AMT"
	kfinColPurMax       = "PUR_MAX_AMT"
	kfinColPurMultiple  = "PUR_MULTIPLE"
	kfinColAddMin       = "ADD_MIN_AMT"
	kfinColRedAllow     = "RED_ALLOW"
	kfinColRedMin       = "RED_MIN_AMT"
	kfinColRedMinUnits  = "RED_MIN_UNITS"
	kfinColRedMultiple  = "RED_MULTIPLE"
	kfinColSIPAllow     = "SIP_ALLOW"
	kfinColSIPMin       = "SIP_MIN_AMT"
	kfinColSIPMax       = "SIP_MAX_AMT"
	kfinColSIPFreq      = "SIP_FREQ"
	kfinColSTPInAllow   = "STP_IN_ALLOW"
	kfinColSTPOutAllow  = "STP_OUT_ALLOW"
	kfinColSTPMin       = "STP_MIN_AMT"
	kfinColSWPAllow     = "SWP_ALLOW"
	kfinColSWPMin       = "SWP_MIN_AMT"
	kfinColSwitchIn     = "SWI_ALLOW"
	kfinColSwitchOut    = "SWO_ALLOW"
	kfinColSwitchInMin  = "SWI_MIN_AMT"
	kfinColSwitchOutMin = "SWO_MIN_AMT"
	kfinColOpenDate     = "OPEN_DATE"
	kfinColCloseDate    = "CLOSE_DATE"
	kfinColLoadDetails  = "LOAD_DETAILS"
	kfinColFaceValue    = "FACE_VALUE"
	kfinColDematAllow   = "DEMAT_ALLOW"
	kfinColPurCutoff    = "PUR_CUTOFF"
	kfinColRedCutoff    = "RED_CUTOFF"
	kfinColSwitchCutoff = "SWITCH_CUTOFF"
)

// KFin normalizes KFin scheme master rows. Franklin-serviced schemes
// arrive through this same layout.
type KFin struct{}

// NewKFin returns the KFin registrar adapter.
func NewKFin() *KFin {
	return &KFin{}
}

// Source returns the feed source this adapter understands.
func (k *KFin) Source() schemes.Source {
	return schemes.SourceKFin
}

// Normalize converts one KFin row. Scheme code, scheme name, and a valid
// ISIN are required.
func (k *KFin) Normalize(row *schemes.RawRow) (*schemes.RtaSchemeRecord, error) {
	schemeCode, err := required(row, k.Source(), kfinColSchemeCode)
	if err != nil {
		return nil, err
	}
	name, err := required(row, k.Source(), kfinColSchemeName)
	if err != nil {
		return nil, err
	}
	rawISIN, err := required(row, k.Source(), kfinColISIN)
	if err != nil {
		return nil, err
	}
	isin := normalize.CleanISIN(rawISIN)
	if isin == "" {
		return nil, &errors.MalformedRowError{
			Source: string(k.Source()),
			File:   row.SourceFile,
			Line:   row.Line,
			Column: kfinColISIN,
			Reason: "not a valid ISIN",
		}
	}

	record := &schemes.RtaSchemeRecord{
		Key: schemes.RtaKey{
			Source:     k.Source(),
			SchemeCode: schemeCode,
			PlanCode:   field(row, kfinColPlanCode),
			OptionCode: field(row, kfinColOptionCode),
		},
		AMCCode:        field(row, kfinColAMCCode),
		AMCName:        field(row, kfinColAMCName),
		SchemeName:     name,
		PlanName:       field(row, kfinColPlanDesc),
		OptionName:     field(row, kfinColOptionDesc),
		Nature:         field(row, kfinColNature),
		FundType:       field(row, kfinColFundType),
		ISIN:           isin,
		NormalizedName: normalize.Name(name),

		PurchaseAllowed:     parseBool(field(row, kfinColPurAllow)),
		PurchaseMinAmount:   parseFloat(field(row, kfinColPurMin)),
		PurchaseMaxAmount:   parseFloat(field(row, kfinColPurMax)),
		PurchaseMultiple:    parseFloat(field(row, kfinColPurMultiple)),
		PurchaseCutoff:      parseCutoff(field(row, kfinColPurCutoff)),
		AdditionalMinAmount: parseFloat(field(row, kfinColAddMin)),

		RedemptionAllowed:   parseBool(field(row, kfinColRedAllow)),
		RedemptionMinAmount: parseFloat(field(row, kfinColRedMin)),
		RedemptionMinUnits:  parseFloat(field(row, kfinColRedMinUnits)),
		RedemptionMultiple:  parseFloat(field(row, kfinColRedMultiple)),
		RedemptionCutoff:    parseCutoff(field(row, kfinColRedCutoff)),

		SIPAllowed:    parseBool(field(row, kfinColSIPAllow)),
		SIPMinAmount:  parseFloat(field(row, kfinColSIPMin)),
		SIPMaxAmount:  parseFloat(field(row, kfinColSIPMax)),
		SIPFrequency:  field(row, kfinColSIPFreq),
		STPInAllowed:  parseBool(field(row, kfinColSTPInAllow)),
		STPOutAllowed: parseBool(field(row, kfinColSTPOutAllow)),
		STPMinAmount:  parseFloat(field(row, kfinColSTPMin)),
		SWPAllowed:    parseBool(field(row, kfinColSWPAllow)),
		SWPMinAmount:  parseFloat(field(row, kfinColSWPMin)),

		SwitchInAllowed:    parseBool(field(row, kfinColSwitchIn)),
		SwitchOutAllowed:   parseBool(field(row, kfinColSwitchOut)),
		SwitchInMinAmount:  parseFloat(field(row, kfinColSwitchInMin)),
		SwitchOutMinAmount: parseFloat(field(row, kfinColSwitchOutMin)),
		SwitchCutoff:       parseCutoff(field(row, kfinColSwitchCutoff)),

		LoadDetails: field(row, kfinColLoadDetails),
		FaceValue:   parseFloat(field(row, kfinColFaceValue)),
		DematAllow:  parseBool(field(row, kfinColDematAllow)),
		OpenDate:    parseDate(field(row, kfinColOpenDate)),
		CloseDate:   parseDate(field(row, kfinColCloseDate)),

		SourceFile: row.SourceFile,
		ImportedAt: row.ImportedAt,
	}
	return record, nil
}
