package schemes

import (
	"slices"
	"strings"

	"github.com/agentstation/utc"
)

// Source identifies a registrar feed format.
type Source string

// String returns the string representation of a source.
func (s Source) String() string {
	return string(s)
}

// Registrar feed sources. Franklin schemes travel through the KFin layout
// since KFin services the Franklin back office.
const (
	SourceCAMS Source = "cams"
	SourceKFin Source = "kfin"
	SourceAMFI Source = "amfi" // catalog feed, not an RTA
)

// Sources returns the RTA feed sources (the catalog feed is separate).
func Sources() []Source {
	return []Source{SourceCAMS, SourceKFin}
}

// IsValid reports whether the source is a known feed source.
func (s Source) IsValid() bool {
	return s == SourceAMFI || slices.Contains(Sources(), s)
}

// RtaKey is the per-source natural key of an RTA scheme record. A single
// real-world scheme has many plan/option variants, each a distinct key.
type RtaKey struct {
	Source     Source `json:"source" yaml:"source"`
	SchemeCode string `json:"scheme_code" yaml:"scheme_code"`
	PlanCode   string `json:"plan_code" yaml:"plan_code"`
	OptionCode string `json:"option_code" yaml:"option_code"`
}

// String renders the key as source/scheme/plan/option for logs and errors.
func (k RtaKey) String() string {
	return strings.Join([]string{string(k.Source), k.SchemeCode, k.PlanCode, k.OptionCode}, "/")
}

// IsZero reports whether the key is empty.
func (k RtaKey) IsZero() bool {
	return k == RtaKey{}
}

// RtaSchemeRecord carries the transactional attributes a registrar reports
// for one scheme-plan-option variant. Numeric and date fields a source may
// omit are nil pointers: unknown is distinct from zero.
type RtaSchemeRecord struct {
	Key RtaKey `json:"key" yaml:"key"`

	// Identity as the registrar spells it
	AMCCode        string `json:"amc_code,omitempty" yaml:"amc_code,omitempty"`
	AMCName        string `json:"amc_name,omitempty" yaml:"amc_name,omitempty"`
	SchemeName     string `json:"scheme_name" yaml:"scheme_name"`
	PlanName       string `json:"plan_name,omitempty" yaml:"plan_name,omitempty"`
	OptionName     string `json:"option_name,omitempty" yaml:"option_name,omitempty"`
	Nature         string `json:"nature,omitempty" yaml:"nature,omitempty"` // open/close ended
	FundType       string `json:"fund_type,omitempty" yaml:"fund_type,omitempty"`
	ISIN           string `json:"isin" yaml:"isin"`
	NormalizedName string `json:"normalized_name" yaml:"normalized_name"`

	// Purchase
	PurchaseAllowed     *bool    `json:"purchase_allowed,omitempty" yaml:"purchase_allowed,omitempty"`
	PurchaseMinAmount   *float64 `json:"purchase_min_amount,omitempty" yaml:"purchase_min_amount,omitempty"`
	PurchaseMaxAmount   *float64 `json:"purchase_max_amount,omitempty" yaml:"purchase_max_amount,omitempty"`
	PurchaseMultiple    *float64 `json:"purchase_multiple,omitempty" yaml:"purchase_multiple,omitempty"`
	PurchaseCutoff      string   `json:"purchase_cutoff,omitempty" yaml:"purchase_cutoff,omitempty"` // HH:MM
	AdditionalMinAmount *float64 `json:"additional_min_amount,omitempty" yaml:"additional_min_amount,omitempty"`
	AdditionalMaxAmount *float64 `json:"additional_max_amount,omitempty" yaml:"additional_max_amount,omitempty"`
	AdditionalMultiple  *float64 `json:"additional_multiple,omitempty" yaml:"additional_multiple,omitempty"`

	// Redemption
	RedemptionAllowed   *bool    `json:"redemption_allowed,omitempty" yaml:"redemption_allowed,omitempty"`
	RedemptionMinAmount *float64 `json:"redemption_min_amount,omitempty" yaml:"redemption_min_amount,omitempty"`
	RedemptionMaxAmount *float64 `json:"redemption_max_amount,omitempty" yaml:"redemption_max_amount,omitempty"`
	RedemptionMinUnits  *float64 `json:"redemption_min_units,omitempty" yaml:"redemption_min_units,omitempty"`
	RedemptionMultiple  *float64 `json:"redemption_multiple,omitempty" yaml:"redemption_multiple,omitempty"`
	RedemptionCutoff    string   `json:"redemption_cutoff,omitempty" yaml:"redemption_cutoff,omitempty"` // HH:MM

	// Systematic plans
	SIPAllowed    *bool    `json:"sip_allowed,omitempty" yaml:"sip_allowed,omitempty"`
	SIPMinAmount  *float64 `json:"sip_min_amount,omitempty" yaml:"sip_min_amount,omitempty"`
	SIPMaxAmount  *float64 `json:"sip_max_amount,omitempty" yaml:"sip_max_amount,omitempty"`
	SIPFrequency  string   `json:"sip_frequency,omitempty" yaml:"sip_frequency,omitempty"`
	STPInAllowed  *bool    `json:"stp_in_allowed,omitempty" yaml:"stp_in_allowed,omitempty"`
	STPOutAllowed *bool    `json:"stp_out_allowed,omitempty" yaml:"stp_out_allowed,omitempty"`
	STPMinAmount  *float64 `json:"stp_min_amount,omitempty" yaml:"stp_min_amount,omitempty"`
	SWPAllowed    *bool    `json:"swp_allowed,omitempty" yaml:"swp_allowed,omitempty"`
	SWPMinAmount  *float64 `json:"swp_min_amount,omitempty" yaml:"swp_min_amount,omitempty"`

	// Switches
	SwitchInAllowed    *bool    `json:"switch_in_allowed,omitempty" yaml:"switch_in_allowed,omitempty"`
	SwitchOutAllowed   *bool    `json:"switch_out_allowed,omitempty" yaml:"switch_out_allowed,omitempty"`
	SwitchInMinAmount  *float64 `json:"switch_in_min_amount,omitempty" yaml:"switch_in_min_amount,omitempty"`
	SwitchOutMinAmount *float64 `json:"switch_out_min_amount,omitempty" yaml:"switch_out_min_amount,omitempty"`
	SwitchCutoff       string   `json:"switch_cutoff,omitempty" yaml:"switch_cutoff,omitempty"` // HH:MM

	// Misc transactional attributes
	LoadDetails string    `json:"load_details,omitempty" yaml:"load_details,omitempty"`
	FaceValue   *float64  `json:"face_value,omitempty" yaml:"face_value,omitempty"`
	DematAllow  *bool     `json:"demat_allow,omitempty" yaml:"demat_allow,omitempty"`
	OpenDate    *utc.Time `json:"open_date,omitempty" yaml:"open_date,omitempty"`
	CloseDate   *utc.Time `json:"close_date,omitempty" yaml:"close_date,omitempty"`

	// Import provenance
	SourceFile string   `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	ImportedAt utc.Time `json:"imported_at" yaml:"imported_at"`
}
