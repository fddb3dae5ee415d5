package schemes

import (
	"fmt"

	"github.com/agentstation/utc"
)

// MasterKey identifies one published master row. A catalog code verified
// against several plan/option variants produces one row per variant, so
// the key is (code, plan, option), not code alone.
type MasterKey struct {
	Code       int    `json:"code" yaml:"code"`
	PlanCode   string `json:"plan_code" yaml:"plan_code"`
	OptionCode string `json:"option_code" yaml:"option_code"`
}

// String renders the key as code/plan/option.
func (k MasterKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.Code, k.PlanCode, k.OptionCode)
}

// SchemeMasterFinal is the published, query-optimized master record. Every
// field traces to exactly one side: identity fields always come from the
// catalog scheme, transactional fields always from the single RTA record
// the verified mapping points at.
type SchemeMasterFinal struct {
	Key MasterKey `json:"key" yaml:"key"`

	// Identity (catalog side)
	AMC            string `json:"amc" yaml:"amc"`
	SchemeName     string `json:"scheme_name" yaml:"scheme_name"`
	Category       string `json:"category,omitempty" yaml:"category,omitempty"`
	SubCategory    string `json:"sub_category,omitempty" yaml:"sub_category,omitempty"`
	ISIN           string `json:"isin" yaml:"isin"`
	NormalizedName string `json:"normalized_name" yaml:"normalized_name"`

	// Provenance of the transactional side
	RtaSource     Source `json:"rta_source" yaml:"rta_source"`
	RtaSchemeCode string `json:"rta_scheme_code" yaml:"rta_scheme_code"`
	RtaSchemeName string `json:"rta_scheme_name,omitempty" yaml:"rta_scheme_name,omitempty"`
	PlanName      string `json:"plan_name,omitempty" yaml:"plan_name,omitempty"`
	OptionName    string `json:"option_name,omitempty" yaml:"option_name,omitempty"`
	Nature        string `json:"nature,omitempty" yaml:"nature,omitempty"`

	// Transactional (RTA side)
	PurchaseAllowed     *bool    `json:"purchase_allowed,omitempty" yaml:"purchase_allowed,omitempty"`
	PurchaseMinAmount   *float64 `json:"purchase_min_amount,omitempty" yaml:"purchase_min_amount,omitempty"`
	PurchaseMaxAmount   *float64 `json:"purchase_max_amount,omitempty" yaml:"purchase_max_amount,omitempty"`
	PurchaseMultiple    *float64 `json:"purchase_multiple,omitempty" yaml:"purchase_multiple,omitempty"`
	PurchaseCutoff      string   `json:"purchase_cutoff,omitempty" yaml:"purchase_cutoff,omitempty"`
	RedemptionAllowed   *bool    `json:"redemption_allowed,omitempty" yaml:"redemption_allowed,omitempty"`
	RedemptionMinAmount *float64 `json:"redemption_min_amount,omitempty" yaml:"redemption_min_amount,omitempty"`
	RedemptionMaxAmount *float64 `json:"redemption_max_amount,omitempty" yaml:"redemption_max_amount,omitempty"`
	RedemptionCutoff    string   `json:"redemption_cutoff,omitempty" yaml:"redemption_cutoff,omitempty"`
	SIPAllowed          *bool    `json:"sip_allowed,omitempty" yaml:"sip_allowed,omitempty"`
	SIPMinAmount        *float64 `json:"sip_min_amount,omitempty" yaml:"sip_min_amount,omitempty"`
	STPInAllowed        *bool    `json:"stp_in_allowed,omitempty" yaml:"stp_in_allowed,omitempty"`
	STPOutAllowed       *bool    `json:"stp_out_allowed,omitempty" yaml:"stp_out_allowed,omitempty"`
	SWPAllowed          *bool    `json:"swp_allowed,omitempty" yaml:"swp_allowed,omitempty"`
	SwitchInAllowed     *bool    `json:"switch_in_allowed,omitempty" yaml:"switch_in_allowed,omitempty"`
	SwitchOutAllowed    *bool    `json:"switch_out_allowed,omitempty" yaml:"switch_out_allowed,omitempty"`
	LoadDetails         string   `json:"load_details,omitempty" yaml:"load_details,omitempty"`
	FaceValue           *float64 `json:"face_value,omitempty" yaml:"face_value,omitempty"`
	DematAllow          *bool    `json:"demat_allow,omitempty" yaml:"demat_allow,omitempty"`

	// Timestamps for record keeping and auditing. UpdatedAt advances only
	// when an input actually changed.
	CreatedAt utc.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt utc.Time `json:"updated_at" yaml:"updated_at"`
}

// ContentEquals reports whether two master rows carry the same data,
// ignoring the bookkeeping timestamps. The merge engine uses it to keep
// re-merges idempotent.
func (m *SchemeMasterFinal) ContentEquals(other *SchemeMasterFinal) bool {
	if other == nil {
		return false
	}
	a, b := *m, *other
	a.CreatedAt, b.CreatedAt = utc.Time{}, utc.Time{}
	a.UpdatedAt, b.UpdatedAt = utc.Time{}, utc.Time{}
	return equalMaster(&a, &b)
}

func equalMaster(a, b *SchemeMasterFinal) bool {
	if a.Key != b.Key ||
		a.AMC != b.AMC ||
		a.SchemeName != b.SchemeName ||
		a.Category != b.Category ||
		a.SubCategory != b.SubCategory ||
		a.ISIN != b.ISIN ||
		a.NormalizedName != b.NormalizedName ||
		a.RtaSource != b.RtaSource ||
		a.RtaSchemeCode != b.RtaSchemeCode ||
		a.RtaSchemeName != b.RtaSchemeName ||
		a.PlanName != b.PlanName ||
		a.OptionName != b.OptionName ||
		a.Nature != b.Nature ||
		a.PurchaseCutoff != b.PurchaseCutoff ||
		a.RedemptionCutoff != b.RedemptionCutoff ||
		a.LoadDetails != b.LoadDetails {
		return false
	}
	for _, pair := range [][2]*bool{
		{a.PurchaseAllowed, b.PurchaseAllowed},
		{a.RedemptionAllowed, b.RedemptionAllowed},
		{a.SIPAllowed, b.SIPAllowed},
		{a.STPInAllowed, b.STPInAllowed},
		{a.STPOutAllowed, b.STPOutAllowed},
		{a.SWPAllowed, b.SWPAllowed},
		{a.SwitchInAllowed, b.SwitchInAllowed},
		{a.SwitchOutAllowed, b.SwitchOutAllowed},
		{a.DematAllow, b.DematAllow},
	} {
		if !equalBool(pair[0], pair[1]) {
			return false
		}
	}
	for _, pair := range [][2]*float64{
		{a.PurchaseMinAmount, b.PurchaseMinAmount},
		{a.PurchaseMaxAmount, b.PurchaseMaxAmount},
		{a.PurchaseMultiple, b.PurchaseMultiple},
		{a.RedemptionMinAmount, b.RedemptionMinAmount},
		{a.RedemptionMaxAmount, b.RedemptionMaxAmount},
		{a.SIPMinAmount, b.SIPMinAmount},
		{a.FaceValue, b.FaceValue},
	} {
		if !equalFloat(pair[0], pair[1]) {
			return false
		}
	}
	return true
}

func equalBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
