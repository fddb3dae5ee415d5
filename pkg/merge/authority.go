package merge

import (
	"sort"

	"github.com/openfolio/schememaster/pkg/schemes"
)

// Side names which input owns a master field. Every field has exactly one
// owner; the merge never blends the two sides.
type Side string

// Field owners.
const (
	SideCatalog Side = "catalog" // association catalog scheme
	SideRTA     Side = "rta"     // registrar record the verified mapping points at
)

// fieldAuthority assigns each master field its owning side. Identity
// belongs to the catalog; everything transactional belongs to the RTA.
// The ISIN is RTA-owned because it identifies the plan/option variant,
// which the catalog only carries as a set.
var fieldAuthority = map[string]Side{
	"amc":             SideCatalog,
	"scheme_name":     SideCatalog,
	"category":        SideCatalog,
	"sub_category":    SideCatalog,
	"normalized_name": SideCatalog,

	"isin":            SideRTA,
	"rta_source":      SideRTA,
	"rta_scheme_code": SideRTA,
	"rta_scheme_name": SideRTA,
	"plan_name":       SideRTA,
	"option_name":     SideRTA,
	"nature":          SideRTA,

	"purchase_allowed":      SideRTA,
	"purchase_min_amount":   SideRTA,
	"purchase_max_amount":   SideRTA,
	"purchase_multiple":     SideRTA,
	"purchase_cutoff":       SideRTA,
	"redemption_allowed":    SideRTA,
	"redemption_min_amount": SideRTA,
	"redemption_max_amount": SideRTA,
	"redemption_cutoff":     SideRTA,
	"sip_allowed":           SideRTA,
	"sip_min_amount":        SideRTA,
	"stp_in_allowed":        SideRTA,
	"stp_out_allowed":       SideRTA,
	"swp_allowed":           SideRTA,
	"switch_in_allowed":     SideRTA,
	"switch_out_allowed":    SideRTA,
	"load_details":          SideRTA,
	"face_value":            SideRTA,
	"demat_allow":           SideRTA,
}

// Authority returns the owning side for a master field name, and whether
// the field is known.
func Authority(field string) (Side, bool) {
	side, ok := fieldAuthority[field]
	return side, ok
}

// Fields returns the governed master field names in sorted order.
func Fields() []string {
	fields := make([]string, 0, len(fieldAuthority))
	for field := range fieldAuthority {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// compose builds a master row from its two owned sides. Timestamps are
// left zero; the merger stamps them against the prior version.
func compose(scheme *schemes.CatalogScheme, record *schemes.RtaSchemeRecord) *schemes.SchemeMasterFinal {
	return &schemes.SchemeMasterFinal{
		Key: schemes.MasterKey{
			Code:       scheme.Code,
			PlanCode:   record.Key.PlanCode,
			OptionCode: record.Key.OptionCode,
		},

		AMC:            scheme.AMC,
		SchemeName:     scheme.SchemeName,
		Category:       scheme.Category,
		SubCategory:    scheme.SubCategory,
		NormalizedName: scheme.NormalizedName,

		ISIN:          record.ISIN,
		RtaSource:     record.Key.Source,
		RtaSchemeCode: record.Key.SchemeCode,
		RtaSchemeName: record.SchemeName,
		PlanName:      record.PlanName,
		OptionName:    record.OptionName,
		Nature:        record.Nature,

		PurchaseAllowed:     record.PurchaseAllowed,
		PurchaseMinAmount:   record.PurchaseMinAmount,
		PurchaseMaxAmount:   record.PurchaseMaxAmount,
		PurchaseMultiple:    record.PurchaseMultiple,
		PurchaseCutoff:      record.PurchaseCutoff,
		RedemptionAllowed:   record.RedemptionAllowed,
		RedemptionMinAmount: record.RedemptionMinAmount,
		RedemptionMaxAmount: record.RedemptionMaxAmount,
		RedemptionCutoff:    record.RedemptionCutoff,
		SIPAllowed:          record.SIPAllowed,
		SIPMinAmount:        record.SIPMinAmount,
		STPInAllowed:        record.STPInAllowed,
		STPOutAllowed:       record.STPOutAllowed,
		SWPAllowed:          record.SWPAllowed,
		SwitchInAllowed:     record.SwitchInAllowed,
		SwitchOutAllowed:    record.SwitchOutAllowed,
		LoadDetails:         record.LoadDetails,
		FaceValue:           record.FaceValue,
		DematAllow:          record.DematAllow,
	}
}
