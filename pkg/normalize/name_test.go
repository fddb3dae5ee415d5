package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "case folding and whitespace collapse",
			raw:  "  ABC   Bluechip \t Equity ",
			want: "abc bluechip equity",
		},
		{
			name: "boilerplate tokens removed",
			raw:  "ABC Bluechip Fund - Direct Plan - Growth Option",
			want: "abc bluechip",
		},
		{
			name: "regular dividend payout variant",
			raw:  "ABC Bluechip Fund - Regular Plan - Dividend Payout",
			want: "abc bluechip",
		},
		{
			name: "punctuation collapsed",
			raw:  "ABC (Bluechip) Equity--Series/II",
			want: "abc bluechip equity series ii",
		},
		{
			name: "diacritics stripped",
			raw:  "Crédit Équity Fund",
			want: "credit equity",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "only boilerplate",
			raw:  "Growth Plan Option",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.raw))
		})
	}
}

// The canonicalizer is used as a join key, so it has to be deterministic
// and total across arbitrary inputs.
func TestNameDeterministic(t *testing.T) {
	inputs := []string{
		"ABC Bluechip Fund - Direct Plan - Growth",
		"\x00\xff broken utf8 \xc3",
		"देवनागरी फंड",
		"    ",
		"ABC ~!@#$%^&*() DEF",
	}

	for _, in := range inputs {
		first := Name(in)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Name(in), "input %q", in)
		}
	}
}

func TestAMC(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ABC Mutual Fund", "abc"},
		{"L&T Mutual Fund", "l&t"},
		{"ABC   Asset  Management", "abc asset management"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AMC(tt.raw), "input %q", tt.raw)
	}
}

func TestValidISIN(t *testing.T) {
	assert.True(t, ValidISIN("INF000X01XX5"))
	assert.True(t, ValidISIN(" inf000x01xx5 "))
	assert.False(t, ValidISIN("INF000X01XX"))    // 11 chars
	assert.False(t, ValidISIN("XXF000X01XX55")) // wrong prefix
	assert.False(t, ValidISIN(""))
}

func TestExtractISINs(t *testing.T) {
	// AMFI jams the variants into one column.
	field := "INF000X01XX5 INF000X01XX6INF000X01XX7"
	assert.Equal(t, []string{"INF000X01XX5", "INF000X01XX6", "INF000X01XX7"}, ExtractISINs(field))

	assert.Nil(t, ExtractISINs(""))
	assert.Nil(t, ExtractISINs("no isin here"))
}

func TestCleanISIN(t *testing.T) {
	assert.Equal(t, "INF000X01XX5", CleanISIN(" inf000x01xx5 "))
	assert.Equal(t, "", CleanISIN("garbage"))
}
