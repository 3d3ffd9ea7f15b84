package model

import "testing"

func TestInterpretLift(t *testing.T) {
	tests := []struct {
		want LiftBand
		lift float64
	}{
		{want: LiftVeryStrong, lift: 5.0},
		{want: LiftVeryStrong, lift: 3.0},
		{want: LiftStrong, lift: 2.9},
		{want: LiftStrong, lift: 2.0},
		{want: LiftModerate, lift: 1.9},
		{want: LiftModerate, lift: 1.5},
		{want: LiftWeak, lift: 1.4},
		{want: LiftWeak, lift: 1.01},
		{want: LiftNegative, lift: 1.0},
		{want: LiftNegative, lift: 0.5},
		{want: LiftNegative, lift: 0},
	}

	for _, tt := range tests {
		if got := InterpretLift(tt.lift); got != tt.want {
			t.Errorf("InterpretLift(%v) = %q, want %q", tt.lift, got, tt.want)
		}
	}
}

func TestHumanizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "office_supplies", want: "Office Supplies"},
		{in: "apparel", want: "Apparel"},
		{in: "nest_usa", want: "Nest Usa"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := HumanizeCategory(tt.in); got != tt.want {
			t.Errorf("HumanizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHumanizeCategories(t *testing.T) {
	got := HumanizeCategories([]string{"bags_more", "drinkware"})
	if got != "Bags More, Drinkware" {
		t.Errorf("HumanizeCategories = %q", got)
	}
}

func TestFeatureManifestColumns(t *testing.T) {
	m := FeatureManifest{
		ScoreColumns:      []string{"r_score", "f_score", "m_score"},
		ProportionColumns: []string{"prop_apparel", "prop_drinkware"},
	}
	cols := m.Columns()
	if len(cols) != 5 {
		t.Fatalf("got %d columns, want 5", len(cols))
	}
	if cols[0] != "r_score" || cols[4] != "prop_drinkware" {
		t.Errorf("unexpected column order: %v", cols)
	}
}
