package referral

import "testing"

func strp(s string) *string { return &s }

/*
TestClassify covers keyword order, case-insensitivity and the missing-source
edge case, which classifies as Other.
*/
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want Category
	}{
		{"sign_up_form", strp("Sign Up Form"), Online},
		{"draft_campaign", strp("Draft Campaign"), Offline},
		{"lead", strp("  LEAD magnet "), Lead},
		{"sign_up_wins_over_draft", strp("draft sign up"), Online},
		{"draft_wins_over_lead", strp("Lead Draft"), Offline},
		{"signup_without_space", strp("Signup"), Other},
		{"empty", strp(""), Other},
		{"missing", nil, Other},
		{"literal_nan", strp("NaN"), Other},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.in); got != tc.want {
				t.Fatalf("Classify(%v) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

/*
TestClassify_Totality checks that arbitrary inputs always land in one of the
four categories.
*/
func TestClassify_Totality(t *testing.T) {
	inputs := []string{"", " ", "x", "Sign", "up", "Drafts", "mislead", "ÜBER", "\x00", "sign  up"}
	valid := map[Category]bool{}
	for _, c := range Categories {
		valid[c] = true
	}
	for _, in := range inputs {
		in := in
		if got := Classify(&in); !valid[got] {
			t.Fatalf("Classify(%q) = %q; not a known category", in, got)
		}
	}
}
