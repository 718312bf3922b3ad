package types

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9876543210", "9876543210"},
		{"+91 98765 43210", "9876543210"},
		{"091-9876543210", "9876543210"},
		{"(987) 654-3210", "9876543210"},
		{"12345", ""},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"male", GenderMale},
		{" FEMALE ", GenderFemale},
		{"Male", GenderMale},
		{"other", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeGender(tt.in); got != tt.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelationIsParticipant(t *testing.T) {
	rel := &Relation{FromID: "per:a", ToID: "per:b"}
	if !rel.IsParticipant("per:a") || !rel.IsParticipant("per:b") {
		t.Error("endpoints must be participants")
	}
	if rel.IsParticipant("per:c") {
		t.Error("non-endpoint must not be a participant")
	}
}
