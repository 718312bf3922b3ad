package kinship

import "testing"

func TestReciprocal_OverridesBeatDirectory(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"KAKA", "PUTANYA"},  // uncle -> nephew
		{"PUTANYA", "KAKA"},  // nephew -> uncle
		{"BHAU", "BHAU"},     // brother -> brother
		{"BAHIN", "BHAU"},    // sister's sibling is still addressed as brother
		{"NAVRA", "BAYKO"},   // husband -> wife
		{"BAYKO", "NAVRA"},   // wife -> husband
		{"AAI", "MULGA"},     // mother -> son
		{"NATU", "AJOBA"},    // grandson -> grandfather
		{"AJI_SASU", "NAT_JAVAI"},
	}
	for _, tt := range tests {
		if got := Reciprocal(tt.code); got != tt.want {
			t.Errorf("Reciprocal(%s) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestReciprocal_DirectoryFallback(t *testing.T) {
	// CHULAT_BHAU has no override entry; its directory reciprocal applies.
	if got := Reciprocal("CHULAT_BHAU"); got != "CHULAT_BHAU" {
		t.Errorf("Reciprocal(CHULAT_BHAU) = %s, want CHULAT_BHAU", got)
	}
	if got := Reciprocal("MAMBAHIN"); got != "ATYE_BHAU" {
		t.Errorf("Reciprocal(MAMBAHIN) = %s, want ATYE_BHAU", got)
	}
}

func TestReciprocal_IdentityFallback(t *testing.T) {
	// Codes absent from both tables reciprocate to themselves.
	if got := Reciprocal("FRIEND_OF_FAMILY"); got != "FRIEND_OF_FAMILY" {
		t.Errorf("Reciprocal(unknown) = %s, want input unchanged", got)
	}
}

func TestReciprocal_TotalOverDirectory(t *testing.T) {
	// Every directory code must resolve to a non-empty reciprocal.
	for _, m := range Codes() {
		if got := Reciprocal(m.Code); got == "" {
			t.Errorf("Reciprocal(%s) is empty", m.Code)
		}
	}
	// Codes that exist only in the override table resolve too.
	for code := range reciprocalOverrides {
		if got := Reciprocal(code); got == "" {
			t.Errorf("Reciprocal(%s) is empty", code)
		}
	}
}

func TestReciprocal_DoubleApplicationIsDefined(t *testing.T) {
	// reciprocal(reciprocal(c)) need not round-trip for gendered variants
	// (BAHIN -> BHAU -> BHAU) but must always be defined.
	for _, m := range Codes() {
		once := Reciprocal(m.Code)
		twice := Reciprocal(once)
		if twice == "" {
			t.Errorf("Reciprocal(Reciprocal(%s)) is empty", m.Code)
		}
	}
}
