package kinship

// reciprocalOverrides disambiguates codes whose reciprocal cannot be read
// straight off the directory entry. Gendered sibling and in-law codes do
// not flip symmetrically (a sister's brother is BHAU regardless of which
// sibling code she chose), and some codes here have no directory entry at
// all (friend/co-in-law codes), so the override table is consulted before
// the directory.
var reciprocalOverrides = map[string]string{
	// Ancestor -> descendant
	"AAI": "MULGA", "VADIL": "MULGA",
	"SASU": "JAVAI", "SASRA": "JAVAI",
	"KAKA": "PUTANYA", "KAKI": "PUTANYA", "CHULTA": "PUTANYA", "CHULTI": "PUTANYA",
	"MAMA": "BHACHA", "MAMI": "BHACHA",
	"AATYA": "BHACHA", "FUA": "BHACHA",
	"MAVSHI": "BHACHA", "MAVSA": "BHACHA",
	"SAVATR_VADIL": "SAVATR_MULGA", "SAVATR_AAI": "SAVATR_MULGA",
	"AAJI": "NATU", "AJOBA": "NATU", "NANI": "NATU", "NANA": "NATU",
	"AJI_SASU": "NAT_JAVAI", "AJI_SASRA": "NAT_JAVAI",
	"PANAAJI": "PANTU", "PANJOBA": "PANTU",

	// Same generation
	"NAVRA": "BAYKO", "BAYKO": "NAVRA",
	"BHAU": "BHAU", "BAHIN": "BHAU",
	"VAHINI": "DIR_CHOTE",
	"DAJI":   "MEVHANA",
	"MEVHANA": "DAJI", "MEVHANI": "DAJI",
	"DIR_CHOTE": "VAHINI", "DIR_MOTHE": "VAHINI",
	"JAU": "JAU", "NANDOI": "MAVSHI",
	"SADU": "SADU", "VYAHI": "VYAHIN", "VYAHIN": "VYAHI",
	"MITRA": "MITRA", "MAITRIN": "MITRA",

	// Descendant -> ancestor
	"MULGA": "VADIL", "MULGI": "VADIL",
	"JAVAI": "SASRA", "SUN": "SASRA",
	"PUTANYA": "KAKA", "PUTANI": "KAKA",
	"BHACHA": "MAMA", "BHACHI": "MAMA",
	"SAVATR_MULGA": "SAVATR_VADIL", "SAVATR_MULGI": "SAVATR_VADIL",
	"NATU": "AJOBA", "NAAT": "AJOBA",
	"NAT_JAVAI": "AJI_SASU", "NATASUN": "AJI_SASU",
	"PANTU": "PANAAJI", "PANTI": "PANAAJI",
}

// Reciprocal returns the code the opposite endpoint of an edge uses for
// the same real-world relationship. Resolution is two-tier: the override
// table first, then the directory's reciprocal field, then the input code
// unchanged. Every input, known or unknown, produces a value.
func Reciprocal(code string) string {
	if rec, ok := reciprocalOverrides[code]; ok {
		return rec
	}
	if m, ok := directory[code]; ok && m.ReciprocalCode != "" {
		return m.ReciprocalCode
	}
	return code
}
