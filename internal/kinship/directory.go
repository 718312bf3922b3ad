// Package kinship holds the static kinship taxonomy: the directory of
// relation codes with their labels, gender constraints, generational
// levels and reciprocal codes, plus reciprocal resolution.
//
// The directory is process-wide constant data. It is built once as a
// package-level literal and has no runtime mutation path.
package kinship

import (
	"sort"

	"github.com/scrypster/banyan/pkg/types"
)

// VerticalGroup classifies a code by generation direction relative to the
// bearer: UP for ancestors, DOWN for descendants, SAME for the bearer's
// own generation.
type VerticalGroup string

const (
	GroupUp   VerticalGroup = "UP"
	GroupDown VerticalGroup = "DOWN"
	GroupSame VerticalGroup = "SAME"
)

// Meta is the directory entry for one kinship code.
type Meta struct {
	// Code is the taxonomy key (e.g. "KAKA").
	Code string `json:"code"`

	// Label is the human label for the code.
	Label string `json:"label"`

	// Gender constrains who can bear the code. Empty means no constraint.
	Gender types.Gender `json:"gender,omitempty"`

	// Level is the absolute generational distance from the bearer's
	// counterpart, always non-negative. The vertical group carries the
	// sign: UP codes sit at +Level, DOWN codes at -Level.
	Level int `json:"level"`

	// Group is the vertical classification of the code.
	Group VerticalGroup `json:"group"`

	// ReciprocalCode is the directory's default reciprocal. The override
	// table in reciprocal.go takes precedence; see Reciprocal.
	ReciprocalCode string `json:"reciprocal_code,omitempty"`
}

// SignedLevel returns the absolute generation level with the vertical
// group's sign applied: +Level for UP, -Level for DOWN, 0 for SAME.
func (m Meta) SignedLevel() int {
	switch m.Group {
	case GroupUp:
		return m.Level
	case GroupDown:
		return -m.Level
	}
	return 0
}

// directory is the full fixed taxonomy: five generational levels up and
// down plus same-generation spouses, siblings, in-laws and cousins.
var directory = map[string]Meta{
	// Ancestors, level 2-3
	"AJI_SASU":  {Code: "AJI_SASU", Label: "आजीसासू", Gender: types.GenderFemale, Level: 2, Group: GroupUp, ReciprocalCode: "NAT_JAVAI"},
	"AJI_SASRA": {Code: "AJI_SASRA", Label: "आजीसासरा", Gender: types.GenderMale, Level: 2, Group: GroupUp, ReciprocalCode: "NAT_JAVAI"},
	"AAJI":      {Code: "AAJI", Label: "आजी", Gender: types.GenderFemale, Level: 2, Group: GroupUp, ReciprocalCode: "NATU"},
	"AJOBA":     {Code: "AJOBA", Label: "आजोबा", Gender: types.GenderMale, Level: 2, Group: GroupUp, ReciprocalCode: "NATU"},
	"NANI":      {Code: "NANI", Label: "नानी", Gender: types.GenderFemale, Level: 2, Group: GroupUp, ReciprocalCode: "NATU"},
	"NANA":      {Code: "NANA", Label: "नाना", Gender: types.GenderMale, Level: 2, Group: GroupUp, ReciprocalCode: "NATU"},
	"PANAAJI":   {Code: "PANAAJI", Label: "पणजी", Gender: types.GenderFemale, Level: 3, Group: GroupUp, ReciprocalCode: "PANTU"},
	"PANJOBA":   {Code: "PANJOBA", Label: "पणजोबा", Gender: types.GenderMale, Level: 3, Group: GroupUp, ReciprocalCode: "PANTU"},

	// Ancestors, level 1
	"AAI":          {Code: "AAI", Label: "आई", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "MULGA"},
	"VADIL":        {Code: "VADIL", Label: "वडील", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "MULGA"},
	"SASU":         {Code: "SASU", Label: "सासू", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "JAVAI"},
	"SASRA":        {Code: "SASRA", Label: "सासरा", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "JAVAI"},
	"KAKA":         {Code: "KAKA", Label: "काका", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "PUTANYA"},
	"KAKI":         {Code: "KAKI", Label: "काकी", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "PUTANYA"},
	"MAMA":         {Code: "MAMA", Label: "मामा", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "BHACHA"},
	"MAMI":         {Code: "MAMI", Label: "मामी", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "BHACHA"},
	"AATYA":        {Code: "AATYA", Label: "आत्या", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "BHACHA"},
	"FUA":          {Code: "FUA", Label: "फुआ", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "BHACHA"},
	"MAVSHI":       {Code: "MAVSHI", Label: "मावशी", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "BHACHA"},
	"MAVSA":        {Code: "MAVSA", Label: "मावसा", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "BHACHA"},
	"CHULTA":       {Code: "CHULTA", Label: "चुलता", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "PUTANYA"},
	"CHULTI":       {Code: "CHULTI", Label: "चुलती", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "PUTANYA"},
	"SAVATR_VADIL": {Code: "SAVATR_VADIL", Label: "सावत्रवडील", Gender: types.GenderMale, Level: 1, Group: GroupUp, ReciprocalCode: "SAVATR_MULGA"},
	"SAVATR_AAI":   {Code: "SAVATR_AAI", Label: "सावत्रआई", Gender: types.GenderFemale, Level: 1, Group: GroupUp, ReciprocalCode: "SAVATR_MULGA"},

	// Ancestors, level 4-5
	"PP_AJOBA":  {Code: "PP_AJOBA", Label: "खापर पणजोबा", Gender: types.GenderMale, Level: 4, Group: GroupUp, ReciprocalCode: "NATU"},
	"PP_AAJI":   {Code: "PP_AAJI", Label: "खापर पणजी", Gender: types.GenderFemale, Level: 4, Group: GroupUp, ReciprocalCode: "NATU"},
	"PPP_AJOBA": {Code: "PPP_AJOBA", Label: "थोर खापर पणजोबा", Gender: types.GenderMale, Level: 5, Group: GroupUp, ReciprocalCode: "NATU"},
	"PPP_AAJI":  {Code: "PPP_AAJI", Label: "थोर खापर पणजी", Gender: types.GenderFemale, Level: 5, Group: GroupUp, ReciprocalCode: "NATU"},

	// Same generation
	"NAVRA":        {Code: "NAVRA", Label: "नवरा", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "BAYKO"},
	"BAYKO":        {Code: "BAYKO", Label: "बायको", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "NAVRA"},
	"BHAU":         {Code: "BHAU", Label: "भाऊ", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "BHAU"},
	"BAHIN":        {Code: "BAHIN", Label: "बहीण", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "BHAU"},
	"VAHINI":       {Code: "VAHINI", Label: "वहिनी", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "DIR_CHOTE"},
	"DAJI":         {Code: "DAJI", Label: "दाजी", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "MEVHANA"},
	"MEVHANA":      {Code: "MEVHANA", Label: "मेव्हणा", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "DAJI"},
	"MEVHANI":      {Code: "MEVHANI", Label: "मेव्हणी", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "DAJI"},
	"DIR_CHOTE":    {Code: "DIR_CHOTE", Label: "दिर-छोटे", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "VAHINI"},
	"DIR_MOTHE":    {Code: "DIR_MOTHE", Label: "दिर-मोठे", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "VAHINI"},
	"CHULAT_BHAU":  {Code: "CHULAT_BHAU", Label: "चुलतभाऊ", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "CHULAT_BHAU"},
	"CHULAT_BAHIN": {Code: "CHULAT_BAHIN", Label: "चुलतबहीण", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "CHULAT_BHAU"},
	"ATYE_BHAU":    {Code: "ATYE_BHAU", Label: "आत्येभाऊ", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "MAMBHAU"},
	"ATYE_BAHIN":   {Code: "ATYE_BAHIN", Label: "आत्येबहीण", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "MAMBHAU"},
	"MAV_BHAU":     {Code: "MAV_BHAU", Label: "मावसभाऊ", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "MAV_BHAU"},
	"MAV_BAHIN":    {Code: "MAV_BAHIN", Label: "मावसबहीण", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "MAV_BHAU"},
	"MAMBHAU":      {Code: "MAMBHAU", Label: "मामेभाऊ", Gender: types.GenderMale, Level: 0, Group: GroupSame, ReciprocalCode: "ATYE_BHAU"},
	"MAMBAHIN":     {Code: "MAMBAHIN", Label: "मामेबहीण", Gender: types.GenderFemale, Level: 0, Group: GroupSame, ReciprocalCode: "ATYE_BHAU"},

	// Descendants, level 1
	"MULGA":        {Code: "MULGA", Label: "मुलगा", Gender: types.GenderMale, Level: 1, Group: GroupDown, ReciprocalCode: "VADIL"},
	"MULGI":        {Code: "MULGI", Label: "मुलगी", Gender: types.GenderFemale, Level: 1, Group: GroupDown, ReciprocalCode: "VADIL"},
	"JAVAI":        {Code: "JAVAI", Label: "जावई", Gender: types.GenderMale, Level: 1, Group: GroupDown, ReciprocalCode: "SASRA"},
	"SUN":          {Code: "SUN", Label: "सुन", Gender: types.GenderFemale, Level: 1, Group: GroupDown, ReciprocalCode: "SASRA"},
	"PUTANYA":      {Code: "PUTANYA", Label: "पुतण्या", Gender: types.GenderMale, Level: 1, Group: GroupDown, ReciprocalCode: "KAKA"},
	"PUTANI":       {Code: "PUTANI", Label: "पुतणी", Gender: types.GenderFemale, Level: 1, Group: GroupDown, ReciprocalCode: "KAKA"},
	"BHACHA":       {Code: "BHACHA", Label: "भाचा", Gender: types.GenderMale, Level: 1, Group: GroupDown, ReciprocalCode: "MAMA"},
	"BHACHI":       {Code: "BHACHI", Label: "भाची", Gender: types.GenderFemale, Level: 1, Group: GroupDown, ReciprocalCode: "MAMA"},
	"SAVATR_MULGA": {Code: "SAVATR_MULGA", Label: "सावत्रमुलगा", Gender: types.GenderMale, Level: 1, Group: GroupDown, ReciprocalCode: "SAVATR_VADIL"},
	"SAVATR_MULGI": {Code: "SAVATR_MULGI", Label: "सावत्रमुलगी", Gender: types.GenderFemale, Level: 1, Group: GroupDown, ReciprocalCode: "SAVATR_VADIL"},

	// Descendants, level 2-3
	"NATU":        {Code: "NATU", Label: "नातू", Gender: types.GenderMale, Level: 2, Group: GroupDown, ReciprocalCode: "AJOBA"},
	"NAAT":        {Code: "NAAT", Label: "नात", Gender: types.GenderFemale, Level: 2, Group: GroupDown, ReciprocalCode: "AJOBA"},
	"NAT_JAVAI":   {Code: "NAT_JAVAI", Label: "नातजावई", Gender: types.GenderMale, Level: 2, Group: GroupDown, ReciprocalCode: "AAJI"},
	"NATASUN":     {Code: "NATASUN", Label: "नातसुन", Gender: types.GenderFemale, Level: 2, Group: GroupDown, ReciprocalCode: "AAJI"},
	"PANTU":       {Code: "PANTU", Label: "पणतू", Gender: types.GenderMale, Level: 3, Group: GroupDown, ReciprocalCode: "PANAAJI"},
	"PANTI":       {Code: "PANTI", Label: "पणती", Gender: types.GenderFemale, Level: 3, Group: GroupDown, ReciprocalCode: "PANAAJI"},
	"PANTISUN":    {Code: "PANTISUN", Label: "पणतीसून", Gender: types.GenderFemale, Level: 3, Group: GroupDown},
	"PANTU_JAVAI": {Code: "PANTU_JAVAI", Label: "पणतूजावई", Gender: types.GenderMale, Level: 3, Group: GroupDown},

	// Descendants, level 4-5
	"PP_NATU":  {Code: "PP_NATU", Label: "खापर नातू", Gender: types.GenderMale, Level: 4, Group: GroupDown, ReciprocalCode: "PP_AJOBA"},
	"PP_NAAT":  {Code: "PP_NAAT", Label: "खापर नात", Gender: types.GenderFemale, Level: 4, Group: GroupDown, ReciprocalCode: "PP_AJOBA"},
	"PPP_NATU": {Code: "PPP_NATU", Label: "थोर खापर नातू", Gender: types.GenderMale, Level: 5, Group: GroupDown, ReciprocalCode: "PPP_AJOBA"},
	"PPP_NAAT": {Code: "PPP_NAAT", Label: "थोर खापर नात", Gender: types.GenderFemale, Level: 5, Group: GroupDown, ReciprocalCode: "PPP_AJOBA"},
}

// Lookup returns the directory entry for a code.
func Lookup(code string) (Meta, bool) {
	m, ok := directory[code]
	return m, ok
}

// Label returns the human label for a code, falling back to the code
// itself when the directory has no entry.
func Label(code string) string {
	if m, ok := directory[code]; ok {
		return m.Label
	}
	return code
}

// SignedLevel returns the signed generation level for a code. Unknown
// codes default to level 0 (same generation).
func SignedLevel(code string) int {
	if m, ok := directory[code]; ok {
		return m.SignedLevel()
	}
	return 0
}

// Codes returns all directory entries in stable code order.
func Codes() []Meta {
	out := make([]Meta, 0, len(directory))
	for _, m := range directory {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ForGender returns the entries a person of the given gender can bear:
// unconstrained codes plus codes matching the gender. An empty gender
// returns everything.
func ForGender(g types.Gender) []Meta {
	all := Codes()
	if g == "" {
		return all
	}
	out := make([]Meta, 0, len(all))
	for _, m := range all {
		if m.Gender == "" || m.Gender == g {
			out = append(out, m)
		}
	}
	return out
}
