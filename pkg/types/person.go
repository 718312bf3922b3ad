package types

import (
	"strings"
	"time"
)

// Gender is the declared gender of a person. The kinship taxonomy uses it
// to constrain which relation codes a person can bear.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// NormalizeGender maps free-form input to a Gender constant.
// Unknown values normalize to the empty Gender.
func NormalizeGender(s string) Gender {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	}
	return ""
}

// NormalizePhone reduces free-form phone input to the canonical storage
// form: digits only, last 10 kept (country prefixes are discarded).
// Returns the empty string when fewer than 10 digits remain.
func NormalizePhone(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) < 10 {
		return ""
	}
	return string(digits[len(digits)-10:])
}

// Person represents one member of the kinship graph.
//
// A person is created either by self-registration or implicitly as a stub
// when someone else names them as the target of a relation. Stubs carry
// ProfileCompleted=false until the person registers with the same phone
// number, which claims the record without changing its identity.
type Person struct {
	ID string `json:"id"`

	// Contact keys. Phone is the canonical lookup key and is stored
	// normalized (digits only, last 10).
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`

	// Name parts
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`

	// Personal
	Gender      Gender     `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	BloodGroup  string     `json:"blood_group,omitempty"`
	Religion    string     `json:"religion,omitempty"`
	Community   string     `json:"community,omitempty"`

	// Education / work
	Education         string `json:"education,omitempty"`
	Occupation        string `json:"occupation,omitempty"`
	OccupationDetails string `json:"occupation_details,omitempty"`

	// Family / marital
	MaritalStatus     string `json:"marital_status,omitempty"`
	MatrimonialStatus string `json:"matrimonial_status,omitempty"`

	// Address
	Address string `json:"address,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Area    string `json:"area,omitempty"`

	// Display
	PhotoURL string `json:"photo_url,omitempty"`

	// ProfileCompleted distinguishes a fully registered person from a
	// stub created only as the target of someone else's relation.
	ProfileCompleted bool `json:"profile_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayPerson is a Person with per-relation alias overlays applied.
// OriginalFirstName and OriginalPhotoURL preserve the canonical identity
// so a consumer can always recover the un-aliased record.
type DisplayPerson struct {
	Person
	OriginalFirstName string `json:"original_first_name,omitempty"`
	OriginalPhotoURL  string `json:"original_photo_url,omitempty"`
}
