package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/scrypster/banyan/internal/auth"
	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

// AuthHandlers serves phone lookup, registration and login.
type AuthHandlers struct {
	store  storage.PersonStore
	tokens *auth.Manager
}

// NewAuthHandlers creates an AuthHandlers instance.
func NewAuthHandlers(store storage.PersonStore, tokens *auth.Manager) *AuthHandlers {
	return &AuthHandlers{store: store, tokens: tokens}
}

// CheckPhone handles POST /api/auth/check-phone - report whether a phone
// number belongs to a registered person or an unclaimed stub.
func (h *AuthHandlers) CheckPhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	phone := types.NormalizePhone(req.Phone)
	if phone == "" {
		respondError(w, http.StatusBadRequest, "invalid phone number", nil)
		return
	}

	p, err := h.store.GetPersonByPhone(r.Context(), phone)
	if errors.Is(err, storage.ErrNotFound) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"exists":            false,
			"profile_completed": false,
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to look up phone", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"exists":            true,
		"profile_completed": p.ProfileCompleted,
	})
}

// registerRequest carries the full profile submitted at registration.
type registerRequest struct {
	Phone             string `json:"phone"`
	WhatsApp          string `json:"whatsapp"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	MiddleName        string `json:"middle_name"`
	LastName          string `json:"last_name"`
	Gender            string `json:"gender"`
	DateOfBirth       string `json:"date_of_birth"`
	BloodGroup        string `json:"blood_group"`
	Religion          string `json:"religion"`
	Community         string `json:"community"`
	Education         string `json:"education"`
	Occupation        string `json:"occupation"`
	OccupationDetails string `json:"occupation_details"`
	MaritalStatus     string `json:"marital_status"`
	MatrimonialStatus string `json:"matrimonial_status"`
	Address           string `json:"address"`
	Pincode           string `json:"pincode"`
	Area              string `json:"area"`
	PhotoURL          string `json:"photo_url"`
}

// authResponse is returned by register and login: a bearer token plus the
// person it authenticates.
type authResponse struct {
	Token  string        `json:"token"`
	Person *types.Person `json:"person"`
}

// Register handles POST /api/auth/register - create a person, or claim an
// existing stub with the same phone number. Registering an already
// claimed phone is a conflict.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	phone := types.NormalizePhone(req.Phone)
	if phone == "" {
		respondError(w, http.StatusBadRequest, "invalid phone number", nil)
		return
	}
	if req.FirstName == "" {
		respondError(w, http.StatusBadRequest, "first name is required", nil)
		return
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date of birth, expected YYYY-MM-DD", err)
			return
		}
		dob = &parsed
	}

	existing, err := h.store.GetPersonByPhone(r.Context(), phone)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "failed to look up phone", err)
		return
	}

	var person *types.Person
	switch {
	case existing == nil:
		person = &types.Person{ID: types.NewPersonID(), Phone: phone}
		applyProfile(person, &req, dob)
		person.ProfileCompleted = true
		if err := h.store.StorePerson(r.Context(), person); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to create person", err)
			return
		}

	case existing.ProfileCompleted:
		respondError(w, http.StatusConflict, "phone number is already registered", nil)
		return

	default:
		// Claim the stub: same identity, full profile. The phone never
		// changes, so every edge pointing at the stub stays valid.
		person = existing
		applyProfile(person, &req, dob)
		person.ProfileCompleted = true
		if err := h.store.UpdatePerson(r.Context(), person); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to claim profile", err)
			return
		}
	}

	token, err := h.tokens.Issue(person.ID, person.Phone)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: token, Person: person})
}

// Login handles POST /api/auth/login - issue a token for a registered
// phone number. Phone possession is asserted by the client; OTP delivery
// sits in front of this service.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	phone := types.NormalizePhone(req.Phone)
	if phone == "" {
		respondError(w, http.StatusBadRequest, "invalid phone number", nil)
		return
	}

	person, err := h.store.GetPersonByPhone(r.Context(), phone)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no account for this phone number", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to look up phone", err)
		return
	}
	if !person.ProfileCompleted {
		respondError(w, http.StatusConflict, "profile is not completed, register first", nil)
		return
	}

	token, err := h.tokens.Issue(person.ID, person.Phone)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, Person: person})
}

func applyProfile(p *types.Person, req *registerRequest, dob *time.Time) {
	p.WhatsApp = types.NormalizePhone(req.WhatsApp)
	p.Email = req.Email
	p.FirstName = req.FirstName
	p.MiddleName = req.MiddleName
	p.LastName = req.LastName
	p.Gender = types.NormalizeGender(req.Gender)
	p.DateOfBirth = dob
	p.BloodGroup = req.BloodGroup
	p.Religion = req.Religion
	p.Community = req.Community
	p.Education = req.Education
	p.Occupation = req.Occupation
	p.OccupationDetails = req.OccupationDetails
	p.MaritalStatus = req.MaritalStatus
	p.MatrimonialStatus = req.MatrimonialStatus
	p.Address = req.Address
	p.Pincode = req.Pincode
	p.Area = req.Area
	p.PhotoURL = req.PhotoURL
}
