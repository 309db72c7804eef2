package entities

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DateLayout is the wire and form format of date_of_birth
const DateLayout = "2006-01-02"

// Profile holds the personal details attached one-to-one to a User
type Profile struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	PhoneNumber     string         `json:"phone_number"`
	Address         string         `json:"address"`
	DateOfBirth     Date           `json:"date_of_birth"`
	LinkedInProfile string         `json:"linkedin_profile"`
	GitHubProfile   string         `json:"github_profile"`
	PhotoPath       null.String    `json:"profile_photo"`
	Nationality     string         `json:"nationality"`
	Language        Language       `json:"language"`
	EducationLevel  EducationLevel `json:"education_level"`
	Institution     string         `json:"institution"`
	GraduationYear  null.Int       `json:"graduation_year"`
	Profession      string         `json:"profession"`
	ProfessionType  ProfessionType `json:"profession_type"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Date is an optional calendar date, encoded as "2006-01-02" or null
type Date struct {
	Time  time.Time
	Valid bool
}

// DateFrom returns a valid Date
func DateFrom(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

// DateFromPtr returns a Date that is unset when t is nil
func DateFromPtr(t *time.Time) Date {
	if t == nil {
		return Date{}
	}
	return DateFrom(*t)
}

// Ptr returns nil for an unset date
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	return &d.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return err
	}
	*d = DateFrom(t)
	return nil
}

// NumericString takes a JSON number or string and keeps its text, so a
// value such as graduation_year is validated as a field instead of failing
// to bind. Form values bind to it like a plain string.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	*n = NumericString(strings.TrimSpace(string(data)))
	return nil
}

// NewProfile returns an empty profile with defaults applied
func NewProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:   userID,
		Language: LanguageEnglish,
	}
}

// DateOfBirthString formats DateOfBirth for forms, empty when unset
func (p *Profile) DateOfBirthString() string {
	if !p.DateOfBirth.Valid {
		return ""
	}
	return p.DateOfBirth.Time.Format(DateLayout)
}

// ProfileView is a profile with the owner's identity fields, as shown to clients
type ProfileView struct {
	*Profile
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"profile_photo_url,omitempty"`
}

// UpdateProfileInput is a partial update across Profile and the owning User.
// Nil fields are left unchanged; an empty string clears an optional field.
type UpdateProfileInput struct {
	FirstName       *string        `json:"first_name" form:"first_name"`
	LastName        *string        `json:"last_name" form:"last_name"`
	Email           *string        `json:"email" form:"email"`
	PhoneNumber     *string        `json:"phone_number" form:"phone_number"`
	Address         *string        `json:"address" form:"address"`
	DateOfBirth     *string        `json:"date_of_birth" form:"date_of_birth"`
	LinkedInProfile *string        `json:"linkedin_profile" form:"linkedin_profile"`
	GitHubProfile   *string        `json:"github_profile" form:"github_profile"`
	Nationality     *string        `json:"nationality" form:"nationality"`
	Language        *string        `json:"language" form:"language"`
	EducationLevel  *string        `json:"education_level" form:"education_level"`
	Institution     *string        `json:"institution" form:"institution"`
	GraduationYear  *NumericString `json:"graduation_year" form:"graduation_year"`
	Profession      *string        `json:"profession" form:"profession"`
	ProfessionType  *string        `json:"profession_type" form:"profession_type"`

	Photo *UploadedFile `json:"-" form:"-"`
}

// Identity extracts the user-level part of the update
func (in *UpdateProfileInput) Identity() IdentityUpdate {
	return IdentityUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
	}
}

// ProfileListFilter narrows the staff profile listing
type ProfileListFilter struct {
	Search   string
	Language string
	Page     int
	Limit    int
}
