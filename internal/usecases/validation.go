package usecases

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
)

// Upload rejection messages
const (
	MsgUnsupportedFileType = "Unsupported file type. Allowed: PDF, JPEG, PNG."
	MsgFileTooLarge        = "File too large. Maximum allowed size is 5 MB."
	MsgPhotoNotImage       = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgRequired            = "This field is required."
	MsgPasswordMismatch    = "The two password fields didn't match."
	MsgPasswordTooShort    = "This password is too short. It must contain at least 8 characters."
	MsgPasswordNumeric     = "This password is entirely numeric."
	MsgUsernameTaken       = "A user with that username already exists."
)

const (
	minPasswordLength   = 8
	profilePhotoField   = "profile_photo"
	documentFileField   = "document_file"
	passwordField       = "password2"
	usernameField       = "username"
	dateOfBirthField    = "date_of_birth"
	graduationYearField = "graduation_year"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return isHTTPURL(fl.Field().String())
	})
	registerChoice(v, "language", entities.LanguageChoices)
	registerChoice(v, "education_level", entities.EducationLevelChoices)
	registerChoice(v, "profession_type", entities.ProfessionTypeChoices)
	registerChoice(v, "document_type", entities.DocumentTypeChoices)
	return v
}

func registerChoice(v *validator.Validate, tag string, choices []entities.Choice) {
	allowed := entities.ChoiceValues(choices)
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if a == value {
				return true
			}
		}
		return false
	})
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	return host != "" && !strings.ContainsAny(host, " _")
}

// collectErrors runs struct validation and folds the failures into ve
func collectErrors(ve *domainerrors.ValidationError, s interface{}) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		ve.Add("", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), messageFor(fe))
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		n := 0
		if s, ok := fe.Value().(string); ok {
			n = utf8.RuneCountInString(s)
		}
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), n)
	case "email":
		return "Enter a valid email address."
	case "httpurl":
		return "Enter a valid URL."
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "language", "education_level", "profession_type", "document_type":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	}
	return "Enter a valid value."
}

// ValidateUpload checks a KYC document upload. The declared content type is
// checked before the size. A nil file is not an error here.
func ValidateUpload(file *entities.UploadedFile) string {
	if file == nil {
		return ""
	}
	if !isAllowedType(file.ContentType, entities.AllowedDocumentTypes) {
		return MsgUnsupportedFileType
	}
	if file.Size > entities.MaxUploadSize {
		return MsgFileTooLarge
	}
	return ""
}

func validatePhoto(file *entities.UploadedFile) string {
	if file == nil {
		return ""
	}
	if !isAllowedType(file.ContentType, []string{entities.ContentTypeJPEG, entities.ContentTypePNG}) {
		return MsgPhotoNotImage
	}
	if file.Size > entities.MaxUploadSize {
		return MsgFileTooLarge
	}
	return ""
}

func isAllowedType(contentType string, allowed []string) bool {
	ct := strings.TrimSpace(strings.ToLower(strings.SplitN(contentType, ";", 2)[0]))
	for _, a := range allowed {
		if ct == a {
			return true
		}
	}
	return false
}

type documentForm struct {
	DocumentType       string `json:"document_type" validate:"document_type"`
	DocumentNumber     string `json:"document_id" validate:"max=20"`
	RegistrationNumber string `json:"registration_number" validate:"max=20"`
}

// validateDocumentInput returns field errors for an upload, file checks first
func validateDocumentInput(in *entities.UploadDocumentInput) *domainerrors.ValidationError {
	ve := domainerrors.NewValidationError()
	if in.File == nil {
		ve.Add(documentFileField, MsgRequired)
	} else if msg := ValidateUpload(in.File); msg != "" {
		ve.Add(documentFileField, msg)
	}

	form := documentForm{
		DocumentType:       strings.TrimSpace(in.DocumentType),
		DocumentNumber:     strings.TrimSpace(in.DocumentNumber),
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
	}
	if form.DocumentType == "" {
		form.DocumentType = string(entities.DocumentOther)
	}
	collectErrors(ve, form)

	in.DocumentType = form.DocumentType
	in.DocumentNumber = form.DocumentNumber
	in.RegistrationNumber = form.RegistrationNumber
	return ve
}

// validateSignup returns field errors for a signup attempt
func validateSignup(in *entities.SignupInput) *domainerrors.ValidationError {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	ve := domainerrors.NewValidationError()
	collectErrors(ve, in)

	if in.Password1 != "" && in.Password2 != "" {
		if in.Password1 != in.Password2 {
			ve.Add(passwordField, MsgPasswordMismatch)
		} else {
			for _, msg := range passwordProblems(in.Password1) {
				ve.Add(passwordField, msg)
			}
		}
	}
	return ve
}

func passwordProblems(pw string) []string {
	var out []string
	if utf8.RuneCountInString(pw) < minPasswordLength {
		out = append(out, MsgPasswordTooShort)
	}
	if isAllDigits(pw) {
		out = append(out, MsgPasswordNumeric)
	}
	return out
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type profileForm struct {
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	PhoneNumber     string `json:"phone_number" validate:"max=15"`
	LinkedInProfile string `json:"linkedin_profile" validate:"omitempty,max=200,httpurl"`
	GitHubProfile   string `json:"github_profile" validate:"omitempty,max=200,httpurl"`
	Nationality     string `json:"nationality" validate:"max=100"`
	Language        string `json:"language" validate:"omitempty,language"`
	EducationLevel  string `json:"education_level" validate:"omitempty,education_level"`
	Institution     string `json:"institution" validate:"max=200"`
	GraduationYear  *int   `json:"graduation_year" validate:"omitempty,gte=1900,lte=2030"`
	Profession      string `json:"profession" validate:"max=100"`
	ProfessionType  string `json:"profession_type" validate:"omitempty,profession_type"`
}

// applyProfileUpdate validates in and, when valid, applies it to p.
// p is left untouched when any field fails; check HasErrors on the result.
func applyProfileUpdate(p *entities.Profile, in *entities.UpdateProfileInput) *domainerrors.ValidationError {
	ve := domainerrors.NewValidationError()

	trimAll(in)
	form := profileForm{
		FirstName:       deref(in.FirstName),
		LastName:        deref(in.LastName),
		Email:           deref(in.Email),
		PhoneNumber:     deref(in.PhoneNumber),
		LinkedInProfile: deref(in.LinkedInProfile),
		GitHubProfile:   deref(in.GitHubProfile),
		Nationality:     deref(in.Nationality),
		Language:        deref(in.Language),
		EducationLevel:  deref(in.EducationLevel),
		Institution:     deref(in.Institution),
		Profession:      deref(in.Profession),
		ProfessionType:  deref(in.ProfessionType),
	}

	if in.Language != nil && *in.Language == "" {
		ve.Add("language", MsgRequired)
	}

	var dob time.Time
	if s := deref(in.DateOfBirth); s != "" {
		t, err := time.Parse(entities.DateLayout, s)
		if err != nil {
			ve.Add(dateOfBirthField, "Enter a valid date.")
		} else {
			dob = t
		}
	}

	if s := deref((*string)(in.GraduationYear)); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			ve.Add(graduationYearField, "Enter a whole number.")
		} else {
			form.GraduationYear = &year
		}
	}

	collectErrors(ve, form)
	if msg := validatePhoto(in.Photo); msg != "" {
		ve.Add(profilePhotoField, msg)
	}
	if ve.HasErrors() {
		return ve
	}

	setString(&p.PhoneNumber, in.PhoneNumber)
	setString(&p.Address, in.Address)
	setString(&p.LinkedInProfile, in.LinkedInProfile)
	setString(&p.GitHubProfile, in.GitHubProfile)
	setString(&p.Nationality, in.Nationality)
	setString(&p.Institution, in.Institution)
	setString(&p.Profession, in.Profession)
	if in.Language != nil {
		p.Language = entities.Language(*in.Language)
	}
	if in.EducationLevel != nil {
		p.EducationLevel = entities.EducationLevel(*in.EducationLevel)
	}
	if in.ProfessionType != nil {
		p.ProfessionType = entities.ProfessionType(*in.ProfessionType)
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth.Valid = *in.DateOfBirth != ""
		p.DateOfBirth.Time = dob
	}
	if in.GraduationYear != nil {
		p.GraduationYear.Valid = form.GraduationYear != nil
		if form.GraduationYear != nil {
			p.GraduationYear.Int = *form.GraduationYear
		} else {
			p.GraduationYear.Int = 0
		}
	}
	return ve
}

func trimAll(in *entities.UpdateProfileInput) {
	for _, f := range []*string{
		in.FirstName, in.LastName, in.Email, in.PhoneNumber, in.DateOfBirth,
		in.LinkedInProfile, in.GitHubProfile, in.Nationality, in.Language,
		in.EducationLevel, in.Institution, (*string)(in.GraduationYear), in.Profession, in.ProfessionType,
	} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
