package entities

// Choice is a stored value paired with its display label
type Choice struct {
	Value string
	Label string
}

// Language is a preferred language
type Language string

const (
	LanguageEnglish  Language = "english"
	LanguageHindi    Language = "hindi"
	LanguageSpanish  Language = "spanish"
	LanguageFrench   Language = "french"
	LanguageGerman   Language = "german"
	LanguageChinese  Language = "chinese"
	LanguageJapanese Language = "japanese"
	LanguageArabic   Language = "arabic"
	LanguageOther    Language = "other"
)

// EducationLevel is the highest education attained
type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationDiploma    EducationLevel = "diploma"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationPhD        EducationLevel = "phd"
	EducationOther      EducationLevel = "other"
)

// ProfessionType is the kind of employment
type ProfessionType string

const (
	ProfessionFullTime   ProfessionType = "full_time"
	ProfessionPartTime   ProfessionType = "part_time"
	ProfessionFreelance  ProfessionType = "freelance"
	ProfessionContract   ProfessionType = "contract"
	ProfessionInternship ProfessionType = "internship"
	ProfessionUnemployed ProfessionType = "unemployed"
	ProfessionStudent    ProfessionType = "student"
	ProfessionRetired    ProfessionType = "retired"
	ProfessionOther      ProfessionType = "other"
)

// DocumentType classifies an uploaded KYC document
type DocumentType string

const (
	DocumentPassport         DocumentType = "passport"
	DocumentDrivingLicense   DocumentType = "driving_license"
	DocumentNationalID       DocumentType = "national_id"
	DocumentBirthCertificate DocumentType = "birth_certificate"
	DocumentUtilityBill      DocumentType = "utility_bill"
	DocumentBankStatement    DocumentType = "bank_statement"
	DocumentEmploymentLetter DocumentType = "employment_letter"
	DocumentOther            DocumentType = "other"
)

var (
	LanguageChoices = []Choice{
		{string(LanguageEnglish), "English"},
		{string(LanguageHindi), "Hindi"},
		{string(LanguageSpanish), "Spanish"},
		{string(LanguageFrench), "French"},
		{string(LanguageGerman), "German"},
		{string(LanguageChinese), "Chinese"},
		{string(LanguageJapanese), "Japanese"},
		{string(LanguageArabic), "Arabic"},
		{string(LanguageOther), "Other"},
	}

	EducationLevelChoices = []Choice{
		{string(EducationHighSchool), "High School"},
		{string(EducationDiploma), "Diploma"},
		{string(EducationBachelor), "Bachelor's Degree"},
		{string(EducationMaster), "Master's Degree"},
		{string(EducationPhD), "PhD/Doctorate"},
		{string(EducationOther), "Other"},
	}

	ProfessionTypeChoices = []Choice{
		{string(ProfessionFullTime), "Full Time"},
		{string(ProfessionPartTime), "Part Time"},
		{string(ProfessionFreelance), "Freelance"},
		{string(ProfessionContract), "Contract"},
		{string(ProfessionInternship), "Internship"},
		{string(ProfessionUnemployed), "Unemployed"},
		{string(ProfessionStudent), "Student"},
		{string(ProfessionRetired), "Retired"},
		{string(ProfessionOther), "Other"},
	}

	DocumentTypeChoices = []Choice{
		{string(DocumentPassport), "Passport"},
		{string(DocumentDrivingLicense), "Driving License"},
		{string(DocumentNationalID), "National ID"},
		{string(DocumentBirthCertificate), "Birth Certificate"},
		{string(DocumentUtilityBill), "Utility Bill"},
		{string(DocumentBankStatement), "Bank Statement"},
		{string(DocumentEmploymentLetter), "Employment Letter"},
		{string(DocumentOther), "Other"},
	}
)

// ChoiceLabel returns the label for value, or value itself when unknown
func ChoiceLabel(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// ChoiceValues lists the stored values of a choice set
func ChoiceValues(choices []Choice) []string {
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		out = append(out, c.Value)
	}
	return out
}
