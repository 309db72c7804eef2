package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	PhoneNumber     string     `gorm:"type:varchar(15);not null;default:''"`
	Address         string     `gorm:"type:text;not null;default:''"`
	DateOfBirth     *time.Time `gorm:"type:date"`
	LinkedInProfile string     `gorm:"column:linkedin_profile;type:varchar(200);not null;default:''"`
	GitHubProfile   string     `gorm:"column:github_profile;type:varchar(200);not null;default:''"`
	ProfilePhoto    *string    `gorm:"type:varchar(255)"`
	Nationality     string     `gorm:"type:varchar(100);not null;default:''"`
	Language        string     `gorm:"type:varchar(20);not null;default:'english'"`
	EducationLevel  string     `gorm:"type:varchar(20);not null;default:''"`
	Institution     string     `gorm:"type:varchar(200);not null;default:''"`
	GraduationYear  *int       `gorm:"type:integer"`
	Profession      string     `gorm:"type:varchar(100);not null;default:''"`
	ProfessionType  string     `gorm:"type:varchar(20);not null;default:''"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Documents []KycDocument `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}

func (Profile) TableName() string {
	return "user_profiles"
}
