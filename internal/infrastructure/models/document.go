package models

import (
	"time"

	"github.com/google/uuid"
)

type KycDocument struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProfileID          uuid.UUID `gorm:"type:uuid;not null;index:idx_kyc_documents_profile_uploaded,priority:1"`
	DocumentFile       string    `gorm:"type:varchar(255);not null"`
	OriginalName       string    `gorm:"type:varchar(255);not null;default:''"`
	ContentType        string    `gorm:"type:varchar(100);not null;default:''"`
	Size               int64     `gorm:"not null;default:0"`
	DocumentType       string    `gorm:"type:varchar(30);not null;default:'other'"`
	DocumentID         *string   `gorm:"column:document_id;type:varchar(20)"`
	RegistrationNumber *string   `gorm:"type:varchar(20)"`
	UploadedAt         time.Time `gorm:"not null;index:idx_kyc_documents_profile_uploaded,priority:2,sort:desc"`
}

func (KycDocument) TableName() string {
	return "kyc_documents"
}
