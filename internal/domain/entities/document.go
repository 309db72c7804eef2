package entities

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Upload limits for KYC documents and profile photos
const (
	MaxUploadSize = 5 * 1024 * 1024

	// MaxOriginalNameLength is the width of kyc_documents.original_name
	MaxOriginalNameLength = 255

	ContentTypePDF  = "application/pdf"
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

// AllowedDocumentTypes are the accepted upload content types
var AllowedDocumentTypes = []string{ContentTypePDF, ContentTypeJPEG, ContentTypePNG}

// Document is an uploaded identity document owned by a profile
type Document struct {
	ID                 uuid.UUID    `json:"id"`
	ProfileID          uuid.UUID    `json:"profile_id"`
	FilePath           string       `json:"document_file"`
	OriginalName       string       `json:"original_name"`
	ContentType        string       `json:"content_type"`
	Size               int64        `json:"size"`
	DocumentType       DocumentType `json:"document_type"`
	DocumentNumber     string       `json:"document_id"`
	RegistrationNumber string       `json:"registration_number"`
	UploadedAt         time.Time    `json:"uploaded_at"`
}

// TypeLabel returns the display label of the document type
func (d *Document) TypeLabel() string {
	return ChoiceLabel(DocumentTypeChoices, string(d.DocumentType))
}

// DocumentView is a document with the owner's username and a download URL
type DocumentView struct {
	*Document
	Username string `json:"username,omitempty"`
	FileURL  string `json:"file_url"`
}

// UploadedFile is an incoming file with its client-declared metadata
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadDocumentInput is a KYC document upload request
type UploadDocumentInput struct {
	File               *UploadedFile `form:"-"`
	DocumentType       string        `form:"document_type" json:"document_type"`
	DocumentNumber     string        `form:"document_id" json:"document_id"`
	RegistrationNumber string        `form:"registration_number" json:"registration_number"`
}

// DocumentListFilter narrows the staff document listing
type DocumentListFilter struct {
	Search       string
	DocumentType string
	Page         int
	Limit        int
}
