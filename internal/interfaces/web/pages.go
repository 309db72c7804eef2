package web

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/domain/repositories"
	"finid.backend/internal/interfaces/http/handlers"
	"finid.backend/internal/interfaces/http/middleware"
	"finid.backend/pkg/logger"
)

// Page paths
const (
	HomePath        = "/"
	SignupPath      = "/signup"
	LoginPath       = middleware.LoginPath
	LogoutPath      = "/logout"
	ViewProfilePath = "/view-profile-page/"
	EditProfilePath = "/edit-profile-page/"
	ProfilePagePath = "/profile-page/"
	KYCPath         = "/kyc-page/"
	DocumentsPath   = "/documents-page/"
)

// Flash texts
const (
	MsgSignedUp        = "Account created successfully! Welcome to FinId."
	MsgProfileUpdated  = "Profile updated successfully."
	MsgDocumentStored  = "Document uploaded successfully."
	MsgDocumentDeleted = "Document deleted successfully."
	MsgDocumentMissing = "Document not found."
	MsgBadCredentials  = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	MsgUnreadableForm  = "The submitted form could not be read. Please try again."
)

// AccountService is the account surface used by the signup and login pages
type AccountService interface {
	Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error)
	Authenticate(ctx context.Context, input *entities.LoginInput) (*entities.User, error)
}

// Pages renders the browser-facing forms. It shares the usecases with the
// JSON API and authenticates through the session cookie.
type Pages struct {
	renderer  *Renderer
	sessions  *middleware.Sessions
	accounts  AccountService
	profiles  handlers.ProfileService
	documents handlers.DocumentService
	files     repositories.FileStore
}

// NewPages creates the page handlers
func NewPages(
	renderer *Renderer,
	sessions *middleware.Sessions,
	accounts AccountService,
	profiles handlers.ProfileService,
	documents handlers.DocumentService,
	files repositories.FileStore,
) *Pages {
	return &Pages{
		renderer:  renderer,
		sessions:  sessions,
		accounts:  accounts,
		profiles:  profiles,
		documents: documents,
		files:     files,
	}
}

type choiceSets struct {
	Languages       []entities.Choice
	EducationLevels []entities.Choice
	ProfessionTypes []entities.Choice
	DocumentTypes   []entities.Choice
}

var choices = choiceSets{
	Languages:       entities.LanguageChoices,
	EducationLevels: entities.EducationLevelChoices,
	ProfessionTypes: entities.ProfessionTypeChoices,
	DocumentTypes:   entities.DocumentTypeChoices,
}

type viewer struct {
	Username string
	IsStaff  bool
}

type pageData struct {
	Title     string
	User      *viewer
	Flashes   []Flash
	Choices   choiceSets
	Form      map[string]string
	Errors    map[string][]string
	Profile   *entities.ProfileView
	Documents []*entities.DocumentView
	Next      string
}

func (p *Pages) render(c *gin.Context, status int, name string, data *pageData) {
	if data.Form == nil {
		data.Form = map[string]string{}
	}
	data.Choices = choices
	data.Flashes = TakeFlashes(c)
	if _, ok := middleware.GetUserID(c); ok {
		data.User = &viewer{Username: middleware.GetUsername(c), IsStaff: middleware.IsStaff(c)}
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := p.renderer.Render(c.Writer, name, data); err != nil {
		logger.Error(c.Request.Context(), "Failed to render page", zap.String("page", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
	}
}

func (p *Pages) fail(c *gin.Context, err error) {
	logger.Error(c.Request.Context(), "Page request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// bindForm binds the request form into dst. A body that cannot be read is
// logged and returned as a form-level error.
func bindForm(c *gin.Context, dst interface{}) map[string][]string {
	if err := c.ShouldBind(dst); err != nil {
		logger.Warn(c.Request.Context(), "Failed to bind form",
			zap.String("path", c.Request.URL.Path),
			zap.String("content_type", c.ContentType()),
			zap.Error(err),
		)
		return map[string][]string{domainerrors.NonFieldKey: {MsgUnreadableForm}}
	}
	return nil
}

// fieldErrors returns the field map of a validation error, or nil
func fieldErrors(err error) (map[string][]string, bool) {
	ve, ok := domainerrors.AsValidation(err)
	if !ok {
		return nil, false
	}
	return ve.Fields, true
}

// Home shows the caller's profile and documents when signed in
// GET /
func (p *Pages) Home(c *gin.Context) {
	data := &pageData{Title: "Home"}
	if userID, ok := middleware.GetUserID(c); ok {
		profile, err := p.profiles.GetProfile(c.Request.Context(), userID)
		if err != nil {
			p.fail(c, err)
			return
		}
		docs, err := p.documents.ListDocuments(c.Request.Context(), userID)
		if err != nil {
			p.fail(c, err)
			return
		}
		data.Profile = profile
		data.Documents = docs
	}
	p.render(c, http.StatusOK, "home", data)
}

// SignupForm shows the account creation form
// GET /signup
func (p *Pages) SignupForm(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); ok {
		c.Redirect(http.StatusFound, HomePath)
		return
	}
	p.render(c, http.StatusOK, "signup", &pageData{Title: "Sign Up"})
}

// Signup creates the account and signs the new user in
// POST /signup
func (p *Pages) Signup(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); ok {
		c.Redirect(http.StatusFound, HomePath)
		return
	}

	var input entities.SignupInput
	if errs := bindForm(c, &input); errs != nil {
		p.render(c, http.StatusBadRequest, "signup", &pageData{Title: "Sign Up", Errors: errs})
		return
	}

	resp, err := p.accounts.Signup(c.Request.Context(), &input)
	if err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			p.fail(c, err)
			return
		}
		p.render(c, http.StatusOK, "signup", &pageData{
			Title: "Sign Up",
			Form: map[string]string{
				"username":   input.Username,
				"first_name": input.FirstName,
				"last_name":  input.LastName,
				"email":      input.Email,
			},
			Errors: fields,
		})
		return
	}

	if err := p.sessions.Start(c, resp.User); err != nil {
		p.fail(c, err)
		return
	}
	AddFlash(c, FlashSuccess, MsgSignedUp)
	c.Redirect(http.StatusFound, HomePath)
}

// LoginForm shows the sign-in form
// GET /login
func (p *Pages) LoginForm(c *gin.Context) {
	p.render(c, http.StatusOK, "login", &pageData{Title: "Log In", Next: c.Query("next")})
}

// Login verifies credentials and starts a session
// POST /login
func (p *Pages) Login(c *gin.Context) {
	input := entities.LoginInput{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
	}
	next := c.PostForm("next")

	user, err := p.accounts.Authenticate(c.Request.Context(), &input)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			p.fail(c, err)
			return
		}
		p.render(c, http.StatusOK, "login", &pageData{
			Title:  "Log In",
			Form:   map[string]string{"username": input.Username},
			Errors: map[string][]string{domainerrors.NonFieldKey: {MsgBadCredentials}},
			Next:   next,
		})
		return
	}

	if err := p.sessions.Start(c, user); err != nil {
		p.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

// Logout ends the session
// GET|POST /logout
func (p *Pages) Logout(c *gin.Context) {
	p.sessions.End(c)
	c.Redirect(http.StatusFound, HomePath)
}

// safeNext only follows local redirect targets
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return HomePath
	}
	return next
}

// ViewProfile shows the caller's profile read-only
// GET /view-profile-page/
func (p *Pages) ViewProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	profile, err := p.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		p.fail(c, err)
		return
	}
	p.render(c, http.StatusOK, "view_profile", &pageData{Title: "My Profile", Profile: profile})
}

// EditProfileForm shows the combined user and profile form
// GET /edit-profile-page/
func (p *Pages) EditProfileForm(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	profile, err := p.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		p.fail(c, err)
		return
	}
	p.render(c, http.StatusOK, "edit_profile", &pageData{
		Title:   "Edit Profile",
		Profile: profile,
		Form:    profileForm(profile),
	})
}

// EditProfile saves the combined form
// POST /edit-profile-page/
func (p *Pages) EditProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var input entities.UpdateProfileInput
	if errs := bindForm(c, &input); errs != nil {
		current, err := p.profiles.GetProfile(c.Request.Context(), userID)
		if err != nil {
			p.fail(c, err)
			return
		}
		p.render(c, http.StatusBadRequest, "edit_profile", &pageData{
			Title:   "Edit Profile",
			Profile: current,
			Form:    profileForm(current),
			Errors:  errs,
		})
		return
	}

	photo, closer, err := handlers.FormFile(c, "profile_photo")
	if err != nil {
		p.fail(c, err)
		return
	}
	defer closer.Close()
	input.Photo = photo

	if _, err := p.profiles.UpdateProfile(c.Request.Context(), userID, &input); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			p.fail(c, err)
			return
		}
		current, err := p.profiles.GetProfile(c.Request.Context(), userID)
		if err != nil {
			p.fail(c, err)
			return
		}
		p.render(c, http.StatusOK, "edit_profile", &pageData{
			Title:   "Edit Profile",
			Profile: current,
			Form:    submittedForm(c),
			Errors:  fields,
		})
		return
	}

	AddFlash(c, FlashSuccess, MsgProfileUpdated)
	c.Redirect(http.StatusFound, EditProfilePath)
}

func profileForm(v *entities.ProfileView) map[string]string {
	form := map[string]string{
		"first_name":       v.FirstName,
		"last_name":        v.LastName,
		"email":            v.Email,
		"phone_number":     v.PhoneNumber,
		"address":          v.Address,
		"date_of_birth":    v.DateOfBirthString(),
		"linkedin_profile": v.LinkedInProfile,
		"github_profile":   v.GitHubProfile,
		"nationality":      v.Nationality,
		"language":         string(v.Language),
		"education_level":  string(v.EducationLevel),
		"institution":      v.Institution,
		"graduation_year":  "",
		"profession":       v.Profession,
		"profession_type":  string(v.ProfessionType),
	}
	if v.GraduationYear.Valid {
		form["graduation_year"] = strconv.Itoa(v.GraduationYear.Int)
	}
	return form
}

func submittedForm(c *gin.Context) map[string]string {
	form := map[string]string{}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			form[key] = values[0]
		}
	}
	return form
}

// KYCForm shows the document upload form
// GET /kyc-page/
func (p *Pages) KYCForm(c *gin.Context) {
	p.render(c, http.StatusOK, "kyc_upload", &pageData{
		Title: "Upload KYC Document",
		Form:  map[string]string{"document_type": string(entities.DocumentOther)},
	})
}

// UploadKYC stores a submitted document
// POST /kyc-page/
func (p *Pages) UploadKYC(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var input entities.UploadDocumentInput
	if errs := bindForm(c, &input); errs != nil {
		p.render(c, http.StatusBadRequest, "kyc_upload", &pageData{
			Title:  "Upload KYC Document",
			Form:   map[string]string{"document_type": string(entities.DocumentOther)},
			Errors: errs,
		})
		return
	}

	file, closer, err := handlers.FormFile(c, "document_file")
	if err != nil {
		p.fail(c, err)
		return
	}
	defer closer.Close()
	input.File = file

	if _, err := p.documents.UploadDocument(c.Request.Context(), userID, &input); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			p.fail(c, err)
			return
		}
		p.render(c, http.StatusOK, "kyc_upload", &pageData{
			Title: "Upload KYC Document",
			Form: map[string]string{
				"document_type":       input.DocumentType,
				"document_id":         input.DocumentNumber,
				"registration_number": input.RegistrationNumber,
			},
			Errors: fields,
		})
		return
	}

	AddFlash(c, FlashSuccess, MsgDocumentStored)
	c.Redirect(http.StatusFound, KYCPath)
}

// Documents lists the caller's documents
// GET /documents-page/
func (p *Pages) Documents(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	docs, err := p.documents.ListDocuments(c.Request.Context(), userID)
	if err != nil {
		p.fail(c, err)
		return
	}
	p.render(c, http.StatusOK, "documents", &pageData{Title: "My Documents", Documents: docs})
}

// DeleteDocument removes the posted document_id if the caller owns it
// POST /documents-page/
func (p *Pages) DeleteDocument(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	raw := strings.TrimSpace(c.PostForm("document_id"))
	if raw == "" {
		c.Redirect(http.StatusFound, DocumentsPath)
		return
	}

	id, err := uuid.Parse(raw)
	if err == nil {
		err = p.documents.DeleteDocument(c.Request.Context(), userID, id)
	} else {
		err = domainerrors.ErrNotFound
	}

	switch {
	case err == nil:
		AddFlash(c, FlashSuccess, MsgDocumentDeleted)
	case errors.Is(err, domainerrors.ErrNotFound):
		AddFlash(c, FlashError, MsgDocumentMissing)
	default:
		p.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, DocumentsPath)
}

// Media serves an uploaded file to its owner, or to staff.
// Files outside the caller's own directories are reported as missing.
// GET <MEDIA_URL>*filepath
func (p *Pages) Media(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	userID, _ := middleware.GetUserID(c)
	if !middleware.IsStaff(c) && !ownsMedia(userID, rel) {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	rc, err := p.files.Open(c.Request.Context(), rel)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		p.fail(c, err)
		return
	}
	defer rc.Close()

	c.Header("X-Content-Type-Options", "nosniff")
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(c.Writer, c.Request, path.Base(rel), time.Time{}, rs)
		return
	}
	ctype := mime.TypeByExtension(path.Ext(rel))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, ctype, rc, nil)
}

// ownsMedia reports whether rel lies in one of the user's upload directories
func ownsMedia(userID uuid.UUID, rel string) bool {
	if userID == uuid.Nil || strings.Contains(rel, "..") {
		return false
	}
	id := userID.String()
	return strings.HasPrefix(rel, "kyc/"+id+"/") || strings.HasPrefix(rel, "profile_photos/"+id+"/")
}
