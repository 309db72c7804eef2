package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/interfaces/http/middleware"
	"finid.backend/pkg/jwt"
	"finid.backend/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser stands in for the auth middleware
func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

type multipartPart struct {
	field, filename, contentType string
	data                         []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...multipartPart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// ---- auth

type authStub struct {
	signupIn  *entities.SignupInput
	signupErr error
	loginErr  error
	refresh   string
	refreshE  error
}

func (s *authStub) Signup(_ context.Context, in *entities.SignupInput) (*entities.AuthResponse, error) {
	s.signupIn = in
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return &entities.AuthResponse{AccessToken: "a", RefreshToken: "r", User: &entities.User{ID: uuid.New(), Username: in.Username}}, nil
}

func (s *authStub) Login(_ context.Context, in *entities.LoginInput) (*entities.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &entities.AuthResponse{AccessToken: "a", RefreshToken: "r", User: &entities.User{Username: in.Username}}, nil
}

func (s *authStub) RefreshToken(_ context.Context, token string) (*jwt.TokenPair, error) {
	s.refresh = token
	if s.refreshE != nil {
		return nil, s.refreshE
	}
	return &jwt.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func authRouter(stub *authStub) *gin.Engine {
	h := NewAuthHandler(stub)
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/token", h.Token)
	r.POST("/refresh", h.RefreshToken)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Signup(t *testing.T) {
	stub := &authStub{}
	rec := postJSON(authRouter(stub), "/signup", `{"username":"alice","first_name":"A","last_name":"L","email":"a@example.com","password1":"pw","password2":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "a", body["access"])
	assert.Equal(t, "r", body["refresh"])
	assert.Equal(t, "alice", body["user"].(map[string]interface{})["username"])
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
	assert.Equal(t, "A", stub.signupIn.FirstName)
}

func TestAuthHandler_SignupValidationError(t *testing.T) {
	stub := &authStub{signupErr: domainerrors.FieldError("password2", "The two password fields didn't match.")}
	rec := postJSON(authRouter(stub), "/signup", `{"username":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, domainerrors.CodeValidation, body["code"])
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, []interface{}{"The two password fields didn't match."}, fields["password2"])
}

func TestAuthHandler_SignupMalformedJSON(t *testing.T) {
	rec := postJSON(authRouter(&authStub{}), "/signup", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Token(t *testing.T) {
	rec := postJSON(authRouter(&authStub{}), "/token", `{"username":"bob","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a", decode(t, rec)["access"])

	rec = postJSON(authRouter(&authStub{}), "/token", `{"username":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(authRouter(&authStub{loginErr: domainerrors.ErrInvalidCredentials}), "/token", `{"username":"bob","password":"x"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, decode(t, rec)["code"])
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &authStub{}
	rec := postJSON(authRouter(stub), "/refresh", `{"refresh":"tok"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", stub.refresh)
	assert.Equal(t, "a2", decode(t, rec)["access"])

	rec = postJSON(authRouter(&authStub{refreshE: domainerrors.ErrTokenExpired}), "/refresh", `{"refresh":"tok"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has expired", decode(t, rec)["message"])

	rec = postJSON(authRouter(&authStub{refreshE: domainerrors.ErrUnauthorized}), "/refresh", `{"refresh":"tok"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(authRouter(stub), "/refresh", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- profile

type profileStub struct {
	userID   uuid.UUID
	input    *entities.UpdateProfileInput
	photo    []byte
	err      error
	profile  *entities.Profile
	username string
}

func (s *profileStub) GetProfile(_ context.Context, userID uuid.UUID) (*entities.ProfileView, error) {
	s.userID = userID
	if s.err != nil {
		return nil, s.err
	}
	return &entities.ProfileView{Profile: s.profile, Username: s.username}, nil
}

func (s *profileStub) UpdateProfile(_ context.Context, userID uuid.UUID, in *entities.UpdateProfileInput) (*entities.ProfileView, error) {
	s.userID = userID
	s.input = in
	if in.Photo != nil {
		s.photo, _ = io.ReadAll(in.Photo.Content)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &entities.ProfileView{Profile: s.profile, Username: s.username}, nil
}

func profileRouter(stub *profileStub, userID uuid.UUID) *gin.Engine {
	h := NewProfileHandler(stub)
	r := gin.New()
	r.GET("/profile", withUser(userID), h.GetProfile)
	r.PUT("/profile", withUser(userID), h.UpdateProfile)
	r.PATCH("/profile", withUser(userID), h.UpdateProfile)
	r.GET("/anon", h.GetProfile)
	return r
}

func TestProfileHandler_Get(t *testing.T) {
	userID := uuid.New()
	stub := &profileStub{profile: entities.NewProfile(userID), username: "erin"}
	r := profileRouter(stub, userID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "erin", body["username"])
	assert.Equal(t, "english", body["language"])
	assert.Equal(t, userID, stub.userID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileHandler_PatchJSONIsPartial(t *testing.T) {
	userID := uuid.New()
	stub := &profileStub{profile: entities.NewProfile(userID)}
	r := profileRouter(stub, userID)

	req := httptest.NewRequest(http.MethodPatch, "/profile", strings.NewReader(`{"email":"e@example.com","graduation_year":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, stub.input.Email)
	assert.Equal(t, "e@example.com", *stub.input.Email)
	require.NotNil(t, stub.input.GraduationYear)
	assert.EqualValues(t, "", *stub.input.GraduationYear)
	assert.Nil(t, stub.input.PhoneNumber)
	assert.Nil(t, stub.input.Photo)
}

func TestProfileHandler_PatchAcceptsGetBody(t *testing.T) {
	userID := uuid.New()
	profile := entities.NewProfile(userID)
	profile.DateOfBirth = entities.DateFrom(time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC))
	profile.GraduationYear = null.IntFrom(2020)
	stub := &profileStub{profile: profile, username: "erin"}
	r := profileRouter(stub, userID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "1990-05-01", body["date_of_birth"])
	assert.EqualValues(t, 2020, body["graduation_year"])

	req := httptest.NewRequest(http.MethodPatch, "/profile", bytes.NewReader(rec.Body.Bytes()))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotNil(t, stub.input.DateOfBirth)
	assert.Equal(t, "1990-05-01", *stub.input.DateOfBirth)
	require.NotNil(t, stub.input.GraduationYear)
	assert.EqualValues(t, "2020", *stub.input.GraduationYear)
}

func TestProfileHandler_PatchGraduationYearAsString(t *testing.T) {
	userID := uuid.New()
	stub := &profileStub{profile: entities.NewProfile(userID)}
	r := profileRouter(stub, userID)

	req := httptest.NewRequest(http.MethodPatch, "/profile", strings.NewReader(`{"graduation_year":"2012","date_of_birth":null}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, "2012", *stub.input.GraduationYear)
	assert.Nil(t, stub.input.DateOfBirth)
}

func TestProfileHandler_PutMultipartWithPhoto(t *testing.T) {
	userID := uuid.New()
	stub := &profileStub{profile: entities.NewProfile(userID)}
	r := profileRouter(stub, userID)

	body, ct := multipartBody(t, map[string]string{"phone_number": "+1555"},
		multipartPart{field: "profile_photo", filename: "me.png", contentType: "image/png", data: []byte("png")})
	req := httptest.NewRequest(http.MethodPut, "/profile", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotNil(t, stub.input.PhoneNumber)
	assert.Equal(t, "+1555", *stub.input.PhoneNumber)
	require.NotNil(t, stub.input.Photo)
	assert.Equal(t, "me.png", stub.input.Photo.Filename)
	assert.Equal(t, "image/png", stub.input.Photo.ContentType)
	assert.Equal(t, []byte("png"), stub.photo)
}

func TestProfileHandler_UpdateValidationError(t *testing.T) {
	userID := uuid.New()
	stub := &profileStub{err: domainerrors.FieldError("linkedin_profile", "Enter a valid URL.")}
	r := profileRouter(stub, userID)

	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"linkedin_profile":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a valid URL.")
}

// ---- kyc documents

type documentStub struct {
	items     []*entities.DocumentView
	input     *entities.UploadDocumentInput
	content   []byte
	uploadErr error
	deleteErr error
	deleted   uuid.UUID
}

func (s *documentStub) ListDocuments(context.Context, uuid.UUID) ([]*entities.DocumentView, error) {
	return s.items, nil
}

func (s *documentStub) UploadDocument(_ context.Context, _ uuid.UUID, in *entities.UploadDocumentInput) (*entities.DocumentView, error) {
	s.input = in
	if in.File != nil {
		s.content, _ = io.ReadAll(in.File.Content)
	}
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &entities.DocumentView{Document: &entities.Document{ID: uuid.New(), DocumentType: entities.DocumentType(in.DocumentType)}, FileURL: "/media/x"}, nil
}

func (s *documentStub) DeleteDocument(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	s.deleted = id
	return s.deleteErr
}

func kycRouter(stub *documentStub, userID uuid.UUID) *gin.Engine {
	h := NewKYCHandler(stub)
	r := gin.New()
	g := r.Group("/kyc", withUser(userID))
	g.GET("", h.ListDocuments)
	g.POST("", h.UploadDocument)
	g.DELETE("/:id", h.DeleteDocument)
	return r
}

func TestKYCHandler_List(t *testing.T) {
	stub := &documentStub{items: []*entities.DocumentView{
		{Document: &entities.Document{ID: uuid.New()}, FileURL: "/media/new"},
		{Document: &entities.Document{ID: uuid.New()}, FileURL: "/media/old"},
	}}
	rec := httptest.NewRecorder()
	kycRouter(stub, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/kyc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "/media/new", items[0].(map[string]interface{})["file_url"])
}

func TestKYCHandler_Upload(t *testing.T) {
	stub := &documentStub{}
	body, ct := multipartBody(t,
		map[string]string{"document_type": "passport", "document_id": "P1", "registration_number": "R9"},
		multipartPart{field: "document_file", filename: "scan.pdf", contentType: "application/pdf", data: []byte("%PDF")})
	req := httptest.NewRequest(http.MethodPost, "/kyc", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	kycRouter(stub, uuid.New()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "passport", decode(t, rec)["document_type"])
	assert.Equal(t, "P1", stub.input.DocumentNumber)
	assert.Equal(t, "R9", stub.input.RegistrationNumber)
	require.NotNil(t, stub.input.File)
	assert.Equal(t, "application/pdf", stub.input.File.ContentType)
	assert.Equal(t, int64(4), stub.input.File.Size)
	assert.Equal(t, []byte("%PDF"), stub.content)
}

func TestKYCHandler_UploadWithoutFilePassesNil(t *testing.T) {
	stub := &documentStub{uploadErr: domainerrors.FieldError("document_file", "This field is required.")}
	body, ct := multipartBody(t, map[string]string{"document_type": "passport"})
	req := httptest.NewRequest(http.MethodPost, "/kyc", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	kycRouter(stub, uuid.New()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.input.File)
	assert.Contains(t, rec.Body.String(), "This field is required.")
}

func TestKYCHandler_Delete(t *testing.T) {
	stub := &documentStub{}
	id := uuid.New()
	rec := httptest.NewRecorder()
	kycRouter(stub, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/kyc/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, stub.deleted)

	stub.deleteErr = domainerrors.ErrNotFound
	rec = httptest.NewRecorder()
	kycRouter(stub, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/kyc/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	kycRouter(stub, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/kyc/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- admin

type adminStub struct {
	profileFilter  entities.ProfileListFilter
	documentFilter entities.DocumentListFilter
}

func (s *adminStub) ListProfiles(_ context.Context, f entities.ProfileListFilter) ([]*entities.ProfileView, utils.PaginationMeta, error) {
	s.profileFilter = f
	return []*entities.ProfileView{}, utils.CalculateMeta(0, 1, 20), nil
}

func (s *adminStub) ListDocuments(_ context.Context, f entities.DocumentListFilter) ([]*entities.DocumentView, utils.PaginationMeta, error) {
	s.documentFilter = f
	return nil, utils.PaginationMeta{}, domainerrors.ErrForbidden
}

func TestAdminHandler_Lists(t *testing.T) {
	stub := &adminStub{}
	h := NewAdminHandler(stub)
	r := gin.New()
	r.GET("/profiles", h.ListProfiles)
	r.GET("/documents", h.ListDocuments)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles?search=ali&language=hindi&page=2&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.ProfileListFilter{Search: "ali", Language: "hindi", Page: 2, Limit: 5}, stub.profileFilter)
	assert.Contains(t, decode(t, rec), "meta")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents?document_type=passport&page=x", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, entities.DocumentListFilter{DocumentType: "passport"}, stub.documentFilter)
}

// ---- health

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return assert.AnError }

	r := gin.New()
	r.GET("/up", NewHealthHandler(map[string]Pinger{"database": ok}).Health)
	r.GET("/down", NewHealthHandler(map[string]Pinger{"database": ok, "redis": down}).Health)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/up", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/down", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "down", body["services"].(map[string]interface{})["redis"])
}
