package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/infrastructure/models"
	"finid.backend/pkg/utils"
)

// ProfileRepository implements profile data operations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreate returns the user's profile, inserting a default one when absent.
// Concurrent first requests race on the unique user_id index; the loser's
// insert is a no-op and both read back the same row.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	m := toProfileModel(entities.NewProfile(userID))
	m.ID = utils.GenerateUUIDv7()
	m.CreatedAt = now
	m.UpdatedAt = now

	err = GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(m).Error
	if err != nil && !isUniqueConstraintError(err) {
		return nil, err
	}

	return r.GetByUserID(ctx, userID)
}

// GetByUserID gets the profile owned by userID
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	var m models.Profile
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toProfileEntity(&m), nil
}

// Update writes every editable profile column
func (r *ProfileRepository) Update(ctx context.Context, profile *entities.Profile) error {
	m := toProfileModel(profile)
	profile.UpdatedAt = time.Now()

	updates := map[string]interface{}{
		"phone_number":     m.PhoneNumber,
		"address":          m.Address,
		"date_of_birth":    m.DateOfBirth,
		"linkedin_profile": m.LinkedInProfile,
		"github_profile":   m.GitHubProfile,
		"profile_photo":    m.ProfilePhoto,
		"nationality":      m.Nationality,
		"language":         m.Language,
		"education_level":  m.EducationLevel,
		"institution":      m.Institution,
		"graduation_year":  m.GraduationYear,
		"profession":       m.Profession,
		"profession_type":  m.ProfessionType,
		"updated_at":       profile.UpdatedAt,
	}

	result := GetDB(ctx, r.db).Model(&models.Profile{}).
		Where("id = ? AND user_id = ?", profile.ID, profile.UserID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns profiles joined with their owners for staff browsing.
// search matches username, email, phone number or nationality.
func (r *ProfileRepository) List(ctx context.Context, filter entities.ProfileListFilter) ([]*entities.ProfileView, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.Profile{}).
			Joins("JOIN users ON users.id = user_profiles.user_id")
		if filter.Search != "" {
			term := likeTerm(filter.Search)
			q = q.Where(
				"LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(user_profiles.phone_number) LIKE ? OR LOWER(user_profiles.nationality) LIKE ?",
				term, term, term, term,
			)
		}
		if filter.Language != "" {
			q = q.Where("user_profiles.language = ?", filter.Language)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := utils.GetPaginationParams(filter.Page, filter.Limit)
	var profileModels []models.Profile
	err := base().
		Select("user_profiles.*").
		Order("user_profiles.created_at DESC").
		Limit(page.Limit).
		Offset(page.CalculateOffset()).
		Find(&profileModels).Error
	if err != nil {
		return nil, 0, err
	}

	owners, err := r.ownersOf(ctx, profileModels)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*entities.ProfileView, 0, len(profileModels))
	for i := range profileModels {
		p := toProfileEntity(&profileModels[i])
		view := &entities.ProfileView{Profile: p}
		if u, ok := owners[p.UserID]; ok {
			view.Username = u.Username
			view.Email = u.Email
			view.FirstName = u.FirstName
			view.LastName = u.LastName
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (r *ProfileRepository) ownersOf(ctx context.Context, profiles []models.Profile) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(profiles))
	if len(profiles) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}

	var users []models.User
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func toProfileModel(p *entities.Profile) *models.Profile {
	return &models.Profile{
		ID:              p.ID,
		UserID:          p.UserID,
		PhoneNumber:     p.PhoneNumber,
		Address:         p.Address,
		DateOfBirth:     p.DateOfBirth.Ptr(),
		LinkedInProfile: p.LinkedInProfile,
		GitHubProfile:   p.GitHubProfile,
		ProfilePhoto:    p.PhotoPath.Ptr(),
		Nationality:     p.Nationality,
		Language:        string(p.Language),
		EducationLevel:  string(p.EducationLevel),
		Institution:     p.Institution,
		GraduationYear:  p.GraduationYear.Ptr(),
		Profession:      p.Profession,
		ProfessionType:  string(p.ProfessionType),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProfileEntity(m *models.Profile) *entities.Profile {
	return &entities.Profile{
		ID:              m.ID,
		UserID:          m.UserID,
		PhoneNumber:     m.PhoneNumber,
		Address:         m.Address,
		DateOfBirth:     entities.DateFromPtr(m.DateOfBirth),
		LinkedInProfile: m.LinkedInProfile,
		GitHubProfile:   m.GitHubProfile,
		PhotoPath:       null.StringFromPtr(m.ProfilePhoto),
		Nationality:     m.Nationality,
		Language:        entities.Language(m.Language),
		EducationLevel:  entities.EducationLevel(m.EducationLevel),
		Institution:     m.Institution,
		GraduationYear:  null.IntFromPtr(m.GraduationYear),
		Profession:      m.Profession,
		ProfessionType:  entities.ProfessionType(m.ProfessionType),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
