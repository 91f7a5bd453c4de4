package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// UserProfile is the public profile attached to every user. One row per
// user, created when the account is registered.
type UserProfile struct {
	types.BaseModel

	UserID   uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex" json:"userId"`
	Headline *string   `gorm:"type:varchar(200)" json:"headline,omitempty"`
	Bio      *string   `gorm:"type:text" json:"bio,omitempty"`
	Location *string   `gorm:"type:varchar(100)" json:"location,omitempty"`
	Website  *string   `gorm:"type:varchar(255)" json:"website,omitempty"`
	Public   bool      `gorm:"type:boolean;not null;default:true;column:is_public" json:"isPublic"`

	Experiences  []Experience  `gorm:"foreignKey:ProfileID" json:"experiences,omitempty"`
	Educations   []Education   `gorm:"foreignKey:ProfileID" json:"educations,omitempty"`
	Skills       []Skill       `gorm:"foreignKey:ProfileID" json:"skills,omitempty"`
	Projects     []Project     `gorm:"foreignKey:ProfileID" json:"projects,omitempty"`
	Languages    []Language    `gorm:"foreignKey:ProfileID" json:"languages,omitempty"`
	Certificates []Certificate `gorm:"foreignKey:ProfileID" json:"certificates,omitempty"`
}

// TableName overrides the default table name.
func (UserProfile) TableName() string { return "user_profiles" }

// Experience is one work history entry.
type Experience struct {
	types.BaseModel

	ProfileID   uuid.UUID  `gorm:"type:uuid;not null;column:profile_id;index" json:"profileId"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Company     string     `gorm:"type:varchar(200);not null" json:"company"`
	Location    *string    `gorm:"type:varchar(100)" json:"location,omitempty"`
	StartDate   time.Time  `gorm:"not null;column:start_date" json:"startDate"`
	EndDate     *time.Time `gorm:"column:end_date" json:"endDate,omitempty"`
	Current     bool       `gorm:"type:boolean;not null;default:false;column:is_current" json:"isCurrent"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
}

// TableName overrides the default table name.
func (Experience) TableName() string { return "experiences" }

// Education is one education history entry.
type Education struct {
	types.BaseModel

	ProfileID    uuid.UUID `gorm:"type:uuid;not null;column:profile_id;index" json:"profileId"`
	School       string    `gorm:"type:varchar(200);not null" json:"school"`
	Degree       *string   `gorm:"type:varchar(100)" json:"degree,omitempty"`
	FieldOfStudy *string   `gorm:"type:varchar(100);column:field_of_study" json:"fieldOfStudy,omitempty"`
	StartYear    int       `gorm:"type:int;not null;column:start_year" json:"startYear"`
	EndYear      *int      `gorm:"type:int;column:end_year" json:"endYear,omitempty"`
}

// TableName overrides the default table name.
func (Education) TableName() string { return "educations" }

// Skill is a named skill with a proficiency level.
type Skill struct {
	types.BaseModel

	ProfileID   uuid.UUID         `gorm:"type:uuid;not null;column:profile_id;index" json:"profileId"`
	Name        string            `gorm:"type:varchar(100);not null" json:"name"`
	Proficiency types.Proficiency `gorm:"type:varchar(20);not null;default:'beginner'" json:"proficiency"`
}

// TableName overrides the default table name.
func (Skill) TableName() string { return "skills" }

// Project is a portfolio project entry.
type Project struct {
	types.BaseModel

	ProfileID   uuid.UUID `gorm:"type:uuid;not null;column:profile_id;index" json:"profileId"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	URL         *string   `gorm:"type:varchar(255)" json:"url,omitempty"`
}

// TableName overrides the default table name.
func (Project) TableName() string { return "projects" }

// Language is a spoken language entry.
type Language struct {
	types.BaseModel

	ProfileID   uuid.UUID         `gorm:"type:uuid;not null;column:profile_id;index" json:"profileId"`
	Name        string            `gorm:"type:varchar(100);not null" json:"name"`
	Proficiency types.Proficiency `gorm:"type:varchar(20);not null;default:'beginner'" json:"proficiency"`
}

// TableName overrides the default table name.
func (Language) TableName() string { return "languages" }

// Certificate is a certification entry.
type Certificate struct {
	types.BaseModel

	ProfileID     uuid.UUID  `gorm:"type:uuid;not null;column:profile_id;index" json:"profileId"`
	Name          string     `gorm:"type:varchar(200);not null" json:"name"`
	Issuer        *string    `gorm:"type:varchar(200)" json:"issuer,omitempty"`
	IssueDate     *time.Time `gorm:"column:issue_date" json:"issueDate,omitempty"`
	CredentialURL *string    `gorm:"type:varchar(255);column:credential_url" json:"credentialUrl,omitempty"`
}

// TableName overrides the default table name.
func (Certificate) TableName() string { return "certificates" }

// Ensure creates the profile row for a user if it does not exist yet and
// returns it. Safe to call concurrently; the unique index on user_id keeps
// it to one row.
func Ensure(db *gorm.DB, userID uuid.UUID) (UserProfile, error) {
	profile := UserProfile{UserID: userID, Public: true}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&profile)
	if result.Error != nil {
		return UserProfile{}, result.Error
	}

	if result.RowsAffected == 0 {
		// Refetch into a fresh struct: profile.ID now holds the discarded
		// insert's key and First would include it in the WHERE clause.
		var existing UserProfile
		if err := db.First(&existing, "user_id = ?", userID).Error; err != nil {
			return UserProfile{}, err
		}
		profile = existing
	}

	return profile, nil
}

// GetByUser retrieves a user's profile with all sections loaded.
func GetByUser(db *gorm.DB, userID uuid.UUID) (UserProfile, error) {
	var profile UserProfile
	err := db.
		Preload("Experiences", func(db *gorm.DB) *gorm.DB { return db.Order("start_date DESC") }).
		Preload("Educations", func(db *gorm.DB) *gorm.DB { return db.Order("start_year DESC") }).
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Projects", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Languages", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Certificates", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return profile, ErrProfileNotFound
		}
		return profile, err
	}
	return profile, nil
}

// UpdateInput captures mutable profile fields.
type UpdateInput struct {
	Headline *string
	Bio      *string
	Location *string
	Website  *string
	Public   *bool
}

// Update modifies the profile's own fields (not its sections).
func Update(db *gorm.DB, userID uuid.UUID, input UpdateInput) (UserProfile, error) {
	profile, err := Ensure(db, userID)
	if err != nil {
		return profile, err
	}

	updates := map[string]interface{}{}
	if input.Headline != nil {
		updates["headline"] = trimToNil(*input.Headline)
	}
	if input.Bio != nil {
		updates["bio"] = trimToNil(*input.Bio)
	}
	if input.Location != nil {
		updates["location"] = trimToNil(*input.Location)
	}
	if input.Website != nil {
		updates["website"] = trimToNil(*input.Website)
	}
	if input.Public != nil {
		updates["is_public"] = *input.Public
	}

	if len(updates) > 0 {
		if err := db.Model(&UserProfile{}).Where("id = ?", profile.ID).Updates(updates).Error; err != nil {
			return profile, err
		}
	}

	return GetByUser(db, userID)
}

// AddExperience appends a work history entry.
func AddExperience(db *gorm.DB, profileID uuid.UUID, entry Experience) (Experience, error) {
	if strings.TrimSpace(entry.Title) == "" || strings.TrimSpace(entry.Company) == "" {
		return Experience{}, ErrNameRequired
	}
	entry.ProfileID = profileID
	if err := db.Create(&entry).Error; err != nil {
		return Experience{}, err
	}
	return entry, nil
}

// AddEducation appends an education entry.
func AddEducation(db *gorm.DB, profileID uuid.UUID, entry Education) (Education, error) {
	if strings.TrimSpace(entry.School) == "" {
		return Education{}, ErrNameRequired
	}
	entry.ProfileID = profileID
	if err := db.Create(&entry).Error; err != nil {
		return Education{}, err
	}
	return entry, nil
}

// AddSkill appends a skill entry.
func AddSkill(db *gorm.DB, profileID uuid.UUID, entry Skill) (Skill, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return Skill{}, ErrNameRequired
	}
	entry.ProfileID = profileID
	if err := db.Create(&entry).Error; err != nil {
		return Skill{}, err
	}
	return entry, nil
}

// AddProject appends a project entry.
func AddProject(db *gorm.DB, profileID uuid.UUID, entry Project) (Project, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return Project{}, ErrNameRequired
	}
	entry.ProfileID = profileID
	if err := db.Create(&entry).Error; err != nil {
		return Project{}, err
	}
	return entry, nil
}

// AddLanguage appends a language entry.
func AddLanguage(db *gorm.DB, profileID uuid.UUID, entry Language) (Language, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return Language{}, ErrNameRequired
	}
	entry.ProfileID = profileID
	if err := db.Create(&entry).Error; err != nil {
		return Language{}, err
	}
	return entry, nil
}

// AddCertificate appends a certificate entry.
func AddCertificate(db *gorm.DB, profileID uuid.UUID, entry Certificate) (Certificate, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return Certificate{}, ErrNameRequired
	}
	entry.ProfileID = profileID
	if err := db.Create(&entry).Error; err != nil {
		return Certificate{}, err
	}
	return entry, nil
}

// DeleteSection removes one section entry owned by the profile. The model
// pointer selects which section table to delete from.
func DeleteSection(db *gorm.DB, model interface{}, entryID, profileID uuid.UUID) error {
	result := db.Where("id = ? AND profile_id = ?", entryID, profileID).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSectionNotFound
	}
	return nil
}

func trimToNil(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
