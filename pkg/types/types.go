package types

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserType represents user role levels
type UserType string

const (
	UserTypeUser     UserType = "user"
	UserTypeEmployee UserType = "employee"
	UserTypeAdmin    UserType = "admin"
	UserTypeAll      UserType = "all"
)

// Difficulty represents course and quiz difficulty levels
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether the difficulty is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// JobType represents employment arrangements for a job posting
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

// ExperienceLevel represents the seniority a job posting targets
type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceTop    ExperienceLevel = "top"
)

// WorkMode represents where the work happens
type WorkMode string

const (
	WorkModeRemote WorkMode = "remote"
	WorkModeOffice WorkMode = "office"
	WorkModeHybrid WorkMode = "hybrid"
)

// QuestionType represents quiz question kinds
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// Valid reports whether the question type is supported.
func (q QuestionType) Valid() bool {
	switch q {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// Proficiency represents profile skill/language levels
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// BeforeCreate assigns the primary key before the insert.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Money wraps decimal.Decimal for money values (course prices, salary ranges)
type Money decimal.Decimal

// NewMoney creates Money from float64
func NewMoney(value float64) Money {
	return Money(decimal.NewFromFloat(value))
}

// NewMoneyFromString creates Money from string
func NewMoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money(d), nil
}

// Float64 returns the float64 representation
func (m Money) Float64() float64 {
	return decimal.Decimal(m).InexactFloat64()
}

// String returns string representation
func (m Money) String() string {
	return decimal.Decimal(m).String()
}

// GreaterThan returns true if m > other
func (m Money) GreaterThan(other Money) bool {
	return decimal.Decimal(m).GreaterThan(decimal.Decimal(other))
}

// LessThan returns true if m < other
func (m Money) LessThan(other Money) bool {
	return decimal.Decimal(m).LessThan(decimal.Decimal(other))
}

// IsZero returns true if value is zero
func (m Money) IsZero() bool {
	return decimal.Decimal(m).IsZero()
}

// Value implements driver.Valuer for database serialization
func (m Money) Value() (driver.Value, error) {
	return decimal.Decimal(m).Value()
}

// Scan implements sql.Scanner for database deserialization
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return decimal.Decimal(m).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}
