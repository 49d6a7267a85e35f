package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBAny struct {
	Inner any
}

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBAny) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a.Inner)
	return string(valueString), err
}
func (a *JSONBAny) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	var inner any
	if err := json.Unmarshal(b, &inner); err != nil {
		return err
	}
	a.Inner = inner
	return nil
}

type Metadata map[string]any

type Env string

const (
	Production  Env = "production"
	Test        Env = "test"
	Development Env = "development"
)

// Category is the booking product type offered per course.
type Category string

const (
	CATEGORY_PREPARATION_CLASS Category = "preparation_class"
	CATEGORY_TEST_BOOKING      Category = "test_booking"
	CATEGORY_MOCK_TEST         Category = "mock_test"
)

func (c Category) Valid() bool {
	switch c {
	case CATEGORY_PREPARATION_CLASS, CATEGORY_TEST_BOOKING, CATEGORY_MOCK_TEST:
		return true
	}
	return false
}

func (c Category) Value() (driver.Value, error) {
	return string(c), nil
}
func (c *Category) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		*c = Category(v)
	case string:
		*c = Category(v)
	default:
		return errors.New("unsupported category column type")
	}
	return nil
}

type CourseStatus string

const (
	COURSE_DRAFT     CourseStatus = "draft"
	COURSE_PUBLISHED CourseStatus = "published"
	COURSE_ARCHIVED  CourseStatus = "archived"
)

type ReservationStatus string

const (
	RESERVATION_UPCOMING   ReservationStatus = "upcoming"
	RESERVATION_ACTIVE     ReservationStatus = "active"
	RESERVATION_COMPLETED  ReservationStatus = "completed"
	RESERVATION_PROCESSING ReservationStatus = "processing"
	RESERVATION_CANCELLED  ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case RESERVATION_UPCOMING, RESERVATION_ACTIVE, RESERVATION_COMPLETED,
		RESERVATION_PROCESSING, RESERVATION_CANCELLED:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TRANSACTION_PENDING  TransactionStatus = "pending"
	TRANSACTION_PAID     TransactionStatus = "paid"
	TRANSACTION_FAILED   TransactionStatus = "failed"
	TRANSACTION_REFUNDED TransactionStatus = "refunded"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TRANSACTION_PENDING, TRANSACTION_PAID, TRANSACTION_FAILED, TRANSACTION_REFUNDED:
		return true
	}
	return false
}

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// Attachment binds a row to exactly one parent surface: the course named by
// ParentID, scoped to one of the three booking categories. Replaces the
// one-nullable-FK-per-parent column pattern.
type Attachment struct {
	Category Category `gorm:"index:idx_attachment" json:"category,omitempty"`
	ParentID uint     `gorm:"index:idx_attachment" json:"parent_id,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateCourseRequestBody struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
	Publish     bool   `json:"publish,omitempty"`
}

type UpdateCourseRequestBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=draft published archived"`
}

type CreateSlotRequestBody struct {
	CourseID   uint   `json:"course" binding:"required"`
	Category   string `json:"category" binding:"required,oneof=preparation_class test_booking mock_test"`
	Date       string `json:"date" binding:"required,slotdate"`
	Time       string `json:"time" binding:"required"`
	TotalSeats uint   `json:"total_seats" binding:"required,min=1"`
}

type UpdateSlotRequestBody struct {
	Date       *string `json:"date,omitempty" binding:"omitempty,slotdate"`
	Time       *string `json:"time,omitempty"`
	TotalSeats *uint   `json:"total_seats,omitempty" binding:"omitempty,min=1"`
}

type SlotQueryFilters struct {
	Category string `form:"category" binding:"required,oneof=preparation_class test_booking mock_test"`
}

type CreateReservationRequestBody struct {
	SlotID    uint    `json:"slot" binding:"required"`
	ValidFrom *string `json:"valid_from,omitempty" binding:"omitempty" time_format:"2006-01-02 15:04:05 -07:00"`
	ValidTill *string `json:"valid_till,omitempty" binding:"omitempty,gtdate=ValidFrom" time_format:"2006-01-02 15:04:05 -07:00"`
	PlanID    *uint   `json:"plan,omitempty"`
}

type UpdateReservationStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=upcoming active completed processing cancelled"`
}

type CreateTransactionRequestBody struct {
	ReservationID uint    `json:"reservation" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	ImageURL      string  `json:"image_url" binding:"required,url"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
}

type UpdateTransactionStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=pending paid failed refunded"`
}

type CreatePlanRequestBody struct {
	Name         string  `json:"name" binding:"required"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	Currency     string  `json:"currency" binding:"required"`
	DurationDays uint    `json:"duration_days" binding:"required,min=1"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category" binding:"required,oneof=preparation_class test_booking mock_test"`
	ParentID     uint    `json:"parent" binding:"required"`
}

type UpdatePlanRequestBody struct {
	Name         *string  `json:"name,omitempty"`
	Price        *float64 `json:"price,omitempty" binding:"omitempty,gt=0"`
	DurationDays *uint    `json:"duration_days,omitempty" binding:"omitempty,min=1"`
	Description  *string  `json:"description,omitempty"`
}

type CreateFAQRequestBody struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Category string `json:"category" binding:"required,oneof=preparation_class test_booking mock_test"`
	ParentID uint   `json:"parent" binding:"required"`
}

type CreateCarouselItemRequestBody struct {
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"image_url" binding:"required,url"`
	Rank     uint   `json:"rank,omitempty"`
	Category string `json:"category" binding:"required,oneof=preparation_class test_booking mock_test"`
	ParentID uint   `json:"parent" binding:"required"`
}

type UpdateFAQRequestBody struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
}

type UpdateCarouselItemRequestBody struct {
	Title    *string `json:"title,omitempty"`
	ImageURL *string `json:"image_url,omitempty" binding:"omitempty,url"`
	Rank     *uint   `json:"rank,omitempty"`
}

type AttachmentQueryFilters struct {
	Category string `form:"category" binding:"omitempty,oneof=preparation_class test_booking mock_test"`
	Parent   uint   `form:"parent" binding:"omitempty"`
}

type UpdateProfileRequestBody struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type ProofUploadRequestBody struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

type CheckoutRequestBody struct {
	ReservationID uint `json:"reservation" binding:"required"`
}

type CreateSettingRequestBody struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value" binding:"required"`
	Group string `json:"group" binding:"required"`
}
