package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"prepdesk/src/config"
	"prepdesk/src/db"
	"prepdesk/src/lib"
	"prepdesk/src/models"
	"prepdesk/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSlotNotFound         = errors.New("slot not found")
	ErrNoSeatsAvailable     = errors.New("no seats available for this slot")
	ErrDuplicateReservation = errors.New("already booked this slot for the same course and test type")
)

func IsProd() bool {
	return config.GetEnv() == string(types.Production)
}

func CreateNewCourse(ctx *gin.Context, params *types.CreateCourseRequestBody, creatorId uint) (uint, error) {
	tenantId, _ := uuid.Parse(ctx.GetString("tenant_id"))
	course := models.Course{
		Title:       params.Title,
		Slug:        slug.Make(params.Title),
		Description: &params.Description,
		Status:      types.COURSE_DRAFT,
		CreatedBy:   creatorId,
		TenantID:    &tenantId,
	}
	if params.Publish {
		course.Status = types.COURSE_PUBLISHED
	}

	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return course.ID, nil
}

func PublishCourse(id uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(&models.Course{}).
			Where("id = ? AND status = ?", id, types.COURSE_DRAFT).
			Update("status", types.COURSE_PUBLISHED).Error
		if err != nil {
			return err
		}
		return nil
	})
	return err
}

// GetSlotsWithAvailability annotates each slot of a (course, category) pair
// with booked and available seat counts. Unless includeFull is set, slots
// with no remaining seats are dropped from the result.
func GetSlotsWithAvailability(courseId uint, category types.Category, includeFull bool) ([]*models.ReservationSlot, error) {
	var slots []*models.ReservationSlot
	db := db.GetDb()
	tx := db.Session(&gorm.Session{PrepareStmt: true})
	err := tx.
		Where(&models.ReservationSlot{CourseID: courseId, Category: category}).
		Order("date asc, time asc").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}

	open := make([]*models.ReservationSlot, 0, len(slots))
	if err := db.Transaction(func(tx *gorm.DB) error {
		for _, v := range slots {
			var count int64
			if err := tx.
				Model(&models.Reservation{}).
				Where(&models.Reservation{SlotID: &v.ID}).
				Count(&count).
				Error; err != nil {
				return err
			}
			v.Stats = &models.SlotStats{
				SlotID:    v.ID,
				Booked:    uint(count),
				Available: int(v.TotalSeats) - int(count),
			}
			if includeFull || v.Stats.Available > 0 {
				open = append(open, v)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return open, nil
}

func GetSlotSeats(id uint) (booked uint, available int, err error) {
	db := db.GetDb()
	var slot models.ReservationSlot
	tx := db.Session(&gorm.Session{PrepareStmt: true})
	if err := tx.Where(&models.ReservationSlot{ID: id}).First(&slot).Error; err != nil {
		return 0, 0, ErrSlotNotFound
	}
	var count int64
	if err := tx.
		Model(&models.Reservation{}).
		Where(&models.Reservation{SlotID: &slot.ID}).
		Count(&count).
		Error; err != nil {
		return 0, 0, err
	}
	return uint(count), int(slot.TotalSeats) - int(count), nil
}

// CreateReservation is the booking admission check. The slot row is locked
// for the span of the transaction so the seat count cannot move between the
// capacity check and the insert, and the unique index over
// (user, slot, course, category) turns a concurrent duplicate into
// ErrDuplicateReservation instead of a second row.
func CreateReservation(ctx *gin.Context, params *types.CreateReservationRequestBody, userId uint) (*models.Reservation, error) {
	tenantId, _ := uuid.Parse(ctx.GetString("tenant_id"))
	now := time.Now()

	var reservation models.Reservation
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var slot models.ReservationSlot
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.ReservationSlot{ID: params.SlotID}).
			First(&slot).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}

		var count int64
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{SlotID: &slot.ID}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if uint(count) >= slot.TotalSeats {
			return ErrNoSeatsAvailable
		}

		validFrom := now
		if params.ValidFrom != nil {
			parsed, err := time.Parse(config.TIME_PARSE_FORMAT, *params.ValidFrom)
			if err != nil {
				return err
			}
			validFrom = parsed
		}
		validTill := now
		if params.ValidTill != nil {
			parsed, err := time.Parse(config.TIME_PARSE_FORMAT, *params.ValidTill)
			if err != nil {
				return err
			}
			validTill = parsed
		}

		if params.PlanID != nil {
			var plan models.Plan
			if err := tx.Where(&models.Plan{ID: *params.PlanID}).First(&plan).Error; err != nil {
				return fmt.Errorf("plan %d does not exist", *params.PlanID)
			}
			if params.ValidTill == nil {
				validTill = validFrom.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
			}
		}

		reservation = models.Reservation{
			UserID:    userId,
			SlotID:    &slot.ID,
			CourseID:  slot.CourseID,
			Category:  slot.Category,
			Status:    types.RESERVATION_PROCESSING,
			ValidFrom: &validFrom,
			ValidTill: &validTill,
			PlanID:    params.PlanID,
			TenantID:  &tenantId,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReservation
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("CreateReservation failed: %s\n", err.Error())
		return nil, err
	}

	go InvalidateSlotsCache(reservation.CourseID, reservation.Category)
	go NotifyReservationCreated(&reservation)
	if reservation.PlanID != nil {
		go ScheduleReservationWindow(&reservation)
	}
	return &reservation, nil
}

// ScheduleReservationWindow enqueues the two deferred status moves for a
// plan-backed reservation: upcoming -> active at valid_from and
// active -> completed at valid_till.
func ScheduleReservationWindow(res *models.Reservation) {
	windows := []struct {
		runsAt *time.Time
		topic  string
		client string
	}{
		{res.ValidFrom, lib.TOPIC_RESERVATIONS_ACTIVATE, "ReservationsActivateProducer"},
		{res.ValidTill, lib.TOPIC_RESERVATIONS_COMPLETE, "ReservationsCompleteProducer"},
	}
	for _, w := range windows {
		if w.runsAt == nil || !w.runsAt.After(time.Now()) {
			continue
		}
		jobTaskID := uuid.New()
		payloadId := jobTaskID.String()
		jobTask := models.JobTask{
			Name:    fmt.Sprintf("Reservation_%d_%s", res.ID, w.topic),
			JobType: "OneTimeJobStartDateTime",
			RunsAt:  *w.runsAt,
			HandlerParams: []any{
				res.ID,
			},
			PayloadID: payloadId,
			Payload: types.JSONB{
				"payloadId":        payloadId,
				"id":               int64(res.ID),
				"producerClientId": w.client,
				"topic":            w.topic,
				"table":            "reservations",
			},
			Source:     "Reservations",
			SourceType: "table",
			Topic:      w.topic,
		}
		id, err := jobTask.CreateAndEnqueueJobTask(jobTask)
		if err != nil {
			log.Printf("Error creating job for Reservation: id=%d error=%s\n", res.ID, err.Error())
			continue
		}
		log.Printf("Created job for Reservation[%d] with ID %s\n", res.ID, id)
	}
}

func NotifyReservationCreated(res *models.Reservation) {
	err := lib.KafkaProduceMessage("ReservationsCreatedProducer", lib.TOPIC_RESERVATIONS_CREATED, types.JSONB{
		"id":       int64(res.ID),
		"user_id":  int64(res.UserID),
		"category": string(res.Category),
	})
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
	}
}

func SlotsCacheKey(courseId uint, category types.Category) string {
	return fmt.Sprintf("slots:%d:%s", courseId, category)
}

func InvalidateSlotsCache(courseId uint, category types.Category) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), SlotsCacheKey(courseId, category)).Err(); err != nil {
		log.Printf("[redis] Error invalidating slots cache: %s\n", err.Error())
	}
}

// CreateNewPlan creates a plan row and mirrors it as a Stripe product so the
// optional online checkout can reference a price id.
func CreateNewPlan(ctx *gin.Context, params *types.CreatePlanRequestBody) (uint, error) {
	tenantId, _ := uuid.Parse(ctx.GetString("tenant_id"))
	plan := models.Plan{
		Name:         params.Name,
		Price:        params.Price,
		Currency:     params.Currency,
		DurationDays: params.DurationDays,
		Description:  &params.Description,
		Attachment: types.Attachment{
			Category: types.Category(params.Category),
			ParentID: params.ParentID,
		},
		TenantID: &tenantId,
	}

	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.
			Model(&models.Course{}).
			Where(&models.Course{ID: params.ParentID}).
			First(&course).
			Error; err != nil {
			return fmt.Errorf("course %d does not exist", params.ParentID)
		}
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		if os.Getenv("STRIPE_SECRET_KEY") == "" {
			return nil
		}
		const MINIMUM_UNITS float64 = 100
		unitAmount := plan.Price * MINIMUM_UNITS
		createParams := &stripe.ProductCreateParams{
			Name: stripe.String(plan.Name),
			DefaultPriceData: &stripe.ProductCreateDefaultPriceDataParams{
				Currency:          stripe.String(plan.Currency),
				UnitAmountDecimal: stripe.Float64(unitAmount),
			},
			Metadata: map[string]string{
				"plan_id":   fmt.Sprint(plan.ID),
				"course_id": fmt.Sprint(course.ID),
				"category":  params.Category,
			},
		}
		sc := lib.GetStripeClient()
		product, err := sc.V1Products.Create(context.Background(), createParams)
		if err != nil {
			return err
		}
		if err := tx.
			Model(&models.Plan{}).
			Where(&models.Plan{ID: plan.ID}).
			Update("stripe_price_id", product.DefaultPrice.ID).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Println("Error: ", err.Error())
		return 0, err
	}
	return plan.ID, nil
}

func GetOwnReservations(id uint) ([]models.Reservation, error) {
	db := db.GetDb()
	var reservations []models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{UserID: id}).
		Preload("Slot").
		Preload("Course").
		Preload("Plan").
		Order("created_at DESC").
		Find(&reservations).
		Error
	return reservations, err
}
