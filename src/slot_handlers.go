package main

import (
	"errors"
	"log"
	"net/http"
	"prepdesk/src/config"
	"prepdesk/src/db"
	"prepdesk/src/models"
	"prepdesk/src/types"
	"prepdesk/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func slotHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/slots/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booked, available, err := utils.GetSlotSeats(params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booked": booked, "available": available})
		})
	return g
}

func slotAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/courses/:id/slots", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var query types.SlotQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Admins see fully booked slots too.
			slots, err := utils.GetSlotsWithAvailability(params.ID, types.Category(query.Category), true)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slots, "count": len(slots)})
		}).
		POST("/slots", func(ctx *gin.Context) {
			var body types.CreateSlotRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			date, err := time.Parse(config.DATE_PARSE_FORMAT, body.Date)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tenantId, _ := uuid.Parse(ctx.GetString("tenant_id"))
			slot := models.ReservationSlot{
				CourseID:   body.CourseID,
				Category:   types.Category(body.Category),
				Date:       date,
				Time:       body.Time,
				TotalSeats: body.TotalSeats,
				TenantID:   &tenantId,
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				var course models.Course
				if err := tx.
					Where(&models.Course{ID: body.CourseID}).
					First(&course).
					Error; err != nil {
					return errors.New("course not found")
				}
				if err := tx.Create(&slot).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go utils.InvalidateSlotsCache(slot.CourseID, slot.Category)
			ctx.JSON(http.StatusCreated, gin.H{"data": slot})
		}).
		PUT("/slots/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateSlotRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var slot models.ReservationSlot
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.ReservationSlot{ID: params.ID}).
					First(&slot).
					Error; err != nil {
					return err
				}
				updates := models.ReservationSlot{}
				if body.Date != nil {
					date, err := time.Parse(config.DATE_PARSE_FORMAT, *body.Date)
					if err != nil {
						return err
					}
					updates.Date = date
				}
				if body.Time != nil {
					updates.Time = *body.Time
				}
				if body.TotalSeats != nil {
					updates.TotalSeats = *body.TotalSeats
				}
				if err := tx.
					Model(&models.ReservationSlot{}).
					Where(&models.ReservationSlot{ID: params.ID}).
					Updates(&updates).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go utils.InvalidateSlotsCache(slot.CourseID, slot.Category)
			ctx.Status(http.StatusOK)
		}).
		DELETE("/slots/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var slot models.ReservationSlot
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.ReservationSlot{ID: params.ID}).
					First(&slot).
					Error; err != nil {
					return err
				}
				// Hard delete so the FK cascade takes the slot's reservations
				// and their transactions with it.
				if err := tx.Unscoped().Delete(&slot).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
					return
				}
				log.Printf("Could not delete slot %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go utils.InvalidateSlotsCache(slot.CourseID, slot.Category)
			ctx.Status(http.StatusNoContent)
		})
	return g
}
