package main

import (
	"errors"
	"log"
	"net/http"
	"prepdesk/src/db"
	"prepdesk/src/models"
	"prepdesk/src/types"
	"prepdesk/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reservations", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			data, err := utils.GetOwnReservations(userId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			var reservation models.Reservation
			db := db.GetDb()
			err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{ID: params.ID}).
				Preload("Slot").
				Preload("Course").
				Preload("Plan").
				Preload("Transactions").
				First(&reservation).Error
			if err != nil {
				err := errors.New("reservation not found")
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if reservation.UserID != userId && role != types.ROLE_ADMIN {
				ctx.Status(http.StatusForbidden)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/reservations", func(ctx *gin.Context) {
			var body types.CreateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			reservation, err := utils.CreateReservation(ctx, &body, userId)
			if err != nil {
				switch {
				case errors.Is(err, utils.ErrSlotNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, utils.ErrNoSeatsAvailable),
					errors.Is(err, utils.ErrDuplicateReservation):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": reservation})
		}).
		PUT("/reservations/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateReservationStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			status := types.ReservationStatus(body.Status)
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var reservation models.Reservation
				if err := tx.
					Where(&models.Reservation{ID: params.ID}).
					First(&reservation).
					Error; err != nil {
					return err
				}
				if reservation.UserID != userId && role != types.ROLE_ADMIN {
					return errors.New("not enough permissions to perform this action")
				}
				// Owners may only cancel; any-to-any moves are an admin surface.
				if role != types.ROLE_ADMIN && status != types.RESERVATION_CANCELLED {
					return errors.New("not enough permissions to perform this action")
				}
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{ID: params.ID}).
					Update("status", status).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
				return
			}
			var updated models.Reservation
			db.Where(&models.Reservation{ID: params.ID}).First(&updated)
			ctx.JSON(http.StatusOK, gin.H{"data": updated})
		}).
		DELETE("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var reservation models.Reservation
				if err := tx.
					Where(&models.Reservation{ID: params.ID}).
					First(&reservation).
					Error; err != nil {
					return err
				}
				if reservation.UserID != userId && role != types.ROLE_ADMIN {
					return errors.New("not enough permissions to perform this action")
				}
				// Removal is a hard delete on explicit request.
				if err := tx.Unscoped().Delete(&reservation).Error; err != nil {
					return err
				}
				go func() {
					if reservation.SlotID != nil {
						utils.InvalidateSlotsCache(reservation.CourseID, reservation.Category)
					}
				}()
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
					return
				}
				ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func reservationAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reservations", func(ctx *gin.Context) {
			db := db.GetDb()
			var reservations []models.Reservation
			err := db.
				Model(&models.Reservation{}).
				Preload("User").
				Preload("Slot").
				Preload("Course").
				Order("created_at DESC").
				Limit(200).
				Find(&reservations).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservations, "count": len(reservations)})
		}).
		PUT("/reservations/:id/verify", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var reservation models.Reservation
				if err := tx.
					Where(&models.Reservation{ID: params.ID}).
					First(&reservation).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{ID: params.ID}).
					Update("verified", true).
					Error; err != nil {
					return err
				}
				// A verified booking leaves processing.
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{ID: params.ID, Status: types.RESERVATION_PROCESSING}).
					Update("status", types.RESERVATION_UPCOMING).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
