package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"prepdesk/src/db"
	"prepdesk/src/lib"
	"prepdesk/src/models"
	"prepdesk/src/types"
	"prepdesk/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func planHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/plans/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var plan models.Plan
			if err := db.
				Where(&models.Plan{ID: params.ID}).
				First(&plan).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
				return
			}
			if plan.StripePriceId == nil {
				err := errors.New("plan is not enabled for online payment")
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var reservation models.Reservation
			if err := db.
				Where(&models.Reservation{ID: body.ReservationID}).
				First(&reservation).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			if reservation.UserID != userId {
				ctx.Status(http.StatusForbidden)
				return
			}
			url, err := lib.CreatePaymentLink(*plan.StripePriceId)
			if err != nil {
				log.Printf("error on checkout: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// The webhook joins the completed session back to the booking
			// through this reference.
			url = fmt.Sprintf("%s?client_reference_id=%d", url, reservation.ID)
			ctx.JSON(http.StatusOK, gin.H{"url": url})
		})
	return g
}

func planAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/plans", func(ctx *gin.Context) {
			var body types.CreatePlanRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.CreateNewPlan(ctx, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		PUT("/plans/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdatePlanRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var plan models.Plan
				if err := tx.Where(&models.Plan{ID: params.ID}).First(&plan).Error; err != nil {
					return err
				}
				updates := models.Plan{}
				if body.Name != nil {
					updates.Name = *body.Name
				}
				if body.Price != nil {
					updates.Price = *body.Price
				}
				if body.DurationDays != nil {
					updates.DurationDays = *body.DurationDays
				}
				if body.Description != nil {
					updates.Description = body.Description
				}
				if err := tx.
					Model(&models.Plan{}).
					Where(&models.Plan{ID: params.ID}).
					Updates(&updates).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/plans/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var plan models.Plan
				if err := tx.Where(&models.Plan{ID: params.ID}).First(&plan).Error; err != nil {
					return err
				}
				var count int64
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{PlanID: &params.ID}).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return errors.New("deleting a plan with reservations is not allowed")
				}
				if err := tx.Delete(&plan).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
