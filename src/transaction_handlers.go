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

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func transactionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/transactions", func(ctx *gin.Context) {
			var body types.CreateTransactionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			tenantId, _ := uuid.Parse(ctx.GetString("tenant_id"))
			var txn models.Transaction
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var reservation models.Reservation
				if err := tx.
					Where(&models.Reservation{ID: body.ReservationID}).
					First(&reservation).
					Error; err != nil {
					return err
				}
				// Proof must come from the reservation's owner.
				if reservation.UserID != userId {
					return errors.New("reservation does not belong to this account")
				}
				txn = models.Transaction{
					ReservationID: body.ReservationID,
					Amount:        body.Amount,
					PaymentMethod: body.PaymentMethod,
					ImageURL:      body.ImageURL,
					Status:        types.TRANSACTION_PENDING,
					TenantID:      &tenantId,
				}
				if err := tx.Create(&txn).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
					return
				}
				log.Printf("Could not record transaction: %s\n", err.Error())
				ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": txn})
		}).
		GET("/transactions/:id", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			id, err := uuid.Parse(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			db := db.GetDb()
			var txn models.Transaction
			if err = db.
				Model(&models.Transaction{}).
				Preload("Reservation").
				Where("id = ?", id).
				First(&txn).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if txn.Reservation.UserID != userId && role != types.ROLE_ADMIN {
				ctx.Status(http.StatusForbidden)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txn})
		}).
		GET("/reservations/:id/transactions", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			db := db.GetDb()
			var reservation models.Reservation
			if err := db.
				Where(&models.Reservation{ID: params.ID}).
				First(&reservation).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			if reservation.UserID != userId && role != types.ROLE_ADMIN {
				ctx.Status(http.StatusForbidden)
				return
			}
			var txns []models.Transaction
			if err := db.
				Model(&models.Transaction{}).
				Where(&models.Transaction{ReservationID: params.ID}).
				Order("created_at DESC").
				Find(&txns).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txns, "count": len(txns)})
		}).
		POST("/uploads/proof", func(ctx *gin.Context) {
			var body types.ProofUploadRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			key := fmt.Sprintf("proofs/%d/%s-%s", userId, uuid.NewString(), body.Filename)
			uploadURL, publicURL, err := lib.S3PresignProofUpload(key, body.ContentType)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not prepare upload"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"upload_url": uploadURL, "image_url": publicURL})
		})
	return g
}

func transactionAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/transactions", func(ctx *gin.Context) {
			db := db.GetDb()
			var txns []models.Transaction
			err := db.
				Model(&models.Transaction{}).
				Preload("Reservation").
				Order("created_at DESC").
				Limit(200).
				Find(&txns).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txns, "count": len(txns)})
		}).
		PUT("/transactions/:id/status", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			id, err := uuid.Parse(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateTransactionStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				var txn models.Transaction
				if err := tx.Where("id = ?", id).First(&txn).Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Transaction{}).
					Where("id = ?", id).
					Update("status", types.TransactionStatus(body.Status)).
					Error; err != nil {
					return err
				}
				// Marking a payment as settled verifies the booking and moves
				// it out of processing.
				if types.TransactionStatus(body.Status) == types.TRANSACTION_PAID {
					if err := tx.
						Model(&models.Reservation{}).
						Where(&models.Reservation{ID: txn.ReservationID}).
						Update("verified", true).
						Error; err != nil {
						return err
					}
					if err := tx.
						Model(&models.Reservation{}).
						Where(&models.Reservation{ID: txn.ReservationID, Status: types.RESERVATION_PROCESSING}).
						Update("status", types.RESERVATION_UPCOMING).
						Error; err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
