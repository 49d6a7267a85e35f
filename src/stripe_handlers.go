package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"prepdesk/src/db"
	"prepdesk/src/models"
	"prepdesk/src/types"
	"strconv"

	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			// Payment links are opened with the reservation id as the
			// client reference, that is the only join key we get back.
			if cs.ClientReferenceID == "" {
				log.Printf("[Stripe] CheckoutSession %s carries no client reference. Skipping\n", cs.ID)
				break
			}
			resId, err := strconv.Atoi(cs.ClientReferenceID)
			if err != nil {
				log.Printf("[Stripe] Invalid client reference %q: %s\n", cs.ClientReferenceID, err.Error())
				break
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				var reservation models.Reservation
				if err := tx.
					Where(&models.Reservation{ID: uint(resId)}).
					First(&reservation).
					Error; err != nil {
					return err
				}
				var tenantId *uuid.UUID
				if reservation.TenantID != nil {
					tid := *reservation.TenantID
					tenantId = &tid
				}
				txn := models.Transaction{
					ReservationID: reservation.ID,
					Amount:        float64(cs.AmountTotal) / 100,
					Currency:      string(cs.Currency),
					PaymentMethod: "stripe",
					Status:        types.TRANSACTION_PAID,
					ReferenceID:   cs.ID,
					Metadata: types.JSONB{
						"checkout_session": cs.ID,
						"payment_status":   string(cs.PaymentStatus),
					},
					TenantID: tenantId,
				}
				if err := tx.Create(&txn).Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{ID: reservation.ID}).
					Update("verified", true).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{ID: reservation.ID, Status: types.RESERVATION_PROCESSING}).
					Update("status", types.RESERVATION_UPCOMING).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				log.Printf("[Stripe] Error recording payment for reservation %d: %s\n", resId, err.Error())
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			log.Printf("[Stripe] CheckoutSession %s expired\n", cs.ID)
		default:
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
