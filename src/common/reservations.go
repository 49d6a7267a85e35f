package common

import (
	"fmt"
	"log"
	"os"
	"prepdesk/src/db"
	"prepdesk/src/lib"
	"prepdesk/src/models"
	"prepdesk/src/types"
	"prepdesk/src/utils"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

func ReservationsCreatedConsumer() {
	topic := lib.TOPIC_RESERVATIONS_CREATED
	log.Printf("[%s]: Listening for messages...", topic)
	lib.KafkaConsumeTopic("ReservationsCreatedGroup", topic, func(value []byte) {
		body := string(value)
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting", topic)
			return
		}
		id := uint(gjson.Get(body, "id").Int())
		log.Printf("[%s]: %d", topic, id)

		db := db.GetDb()
		var reservation models.Reservation
		err := db.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: id}).
			Preload("User").
			Preload("Course").
			Preload("Slot").
			First(&reservation).
			Error
		if err != nil {
			log.Printf("[%s] Error retrieving reservation: %s\n", topic, err.Error())
			return
		}

		go utils.InvalidateSlotsCache(reservation.CourseID, reservation.Category)
		go sendReservationConfirmation(&reservation)
	})
}

func sendReservationConfirmation(reservation *models.Reservation) {
	if reservation.User.Email == "" {
		return
	}
	when := "to be announced"
	if reservation.Slot != nil {
		when = fmt.Sprintf("%s %s", reservation.Slot.Date.Format("2006-01-02"), reservation.Slot.Time)
	}
	senderFrom := os.Getenv("SMTP_FROM")
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Booking received: %s", reservation.Course.Title),
		From:     senderFrom,
		FromName: "noreply",
		To: []string{
			reservation.User.Email,
		},
		Body: fmt.Sprintf(`
			<p>We received your booking for <b>%s</b>.</p>
			<p>Category: %s</p>
			<p>When: %s</p>
			<p>Your booking stays in processing until payment is confirmed. Upload your proof of payment from your account page.</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			reservation.Course.Title,
			reservation.Category,
			when,
		),
		Html: true,
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[mailer] Error sending message: %s\n", err.Error())
	}
}

func ReservationsActivateConsumer() {
	topic := lib.TOPIC_RESERVATIONS_ACTIVATE
	log.Printf("[%s]: Listening for messages...", topic)
	lib.KafkaConsumeTopic("ReservationsActivateGroup", topic, func(value []byte) {
		body := string(value)
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting", topic)
			return
		}
		id := uint(gjson.Get(body, "id").Int())
		payloadId := gjson.Get(body, "payloadId").String()
		log.Printf("[%s]: %d", topic, id)

		go moveReservationStatus(topic, id, types.RESERVATION_UPCOMING, types.RESERVATION_ACTIVE)
		go markJobTaskDone(payloadId)
	})
}

func ReservationsCompleteConsumer() {
	topic := lib.TOPIC_RESERVATIONS_COMPLETE
	log.Printf("[%s]: Listening for messages...", topic)
	lib.KafkaConsumeTopic("ReservationsCompleteGroup", topic, func(value []byte) {
		body := string(value)
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting", topic)
			return
		}
		id := uint(gjson.Get(body, "id").Int())
		payloadId := gjson.Get(body, "payloadId").String()
		log.Printf("[%s]: %d", topic, id)

		go moveReservationStatus(topic, id, types.RESERVATION_ACTIVE, types.RESERVATION_COMPLETED)
		go markJobTaskDone(payloadId)
	})
}

// moveReservationStatus applies a deferred transition only when the row is
// still in the expected state. A cancelled or manually updated reservation is
// left alone.
func moveReservationStatus(topic string, id uint, from, to types.ReservationStatus) {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		err := tx.
			Where(&models.Reservation{ID: id}).
			First(&reservation).
			Error
		if err != nil {
			return err
		}
		if reservation.Status != from {
			log.Printf("[%s] Reservation %d is %s, not %s. Skipping", topic, id, reservation.Status, from)
			return nil
		}
		err = tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: id}).
			Update("status", to).
			Error
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("[%s] Error updating reservation status: %s\n", topic, err.Error())
	}
}
