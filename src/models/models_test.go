package models

import (
	"prepdesk/src/types"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAttachScheduleKeepsPayloadID(t *testing.T) {
	payloadId := uuid.NewString()
	jobTask := JobTask{
		Name:      "Reservation_1_reservations-activate",
		JobType:   "OneTimeJobStartDateTime",
		RunsAt:    time.Now().Add(time.Hour),
		PayloadID: payloadId,
		Payload: types.JSONB{
			"payloadId":        payloadId,
			"id":               int64(1),
			"producerClientId": "ReservationsActivateProducer",
			"topic":            "reservations-activate",
		},
		Topic: "reservations-activate",
	}

	sid := uuid.New()
	jobTask.attachSchedule(sid)

	assert.Equal(t, sid, jobTask.ID)
	assert.Equal(t, sid.String(), jobTask.Payload["JobID"])
	assert.Equal(t, payloadId, jobTask.PayloadID, "the correlation id the consumer matches on must survive scheduling")
	assert.Equal(t, jobTask.Payload["payloadId"], jobTask.PayloadID)
}

func TestDeleteCascadeConstraints(t *testing.T) {
	slot, ok := reflect.TypeOf(Reservation{}).FieldByName("Slot")
	assert.True(t, ok)
	assert.Contains(t, slot.Tag.Get("gorm"), "OnDelete:CASCADE")

	res, ok := reflect.TypeOf(Transaction{}).FieldByName("Reservation")
	assert.True(t, ok)
	assert.Contains(t, res.Tag.Get("gorm"), "OnDelete:CASCADE")
}

func TestReservationUniqueIndexCoversIdentity(t *testing.T) {
	rt := reflect.TypeOf(Reservation{})
	for _, name := range []string{"UserID", "SlotID", "CourseID", "Category"} {
		f, ok := rt.FieldByName(name)
		assert.True(t, ok)
		assert.Containsf(t, f.Tag.Get("gorm"), "uniqueIndex:idx_user_slot_course_category",
			"%s must be part of the duplicate-booking guard", name)
	}
}
