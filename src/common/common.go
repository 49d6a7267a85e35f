package common

import (
	"log"
	"prepdesk/src/db"
	"prepdesk/src/models"

	"gorm.io/gorm"
)

func markJobTaskDone(payloadId string) {
	if payloadId == "" {
		return
	}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where(&models.JobTask{PayloadID: payloadId}).
			Updates(&models.JobTask{Status: "done"}).
			Error
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating job status: %s\n", err.Error())
	}
}
