package models

import (
	"log"
	"prepdesk/src/db"
	"prepdesk/src/lib"
	"prepdesk/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobTask is a persisted one-shot schedule. The row survives restarts so boot
// can re-enqueue anything still pending.
type JobTask struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	Name          string      `json:"-"`
	JobType       string      `json:"-"`
	RunsAt        time.Time   `json:"-"`
	HandlerParams []any       `gorm:"type:jsonb" json:"-"`
	PayloadID     string      `json:"-"`
	Payload       types.JSONB `gorm:"type:jsonb" json:"-"`
	Source        string      `json:"-"`
	SourceType    string      `json:"-"`
	Status        string      `gorm:"default:'pending'" json:"-"`
	Topic         string      `json:"-"`
}

func (self *JobTask) CreateAndEnqueueJobTask(jobTask JobTask) (string, error) {
	var jobID string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		sid, err := lib.NewScheduledJob(jobTask.RunsAt, map[string]string{
			"name":     jobTask.Name,
			"clientId": jobTask.Payload["producerClientId"].(string),
			"topic":    jobTask.Topic,
		}, jobTask.Payload)
		if err != nil {
			log.Printf("Error scheduling job [%s]: %s\n", jobTask.Name, err.Error())
			return err
		}
		jobID = sid.String()
		jobTask.attachSchedule(*sid)
		if err := tx.Create(&jobTask).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return jobID, nil
}

// attachSchedule records the scheduler's job id on the row. PayloadID stays
// the consumer-facing correlation id carried inside Payload, so the done
// update after the job fires can find this row.
func (self *JobTask) attachSchedule(sid uuid.UUID) {
	self.ID = sid
	self.Payload["JobID"] = sid.String()
}
