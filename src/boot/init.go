package boot

import (
	"log"
	"prepdesk/src/common"
	"prepdesk/src/db"
	"prepdesk/src/lib"
	"prepdesk/src/models"
	"prepdesk/src/models/scopes"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.ReservationSlot{},
		&models.Reservation{},
		&models.Transaction{},
		&models.Plan{},
		&models.FAQ{},
		&models.CarouselItem{},
		&models.JobTask{},
		&models.Setting{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err = sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping the Scheduler. Check logs for info")
		return
	}
}

func InitBroker() {
	go UpdateExpiredJobs()
	go RecoverQueuedJobs()
	go lib.KafkaCreateTopics(
		lib.TOPIC_RESERVATIONS_CREATED,
		lib.TOPIC_RESERVATIONS_ACTIVATE,
		lib.TOPIC_RESERVATIONS_COMPLETE,
	)
	go common.ReservationsCreatedConsumer()
	go common.ReservationsActivateConsumer()
	go common.ReservationsCompleteConsumer()
}

// RecoverQueuedJobs re-enqueues pending job rows after a restart. In-memory
// schedules die with the process; the JobTask rows are the source of truth.
func RecoverQueuedJobs() error {
	sched, err := lib.GetScheduler()
	if err != nil {
		return err
	}
	db := db.GetDb()
	ss := db.Session(&gorm.Session{PrepareStmt: true})
	var jobTasks []models.JobTask
	today := time.Now()
	in1m := today.Add(1 * time.Minute)
	in3months := today.Add((24 * 30 * 3) * time.Hour)
	err = ss.
		Model(&models.JobTask{}).Select("id", "name", "payload", "topic", "runs_at").
		Scopes(scopes.WithPendingStatus).
		Where(&models.JobTask{JobType: "OneTimeJobStartDateTime"}).
		Where("runs_at BETWEEN ? AND ?", in1m, in3months).
		Order("runs_at asc").
		Limit(100).
		Find(&jobTasks).
		Error
	if err != nil {
		log.Printf("Error retrieving jobs: %s\n", err.Error())
		return err
	}
	log.Printf("Found %d pending jobs", len(jobTasks))
	for _, jobTask := range jobTasks {
		log.Printf("Queueing: %s\n", jobTask.ID.String())
		jobDef := gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(jobTask.RunsAt))
		jt := gocron.NewTask(func() {
			log.Println("Running scheduled task")
			clientId, _ := jobTask.Payload["producerClientId"].(string)
			err := lib.KafkaProduceMessage(clientId, jobTask.Topic, jobTask.Payload)
			if err != nil {
				log.Printf("Error on producing message: %s\n", err.Error())
				return
			}
		})
		job, err := sched.NewJob(
			jobDef,
			jt,
		)
		if err != nil {
			log.Printf("Failed to schedule job [%s]. Skipping: %s\n", jobTask.ID.String(), err.Error())
			continue
		}
		log.Printf("Added job to scheduler: name=%s id=%s job=%s\n", jobTask.Name, jobTask.ID.String(), job.ID().String())
	}

	return nil
}

func UpdateExpiredJobs() {
	db := db.GetDb()
	err := db.
		Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&models.JobTask{}).
				Scopes(scopes.WithPendingStatus).
				Where("runs_at < ?", time.Now()).
				Update("status", "expired").Error
			if err != nil {
				return err
			}
			return nil
		})
	if err != nil {
		log.Printf("Error while processing expired jobs: %s\n", err.Error())
	}
}
