package housekeeping

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/identity"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/rs/zerolog/log"
)

const (
	jobTimeout = 5 * time.Minute

	// pendingRegistrationGrace keeps an expired registration around so the user can still ask for a new code.
	pendingRegistrationGrace = 24 * time.Hour
)

// Housekeeper runs the periodic maintenance jobs of the marketplace.
type Housekeeper struct {
	store           db.Store
	identity        identity.Provider
	taskDistributor worker.TaskDistributor
	scheduler       gocron.Scheduler
	now             func() time.Time
}

func NewHousekeeper(store db.Store, identityProvider identity.Provider, taskDistributor worker.TaskDistributor) (*Housekeeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Housekeeper{
		store:           store,
		identity:        identityProvider,
		taskDistributor: taskDistributor,
		scheduler:       scheduler,
		now:             time.Now,
	}, nil
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) (int, error)
}

// Start schedules every job and starts the scheduler.
func (h *Housekeeper) Start() error {
	jobs := []job{
		{name: "expire_vip_memberships", interval: time.Hour, run: h.expireVIPMemberships},
		{name: "deactivate_expired_ads", interval: time.Hour, run: h.deactivateExpiredAds},
		{name: "purge_expired_challenges", interval: 30 * time.Minute, run: h.purgeExpiredChallenges},
		{name: "mark_overdue_installments", interval: 6 * time.Hour, run: h.markOverdueInstallments},
	}

	for _, j := range jobs {
		_, err := h.scheduler.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(h.runJob, j),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	h.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down.
func (h *Housekeeper) Stop() error {
	return h.scheduler.Shutdown()
}

func (h *Housekeeper) runJob(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := h.now()
	affected, err := j.run(ctx)
	if err != nil {
		log.Err(err).Str("job", j.name).Int("affected", affected).Msg("housekeeping job failed")
		return
	}

	log.Info().Str("job", j.name).Int("affected", affected).
		Dur("duration", time.Since(start)).Msg("housekeeping job finished")
}
