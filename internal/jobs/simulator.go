package jobs

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"agrisense/api/internal/ids"
	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
)

// baseline seeded for users without any prior reading.
var baselineReading = models.NpkReading{
	C1: 154, HP1: 12, K1: 81, M1: 18, N1: 29, P1: 40, T1: 30,
}

type UserLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type ReadingWriter interface {
	CreateReading(ctx context.Context, reading models.NpkReading) error
	LatestByUser(ctx context.Context, userID string) (models.NpkReading, error)
}

// Simulator stands in for real field sensors: on each tick it advances every
// user's latest reading by a bounded random walk.
type Simulator struct {
	cron     *cron.Cron
	schedule string
	users    UserLister
	readings ReadingWriter
	log      zerolog.Logger
}

func NewSimulator(schedule string, users UserLister, readings ReadingWriter, log zerolog.Logger) *Simulator {
	return &Simulator{
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
		users:    users,
		readings: readings,
		log:      log,
	}
}

func (s *Simulator) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("npk simulator started")
	return nil
}

func (s *Simulator) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("simulator stop timed out")
	}
}

func (s *Simulator) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	userIDs, err := s.users.ListIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("simulator: list users failed")
		return
	}

	for _, userID := range userIDs {
		if err := s.ingestFor(ctx, userID); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("simulator: ingest failed")
		}
	}
}

func (s *Simulator) ingestFor(ctx context.Context, userID string) error {
	last, err := s.readings.LatestByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNoReadings) {
			return err
		}
		last = baselineReading
	} else {
		last = NextReading(last)
	}

	last.ID = ids.New()
	last.UserID = userID
	last.Source = models.ReadingSourceIngestion
	return s.readings.CreateReading(ctx, last)
}

// NextReading advances each field by a small random step, clamped to its
// physical range.
func NextReading(last models.NpkReading) models.NpkReading {
	return models.NpkReading{
		C1:  Jitter(last.C1, 0.02, 100, 200),
		HP1: Jitter(last.HP1, 0.05, 5, 30),
		K1:  Jitter(last.K1, 0.08, 20, 150),
		M1:  Jitter(last.M1, 0.05, 5, 40),
		N1:  Jitter(last.N1, 0.08, 5, 100),
		P1:  Jitter(last.P1, 0.08, 5, 100),
		T1:  Jitter(last.T1, 0.02, 10, 45),
	}
}

// Jitter moves v by at most pct of itself in either direction, clamped to
// [min, max] and rounded to two decimals.
func Jitter(v float64, pct float64, min float64, max float64) float64 {
	delta := v * pct * (rand.Float64()*2 - 1)
	x := math.Min(max, math.Max(min, v+delta))
	return math.Round(x*100) / 100
}
