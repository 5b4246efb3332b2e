package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
)

func TestJitterStaysWithinBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Jitter(81, 0.08, 20, 150)
		assert.GreaterOrEqual(t, v, 20.0)
		assert.LessOrEqual(t, v, 150.0)
	}
}

func TestJitterClampsAtEdges(t *testing.T) {
	// a value already at the ceiling can only move down or stay
	for i := 0; i < 100; i++ {
		assert.LessOrEqual(t, Jitter(150, 0.08, 20, 150), 150.0)
		assert.GreaterOrEqual(t, Jitter(20, 0.08, 20, 150), 20.0)
	}
}

func TestNextReadingBounds(t *testing.T) {
	reading := baselineReading
	for i := 0; i < 50; i++ {
		reading = NextReading(reading)
		assert.GreaterOrEqual(t, reading.C1, 100.0)
		assert.LessOrEqual(t, reading.C1, 200.0)
		assert.GreaterOrEqual(t, reading.T1, 10.0)
		assert.LessOrEqual(t, reading.T1, 45.0)
		assert.GreaterOrEqual(t, reading.N1, 5.0)
		assert.LessOrEqual(t, reading.N1, 100.0)
	}
}

type fakeUsers struct {
	ids []string
}

func (f *fakeUsers) ListIDs(context.Context) ([]string, error) {
	return f.ids, nil
}

type fakeReadings struct {
	mu       sync.Mutex
	readings map[string][]models.NpkReading
}

func newFakeReadings() *fakeReadings {
	return &fakeReadings{readings: make(map[string][]models.NpkReading)}
}

func (f *fakeReadings) CreateReading(_ context.Context, reading models.NpkReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings[reading.UserID] = append(f.readings[reading.UserID], reading)
	return nil
}

func (f *fakeReadings) LatestByUser(_ context.Context, userID string) (models.NpkReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.readings[userID]
	if len(list) == 0 {
		return models.NpkReading{}, repository.ErrNoReadings
	}
	return list[len(list)-1], nil
}

func TestSimulatorTick(t *testing.T) {
	users := &fakeUsers{ids: []string{"user-1", "user-2"}}
	readings := newFakeReadings()
	sim := NewSimulator("0 */2 * * * *", users, readings, zerolog.Nop())

	t.Run("seeds baseline for fresh users", func(t *testing.T) {
		sim.tick()

		for _, userID := range users.ids {
			latest, err := readings.LatestByUser(context.Background(), userID)
			require.NoError(t, err)
			assert.Equal(t, baselineReading.C1, latest.C1)
			assert.Equal(t, models.ReadingSourceIngestion, latest.Source)
			assert.NotEmpty(t, latest.ID)
		}
	})

	t.Run("walks from the previous reading", func(t *testing.T) {
		sim.tick()

		latest, err := readings.LatestByUser(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, models.ReadingSourceIngestion, latest.Source)
		// each step moves at most 8% on the widest field
		assert.InDelta(t, baselineReading.N1, latest.N1, baselineReading.N1*0.08+0.01)
		assert.Len(t, readings.readings["user-1"], 2)
	})
}
