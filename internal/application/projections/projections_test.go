package projections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aduanatrack/core/internal/domain/entities"
)

func taskWithCost(id string, status entities.TaskStatus, cost float64) entities.Task {
	return entities.Task{ID: id, Status: status, Cost: &cost}
}

func TestCountByStatusSumsToTotal(t *testing.T) {
	tasks := []entities.Task{
		{ID: "1", Status: entities.TaskStatusPending},
		{ID: "2", Status: entities.TaskStatusPending},
		{ID: "3", Status: entities.TaskStatusInProgress},
		{ID: "4", Status: entities.TaskStatusCompleted},
	}

	c := CountByStatus(tasks)
	assert.Equal(t, 4, c.Total)
	assert.Equal(t, 2, c.Pending)
	assert.Equal(t, 1, c.InProgress)
	assert.Equal(t, 1, c.Completed)
	assert.Equal(t, c.Total, c.Pending+c.InProgress+c.Completed)
}

func TestCountByStatusEmpty(t *testing.T) {
	assert.Equal(t, Counts{}, CountByStatus(nil))
}

func TestTotalInvestment(t *testing.T) {
	assert.Equal(t, 0.0, TotalInvestment(nil))

	tasks := []entities.Task{
		taskWithCost("1", entities.TaskStatusPending, 15000),
		{ID: "2", Status: entities.TaskStatusPending}, // no cost counts as 0
	}
	assert.Equal(t, 15000.0, TotalInvestment(tasks))

	tasks = append(tasks, taskWithCost("3", entities.TaskStatusCompleted, 5000))
	assert.Equal(t, 20000.0, TotalInvestment(tasks))
}

func TestDistributionByLocationMatchesByExactName(t *testing.T) {
	locations := entities.SeedLocations()
	tasks := []entities.Task{
		{ID: "1", CustomsLocation: "Aduana de Tijuana"},
		{ID: "2", CustomsLocation: "Aduana de Tijuana"},
		{ID: "3", CustomsLocation: "Aduana de Veracruz"},
		// Case and whitespace differences match no bucket. The tracker
		// references locations by free-text name, not by id, so a typo
		// silently drops a task from every bucket.
		{ID: "4", CustomsLocation: "aduana de tijuana"},
		{ID: "5", CustomsLocation: "Aduana de Tijuana "},
	}

	dist := DistributionByLocation(tasks, locations)
	require.Len(t, dist, len(locations))

	byName := make(map[string]LocationCount)
	total := 0
	for _, lc := range dist {
		byName[lc.Location.Name] = lc
		total += lc.Count
	}

	assert.Equal(t, 2, byName["Aduana de Tijuana"].Count)
	assert.Equal(t, 1, byName["Aduana de Veracruz"].Count)
	assert.Equal(t, 0, byName["Aduana de Nuevo Laredo"].Count)
	assert.Equal(t, 3, total, "mismatched location strings land in no bucket")
	assert.InDelta(t, 40.0, byName["Aduana de Tijuana"].Percentage, 0.001)
}

func TestDistributionByLocationEmptyCollection(t *testing.T) {
	dist := DistributionByLocation(nil, entities.SeedLocations())
	for _, lc := range dist {
		assert.Equal(t, 0, lc.Count)
		assert.Equal(t, 0.0, lc.Percentage)
	}
}

func TestCalendarBucketMatchesExactDayOnly(t *testing.T) {
	tasks := []entities.Task{
		{ID: "1", StartDate: "2026-03-15"},
		{ID: "2", StartDate: "2026-03-16"},
		{ID: "3", StartDate: "2026-03-15"},
		{ID: "4", StartDate: "2025-03-15"},
		{ID: "5", StartDate: "not-a-date"},
	}

	bucket := CalendarBucket(tasks, 15, 3, 2026)
	require.Len(t, bucket, 2)
	// Collection order, not date-time order.
	assert.Equal(t, "1", bucket[0].ID)
	assert.Equal(t, "3", bucket[1].ID)

	assert.Empty(t, CalendarBucket(tasks, 1, 1, 2030))
}

func TestRecentActivityReversesInsertionOrder(t *testing.T) {
	tasks := []entities.Task{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}

	recent := RecentActivity(tasks, 3)
	require.Len(t, recent, 3)
	assert.Equal(t, "4", recent[0].ID)
	assert.Equal(t, "3", recent[1].ID)
	assert.Equal(t, "2", recent[2].ID)
}

func TestRecentActivityShorterThanN(t *testing.T) {
	tasks := []entities.Task{{ID: "1"}, {ID: "2"}}

	recent := RecentActivity(tasks, 5)
	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].ID)
	assert.Equal(t, "1", recent[1].ID)

	assert.Empty(t, RecentActivity(nil, 5))
}
