// Package projections derives dashboard and calendar views from a
// snapshot of the task collection. Every function is pure and O(n) over
// the snapshot; results are computed on demand, never stored.
package projections

import (
	"github.com/aduanatrack/core/internal/domain/entities"
)

// Counts holds the per-status task tally.
type Counts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// LocationCount is the number of tasks at one customs location.
type LocationCount struct {
	Location   entities.CustomsLocation `json:"location"`
	Count      int                      `json:"count"`
	Percentage float64                  `json:"percentage"`
}

// CountByStatus tallies tasks per status value.
func CountByStatus(tasks []entities.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case entities.TaskStatusPending:
			c.Pending++
		case entities.TaskStatusInProgress:
			c.InProgress++
		case entities.TaskStatusCompleted:
			c.Completed++
		}
	}
	return c
}

// TotalInvestment sums the cost of all tasks, treating absent cost as 0.
func TotalInvestment(tasks []entities.Task) float64 {
	var total float64
	for _, t := range tasks {
		total += t.CostValue()
	}
	return total
}

// DistributionByLocation counts tasks per known location by exact name
// match, in seed order. A task whose location string matches no seeded
// location name appears in no bucket; percentages are relative to the
// full collection, so buckets need not sum to 100%.
func DistributionByLocation(tasks []entities.Task, locations []entities.CustomsLocation) []LocationCount {
	out := make([]LocationCount, 0, len(locations))
	for _, loc := range locations {
		count := 0
		for _, t := range tasks {
			if t.CustomsLocation == loc.Name {
				count++
			}
		}
		pct := 0.0
		if len(tasks) > 0 {
			pct = float64(count) / float64(len(tasks)) * 100
		}
		out = append(out, LocationCount{Location: loc, Count: count, Percentage: pct})
	}
	return out
}

// CalendarBucket returns the tasks whose start date falls on the exact
// calendar day, in collection order.
func CalendarBucket(tasks []entities.Task, day, month, year int) []entities.Task {
	var out []entities.Task
	for _, t := range tasks {
		if t.StartsOn(day, month, year) {
			out = append(out, t)
		}
	}
	return out
}

// RecentActivity returns the last n tasks in insertion order, most
// recently created first. Creation order is the only ordering signal.
func RecentActivity(tasks []entities.Task, n int) []entities.Task {
	if n > len(tasks) {
		n = len(tasks)
	}
	out := make([]entities.Task, 0, n)
	for i := len(tasks) - 1; i >= len(tasks)-n; i-- {
		out = append(out, tasks[i])
	}
	return out
}
