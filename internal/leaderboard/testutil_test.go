package leaderboard

import (
	"fmt"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return testNow }))
}

// scenarioEntries is the five-player snapshot used by the pagination scenarios.
func scenarioEntries() []Entry {
	return []Entry{
		{UserID: "u1", Username: "AliceWonder", Score: 2500, Country: "US", Region: "NA", TotalPuzzlesCompleted: 12, TotalModulesCompleted: 4, CompletionPercentage: 92, LastActiveAt: testNow.Add(-2 * time.Hour)},
		{UserID: "u2", Username: "BobBuilder", Score: 2200, Country: "GB", Region: "EU", TotalPuzzlesCompleted: 8, TotalModulesCompleted: 2, CompletionPercentage: 75, LastActiveAt: testNow.Add(-3 * 24 * time.Hour)},
		{UserID: "u3", Username: "CharlieChamp", Score: 1800, Country: "US", Region: "NA", TotalPuzzlesCompleted: 5, TotalModulesCompleted: 3, CompletionPercentage: 60, LastActiveAt: testNow.Add(-12 * 24 * time.Hour)},
		{UserID: "u4", Username: "DianaQueen", Score: 1500, Country: "DE", Region: "EU", TotalPuzzlesCompleted: 4, TotalModulesCompleted: 1, CompletionPercentage: 81, LastActiveAt: testNow.Add(-40 * 24 * time.Hour)},
		{UserID: "u5", Username: "EveExplorer", Score: 1200, Country: "US", Region: "NA", TotalPuzzlesCompleted: 1, TotalModulesCompleted: 0, CompletionPercentage: 10, LastActiveAt: testNow.Add(-30 * time.Minute)},
	}
}

// generatedEntries builds n entries with repeating scores so ties are common.
func generatedEntries(n int) []Entry {
	countries := []string{"US", "GB", "DE", "FR", "JP"}
	regions := []string{"NA", "EU", "EU", "EU", "APAC"}
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			UserID:                fmt.Sprintf("user-%04d", (i*7919)%n),
			Username:              fmt.Sprintf("player%d", i),
			DisplayName:           fmt.Sprintf("Player %d", i),
			Score:                 (i * 37) % 500,
			TotalPuzzlesCompleted: i % 11,
			TotalModulesCompleted: i % 5,
			AverageScore:          float64(i%100) / 2,
			CompletionPercentage:  float64(i % 101),
			LastActiveAt:          testNow.Add(-time.Duration(i%60) * 24 * time.Hour),
			Country:               countries[i%len(countries)],
			Region:                regions[i%len(regions)],
		}
	}
	return entries
}

func userIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	return ids
}
