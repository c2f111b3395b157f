package iostore

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/flowsignal/flowcast/schema"
)

// Seed populates the store with a small demo data set: two teams with 60
// days of throughput history and one portfolio with in-flight features.
// Existing rows with the same ids are replaced. The seed is deterministic
// so repeated runs produce the same data.
func Seed(ctx context.Context, store *SQLStore) error {
	if store.db == nil {
		return errStoreDisabled
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -59)

	teams := []schema.Team{
		{ID: 1, Name: "orion", ThroughputHistoryDays: 30, FeatureWIP: 2,
			SLE: schema.ServiceLevelExpectation{Probability: 85, RangeDays: 10}},
		{ID: 2, Name: "cygnus", ThroughputHistoryDays: 60, FeatureWIP: 1,
			SLE: schema.ServiceLevelExpectation{Probability: 70, RangeDays: 14}},
	}
	for _, team := range teams {
		if err := store.SaveTeam(ctx, team); err != nil {
			return fmt.Errorf("failed to seed team %s: %w", team.Name, err)
		}
	}

	// Deterministic closure pattern, roughly one item a day with bursts.
	rng := rand.New(rand.NewPCG(42, 42))
	var itemID int64
	for _, team := range teams {
		for day := 0; day < 60; day++ {
			closures := rng.IntN(3)
			for n := 0; n < closures; n++ {
				itemID++
				closed := start.AddDate(0, 0, day)
				started := closed.AddDate(0, 0, -(1 + rng.IntN(8)))
				created := started.AddDate(0, 0, -rng.IntN(14))
				item := schema.WorkItem{
					ID:          itemID,
					TeamID:      team.ID,
					State:       schema.StateDone,
					CreatedDate: created,
					StartedDate: &started,
					ClosedDate:  &closed,
				}
				if err := store.SaveWorkItem(ctx, item); err != nil {
					return fmt.Errorf("failed to seed work item %d: %w", itemID, err)
				}
			}
		}
	}

	if err := store.SavePortfolio(ctx, schema.Portfolio{ID: 1, Name: "atlas"}); err != nil {
		return fmt.Errorf("failed to seed portfolio: %w", err)
	}

	features := []schema.Feature{
		{ID: 1, PortfolioID: 1, Name: "checkout revamp", Size: 18, State: schema.StateDoing,
			Work: []schema.FeatureWork{{TeamID: 1, RemainingItems: 7}, {TeamID: 2, RemainingItems: 4}}},
		{ID: 2, PortfolioID: 1, Name: "search relevance", Size: 9, State: schema.StateDoing,
			Work: []schema.FeatureWork{{TeamID: 2, RemainingItems: 9}}},
		{ID: 3, PortfolioID: 1, Name: "billing exports", Size: 5, State: schema.StateDone,
			StartedDate: &start, ClosedDate: &end},
	}
	for _, feature := range features {
		if err := store.SaveFeature(ctx, feature); err != nil {
			return fmt.Errorf("failed to seed feature %s: %w", feature.Name, err)
		}
	}

	return nil
}
