package task

import "github.com/tidyhome/backend/domain"

// Seed is one entry of the starter catalog.
type Seed struct {
	Title string
	Type  domain.TaskType
}

// DefaultCatalog returns the fixed chore list every new account starts with:
// 5 daily, 5 weekly and 4 monthly titles. The seeds carry no schedule fields;
// owners fill those in later.
func DefaultCatalog() []Seed {
	daily := []string{
		"Make bed",
		"Wash dishes",
		"Wipe kitchen counters",
		"15-min declutter",
		"Sweep high-traffic floors",
	}
	weekly := []string{
		"Deep clean bathrooms",
		"Vacuum/mop all floors",
		"Dust surfaces",
		"Launder bed linens",
		"Empty all trash bins",
	}
	monthly := []string{
		"Deep clean oven/fridge",
		"Wipe baseboards & window sills",
		"Wash windows",
		"Vacuum upholstery",
	}

	seeds := make([]Seed, 0, len(daily)+len(weekly)+len(monthly))
	for _, title := range daily {
		seeds = append(seeds, Seed{Title: title, Type: domain.TypeDaily})
	}
	for _, title := range weekly {
		seeds = append(seeds, Seed{Title: title, Type: domain.TypeWeekly})
	}
	for _, title := range monthly {
		seeds = append(seeds, Seed{Title: title, Type: domain.TypeMonthly})
	}
	return seeds
}
