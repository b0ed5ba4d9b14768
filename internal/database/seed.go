package database

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"servicehours/internal/models"
	"servicehours/internal/slots"

	"gopkg.in/yaml.v2"
)

// Seed is the YAML layout of an initial schedule file.
type Seed struct {
	Restaurants []SeedRestaurant `yaml:"restaurants"`
}

type SeedRestaurant struct {
	models.Restaurant `yaml:",inline"`
	ServiceHours      map[string][]slots.ServiceWindow `yaml:"service_hours"`
	SpecialPeriods    []SeedSpecialPeriod              `yaml:"special_periods"`
}

type SeedSpecialPeriod struct {
	Name         string                           `yaml:"name"`
	StartDate    string                           `yaml:"start_date"`
	EndDate      string                           `yaml:"end_date"`
	ServiceHours map[string][]slots.ServiceWindow `yaml:"service_hours"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &seed, nil
}

// ApplySeed upserts restaurants as active and replaces the days listed in the seed.
// Special periods are always created anew.
func (db *DB) ApplySeed(ctx context.Context, seed *Seed) error {
	for i := range seed.Restaurants {
		sr := &seed.Restaurants[i]
		r := sr.Restaurant
		r.IsActive = true
		if err := db.SaveRestaurant(ctx, &r); err != nil {
			return err
		}

		for _, day := range sortedDays(sr.ServiceHours) {
			if err := db.ReplaceServiceHours(ctx, r.ID, day, sr.ServiceHours[day]); err != nil {
				return fmt.Errorf("restaurant %d %s: %w", r.ID, day, err)
			}
		}

		for _, sp := range sr.SpecialPeriods {
			if err := db.applySeedPeriod(ctx, r.ID, sp); err != nil {
				return fmt.Errorf("restaurant %d period %q: %w", r.ID, sp.Name, err)
			}
		}

		db.logger.Info().Int64("restaurant_id", r.ID).Str("name", r.Name).Msg("seeded restaurant")
	}
	return nil
}

func (db *DB) applySeedPeriod(ctx context.Context, restaurantID int64, sp SeedSpecialPeriod) error {
	start, err := time.Parse(models.DateLayout, sp.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date: %v", ErrInvalidPeriod, err)
	}
	end, err := time.Parse(models.DateLayout, sp.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end_date: %v", ErrInvalidPeriod, err)
	}

	period := &models.SpecialServicePeriod{
		RestaurantID: restaurantID,
		Name:         sp.Name,
		StartDate:    start,
		EndDate:      end,
	}
	if err := db.CreateSpecialPeriod(ctx, period); err != nil {
		return err
	}

	for _, day := range sortedDays(sp.ServiceHours) {
		if err := db.ReplaceSpecialServiceHours(ctx, period.ID, day, sp.ServiceHours[day]); err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
	}
	return nil
}

func sortedDays(hours map[string][]slots.ServiceWindow) []string {
	days := make([]string, 0, len(hours))
	for d := range hours {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}
