/*
seed.go - Reference data loader

PURPOSE:
  Populates an empty store with the three reference vesting schemes and
  the bundled yearly price table, so a fresh server answers every
  calculator request without manual setup.

HOW SEEDING WORKS:
 1. Validate each scheme preset through the factory (same path as POST /api/schemes)
 2. Save schemes that are not stored yet
 3. Save price years that are not stored yet

Existing rows are never overwritten: an operator's corrections to a scheme
or a price year survive restarts. POST /api/admin/reset clears the store
first and therefore restores the defaults.

SEE ALSO:
  - vesting/schemes.go: Scheme presets
  - historical/prices.json: Bundled price table
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/historical"
	"github.com/warp/vesting-engine/vesting"
)

// Seed loads missing reference schemes and price years into store.
func Seed(ctx context.Context, store generic.Store) error {
	f := factory.NewSchemeFactory()

	added := 0
	for _, preset := range vesting.DefaultSchemes() {
		scheme, err := f.FromJSON(f.ToJSON(&preset))
		if err != nil {
			return fmt.Errorf("seed scheme %s: %w", preset.ID, err)
		}
		_, err = store.GetScheme(ctx, scheme.ID)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, generic.ErrSchemeNotFound):
			return err
		}
		if err := store.SaveScheme(ctx, *scheme); err != nil {
			return fmt.Errorf("seed scheme %s: %w", scheme.ID, err)
		}
		added++
	}

	table, err := historical.Bundled()
	if err != nil {
		return err
	}
	stored, err := store.YearlyPrices(ctx)
	if err != nil {
		return err
	}
	years := 0
	for _, row := range table.Rows() {
		if _, ok := stored[row.Year]; ok {
			continue
		}
		if err := store.SaveYearlyPrice(ctx, row); err != nil {
			return fmt.Errorf("seed price %d: %w", row.Year, err)
		}
		years++
	}

	log.Printf("[Seed] Added %d schemes and %d price years", added, years)
	return nil
}
