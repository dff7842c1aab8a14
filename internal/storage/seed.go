package storage

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
)

//go:embed categories.toml
var seedTOML []byte

type seedFile struct {
	Categories []string `toml:"categories"`
}

// SeedDefaultCategories installs the default category set for an owner that
// has none yet. Owners with existing categories are left untouched, so the
// call is safe to repeat at every startup.
func (s *Store) SeedDefaultCategories(ctx context.Context, userID int64) error {
	var seed seedFile
	if err := toml.Unmarshal(seedTOML, &seed); err != nil {
		return fmt.Errorf("parse category seed: %w", err)
	}

	var count int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return storageErr("count categories", err)
	}
	if count > 0 {
		return nil
	}

	for _, name := range seed.Categories {
		if _, err := s.CreateCategory(ctx, userID, name); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	slog.InfoContext(ctx, "Default categories seeded",
		"user_id", userID,
		"count", len(seed.Categories))
	return nil
}
