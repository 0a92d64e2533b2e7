package repositories

import (
	"context"
	"slices"

	"clinic/internal/database"
	"clinic/internal/logger"
	. "clinic/internal/models"
)

type UserRepository interface {
	RecordRepository[User]
	MissingIDs(ctx context.Context, ids []int) ([]int, error)
}

type userRepository struct {
	RecordRepository[User]
	db  database.DB
	log logger.Logger
}

func New(db database.DB) UserRepository {
	return &userRepository{
		RecordRepository: NewRecord[User](db, "User"),
		db:               db,
		log:              logger.New("userRepository"),
	}
}

// MissingIDs returns the ids from the input that have no user row, in input
// order and without duplicates.
func (r *userRepository) MissingIDs(ctx context.Context, ids []int) ([]int, error) {
	log := r.log.Function("MissingIDs")

	wanted := slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(wanted) == 0 {
		return nil, nil
	}

	var found []int
	if err := getDB(ctx, r.db).Model(&User{}).Where("id IN ?", wanted).Pluck("id", &found).Error; err != nil {
		return nil, log.Err("failed to look up users", err, "ids", wanted)
	}

	var missing []int
	for _, id := range ids {
		if !slices.Contains(found, id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}

	return missing, nil
}
