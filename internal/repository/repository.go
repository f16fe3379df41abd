package repository

import (
	"fmt"

	"github.com/yourusername/podium-pipeline/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Result   ResultRepository
	Encoding EncodingRepository
	Dataset  DatasetRepository
	Run      RunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Result:   NewPostgresResultRepository(db),
		Encoding: NewPostgresEncodingRepository(db),
		Dataset:  NewPostgresDatasetRepository(db),
		Run:      NewPostgresRunRepository(db),
	}, nil
}
