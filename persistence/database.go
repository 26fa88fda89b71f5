package persistence

import (
	"context"
	"embed"
	"encoding/json"
	"time"

	"gorm.io/gorm/clause"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/database"
	apperrors "github.com/kbukum/jobgraph/errors"
)

// Migrations holds the SQL schema for the pipeline_graphs table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath is the directory of Migrations holding the SQL files.
const MigrationsPath = "migrations"

type graphRecord struct {
	JobID     string `gorm:"column:job_id;primaryKey"`
	Graph     string `gorm:"column:graph;type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (graphRecord) TableName() string { return "pipeline_graphs" }

// DatabaseStore keeps each graph as a JSON document in the pipeline_graphs
// table. A row with an empty graph column reads as absent.
type DatabaseStore struct {
	db *database.DB
}

// NewDatabaseStore creates a store on db. The schema must already exist;
// apply Migrations first.
func NewDatabaseStore(db *database.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

var _ Store = (*DatabaseStore)(nil)

func (s *DatabaseStore) Save(ctx context.Context, jobID string, g *dag.Structure) error {
	if err := checkJobID(jobID); err != nil {
		return err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return apperrors.StorageError("database encode", err)
	}

	rec := graphRecord{JobID: jobID, Graph: string(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"graph", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return database.FromDatabase(err, "save graph", "graph")
	}
	return nil
}

func (s *DatabaseStore) Load(ctx context.Context, jobID string) (*dag.Structure, error) {
	var rec graphRecord
	err := s.db.WithContext(ctx).Where("job_id = ?", jobID).Take(&rec).Error
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, database.FromDatabase(err, "load graph", "graph")
	}
	if rec.Graph == "" {
		return nil, nil
	}

	var g dag.Structure
	if err := json.Unmarshal([]byte(rec.Graph), &g); err != nil {
		return nil, apperrors.StorageError("database decode", err).WithDetail("jobId", jobID)
	}
	return &g, nil
}

func (s *DatabaseStore) Delete(ctx context.Context, jobID string) error {
	err := s.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&graphRecord{}).Error
	if err != nil {
		return database.FromDatabase(err, "delete graph", "graph")
	}
	return nil
}

func (s *DatabaseStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&graphRecord{}).
		Where("graph <> ''").Order("job_id").Pluck("job_id", &ids).Error
	if err != nil {
		return nil, database.FromDatabase(err, "list graphs", "graph")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
