package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrElectionRequired = errors.New("election id is required")

// Connect opens a gorm handle on Postgres and makes sure it answers
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// Close releases the connection pool behind db
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PostgresSource reads the ballots of one election from the ballots table,
// in position order
type PostgresSource struct {
	DB         *gorm.DB
	ElectionID string
}

type ballotModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	ElectionID  string `gorm:"column:election_id"`
	Position    int    `gorm:"column:position"`
	Preferences string `gorm:"column:preferences"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func (p PostgresSource) Lines(ctx context.Context) ([]string, error) {
	election := strings.TrimSpace(p.ElectionID)
	if election == "" {
		return nil, ErrElectionRequired
	}

	var rows []ballotModel
	if err := p.DB.WithContext(ctx).
		Where("election_id = ?", election).
		Order("position ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ballots for election %s: %w", election, err)
	}

	return linesFromRows(rows), nil
}

func linesFromRows(rows []ballotModel) []string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.Preferences)
	}
	return lines
}
