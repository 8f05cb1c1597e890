package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the database handle with the queries the service needs.
type Store struct {
	db *gorm.DB
}

// Open connects to the database named by the URL and runs migrations.
// URLs starting with "postgres" use the Postgres driver; anything else is
// treated as a SQLite path (the development default).
func Open(databaseURL string) (*Store, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseURL, "postgres") {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&Tournament{}, &Cube{}, &Card{},
		&Table{}, &Player{}, &CardAssignment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, mainly for tests.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateTournament inserts a new tournament.
func (s *Store) CreateTournament(t *Tournament) error {
	return s.db.Create(t).Error
}

// ListTournaments returns all tournaments, most recent date first.
func (s *Store) ListTournaments() ([]Tournament, error) {
	var out []Tournament
	err := s.db.Order("date DESC").Find(&out).Error
	return out, err
}

// GetTournament fetches one tournament with its cubes.
func (s *Store) GetTournament(id uint) (*Tournament, error) {
	var t Tournament
	if err := s.db.Preload("Cubes").First(&t, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

// CreateCube inserts a new cube.
func (s *Store) CreateCube(c *Cube) error {
	return s.db.Create(c).Error
}

// GetCube fetches one cube with its cards.
func (s *Store) GetCube(id uint) (*Cube, error) {
	var c Cube
	if err := s.db.Preload("Cards").First(&c, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &c, nil
}

// GetCubeBySession fetches the cube for an in-progress check-in session.
func (s *Store) GetCubeBySession(sessionID string) (*Cube, error) {
	var c Cube
	if err := s.db.Where("session_id = ?", sessionID).First(&c).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &c, nil
}

// ListCubes returns cubes, optionally filtered by tournament, newest first.
func (s *Store) ListCubes(tournamentID uint) ([]Cube, error) {
	q := s.db.Order("created_at DESC")
	if tournamentID != 0 {
		q = q.Where("tournament_id = ?", tournamentID)
	}
	var out []Cube
	err := q.Find(&out).Error
	return out, err
}

// SaveCube persists changes to an existing cube.
func (s *Store) SaveCube(c *Cube) error {
	return s.db.Save(c).Error
}

// DeleteCube removes a cube and its cards.
func (s *Store) DeleteCube(id uint) error {
	res := s.db.Select("Cards").Delete(&Cube{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddCards bulk-inserts the detected cards of one upload.
func (s *Store) AddCards(cards []Card) error {
	if len(cards) == 0 {
		return nil
	}
	return s.db.Create(&cards).Error
}

// ListCards returns a cube's cards in reading order.
func (s *Store) ListCards(cubeID uint) ([]Card, error) {
	var out []Card
	err := s.db.Where("cube_id = ?", cubeID).
		Order("bbox_x").Order("bbox_y").
		Find(&out).Error
	return out, err
}

// GetCard fetches one card, scoped to its cube.
func (s *Store) GetCard(cardID, cubeID uint) (*Card, error) {
	var c Card
	if err := s.db.Where("id = ? AND cube_id = ?", cardID, cubeID).First(&c).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &c, nil
}

// SaveCard persists changes to an existing card.
func (s *Store) SaveCard(c *Card) error {
	return s.db.Save(c).Error
}
