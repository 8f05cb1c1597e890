// Package store persists tournaments, cubes and detected cards.
package store

import (
	"encoding/json"
	"time"

	"cube-tracker/pkg/geometry"
)

// TournamentStatus tracks the lifecycle of an event.
type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentActive    TournamentStatus = "active"
	TournamentComplete  TournamentStatus = "complete"
	TournamentCancelled TournamentStatus = "cancelled"
)

// CubeStatus tracks a cube through check-in and play.
type CubeStatus string

const (
	CubePendingCheckin CubeStatus = "pending_checkin"
	CubeCheckedIn      CubeStatus = "checked_in"
	CubeInUse          CubeStatus = "in_use"
	CubeReturned       CubeStatus = "returned"
	CubeFlagged        CubeStatus = "flagged"
)

// CardStatus tracks a card from detection to return.
type CardStatus string

const (
	CardDetected  CardStatus = "detected"  // OCR detected, not confirmed
	CardConfirmed CardStatus = "confirmed" // operator confirmed the name
	CardDrafted   CardStatus = "drafted"   // assigned to a player
	CardReturned  CardStatus = "returned"  // player returned it
)

// TableStatus tracks a draft table.
type TableStatus string

const (
	TableWaiting  TableStatus = "waiting"
	TableDrafting TableStatus = "drafting"
	TablePlaying  TableStatus = "playing"
	TableComplete TableStatus = "complete"
)

// Tournament is the top-level event container.
type Tournament struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string           `gorm:"size:200;not null" json:"name"`
	Date     time.Time        `gorm:"not null" json:"date"`
	Location string           `gorm:"size:200" json:"location"`
	Status   TournamentStatus `gorm:"size:20;not null;default:draft" json:"status"`
	Notes    string           `json:"notes"`

	Cubes  []Cube  `gorm:"constraint:OnDelete:CASCADE" json:"cubes,omitempty"`
	Tables []Table `gorm:"constraint:OnDelete:CASCADE" json:"tables,omitempty"`
}

// Cube is a card collection checked in to a tournament.
type Cube struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TournamentID uint       `gorm:"not null;index" json:"tournament_id"`
	OwnerName    string     `gorm:"size:200;not null" json:"owner_name"`
	OwnerEmail   string     `gorm:"size:200" json:"owner_email"`
	CubeName     string     `gorm:"size:200;not null" json:"cube_name"`
	Status       CubeStatus `gorm:"size:20;not null;default:pending_checkin" json:"status"`

	SourceImagePath    string `gorm:"size:500" json:"source_image_path,omitempty"`
	AnnotatedImagePath string `gorm:"size:500" json:"annotated_image_path,omitempty"`
	SessionID          string `gorm:"size:100;uniqueIndex" json:"session_id"`

	TotalCards     int `gorm:"default:0" json:"total_cards"`
	CardsConfirmed int `gorm:"default:0" json:"cards_confirmed"`

	Cards []Card `gorm:"constraint:OnDelete:CASCADE" json:"cards,omitempty"`
}

// Card is one detected card region in a cube photo. The pipeline creates
// it once and never mutates it afterwards; only operator confirmation
// (UpdateCardName) changes it.
type Card struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CubeID uint `gorm:"not null;index" json:"cube_id"`

	RawOCRText     string     `gorm:"size:200" json:"raw_ocr_text"`
	RecognizedName *string    `gorm:"size:200" json:"recognized_name"`
	ConfirmedName  *string    `gorm:"size:200" json:"confirmed_name"`
	MatchScore     float64    `json:"match_score"`
	Status         CardStatus `gorm:"size:20;not null;default:detected" json:"status"`

	BBoxX      int `json:"bbox_x"`
	BBoxY      int `json:"bbox_y"`
	BBoxWidth  int `json:"bbox_width"`
	BBoxHeight int `json:"bbox_height"`

	// Polygon is the region outline as JSON-encoded corner points, kept
	// for annotation compatibility with rotated-region detectors.
	PolygonJSON string `gorm:"type:text" json:"polygon_json,omitempty"`

	// ThumbnailBase64 is a small JPEG of the title strip, base64-encoded
	// for transport.
	ThumbnailBase64 string `gorm:"type:text" json:"thumbnail_base64,omitempty"`
}

// DisplayName returns the best available name for the card.
func (c *Card) DisplayName() string {
	switch {
	case c.ConfirmedName != nil && *c.ConfirmedName != "":
		return *c.ConfirmedName
	case c.RecognizedName != nil && *c.RecognizedName != "":
		return *c.RecognizedName
	case c.RawOCRText != "":
		return c.RawOCRText
	default:
		return "Unknown Card"
	}
}

// BBox returns the card's bounding box as a rectangle.
func (c *Card) BBox() geometry.RectInt {
	return geometry.RectInt{X: c.BBoxX, Y: c.BBoxY, Width: c.BBoxWidth, Height: c.BBoxHeight}
}

// SetPolygon stores the region outline.
func (c *Card) SetPolygon(points []geometry.PointInt) {
	raw, err := json.Marshal(points)
	if err != nil {
		return
	}
	c.PolygonJSON = string(raw)
}

// Polygon returns the stored region outline, or nil when absent.
func (c *Card) Polygon() []geometry.PointInt {
	if c.PolygonJSON == "" {
		return nil
	}
	var points []geometry.PointInt
	if err := json.Unmarshal([]byte(c.PolygonJSON), &points); err != nil {
		return nil
	}
	return points
}

// Table is a draft table in a tournament.
type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TournamentID uint        `gorm:"not null;index" json:"tournament_id"`
	CubeID       *uint       `json:"cube_id"`
	TableNumber  int         `gorm:"not null" json:"table_number"`
	Status       TableStatus `gorm:"size:20;not null;default:waiting" json:"status"`

	Players []Player `gorm:"constraint:OnDelete:CASCADE" json:"players,omitempty"`
}

// Player is a participant seated at a table.
type Player struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TableID    uint   `gorm:"not null;index" json:"table_id"`
	Name       string `gorm:"size:200;not null" json:"name"`
	SeatNumber int    `gorm:"not null" json:"seat_number"`

	DraftSubmitted bool `gorm:"default:false" json:"draft_submitted"`
	CardsReturned  bool `gorm:"default:false" json:"cards_returned"`
}

// CardAssignment records which player holds which card.
type CardAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CardID   uint `gorm:"not null;index" json:"card_id"`
	PlayerID uint `gorm:"not null;index" json:"player_id"`

	AssignedAt *time.Time `json:"assigned_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}
