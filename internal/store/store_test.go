package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return s
}

func seedCube(t *testing.T, s *Store) *Cube {
	t.Helper()
	tournament := Tournament{Name: "Summer Cube Night", Date: time.Now(), Status: TournamentDraft}
	require.NoError(t, s.CreateTournament(&tournament))

	cube := Cube{
		TournamentID: tournament.ID,
		OwnerName:    "Alex",
		CubeName:     "Vintage Cube",
		SessionID:    "session-abc",
		Status:       CubePendingCheckin,
	}
	require.NoError(t, s.CreateCube(&cube))
	return &cube
}

func TestTournamentRoundTrip(t *testing.T) {
	s := openTestStore(t)
	cube := seedCube(t, s)

	got, err := s.GetTournament(cube.TournamentID)
	require.NoError(t, err)
	assert.Equal(t, "Summer Cube Night", got.Name)
	require.Len(t, got.Cubes, 1)
	assert.Equal(t, "Vintage Cube", got.Cubes[0].CubeName)

	list, err := s.ListTournaments()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetTournamentNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetTournament(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCubeBySession(t *testing.T) {
	s := openTestStore(t)
	cube := seedCube(t, s)

	got, err := s.GetCubeBySession("session-abc")
	require.NoError(t, err)
	assert.Equal(t, cube.ID, got.ID)

	_, err = s.GetCubeBySession("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCubesFilter(t *testing.T) {
	s := openTestStore(t)
	cube := seedCube(t, s)

	other := Tournament{Name: "Other", Date: time.Now(), Status: TournamentDraft}
	require.NoError(t, s.CreateTournament(&other))
	require.NoError(t, s.CreateCube(&Cube{
		TournamentID: other.ID, OwnerName: "Sam", CubeName: "Pauper Cube",
		SessionID: "session-def", Status: CubePendingCheckin,
	}))

	all, err := s.ListCubes(0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := s.ListCubes(cube.TournamentID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, cube.ID, filtered[0].ID)
}

func TestCardsReadingOrder(t *testing.T) {
	s := openTestStore(t)
	cube := seedCube(t, s)

	// Inserted out of order; ListCards must return left column first,
	// top-to-bottom within it.
	cards := []Card{
		{CubeID: cube.ID, RawOCRText: "c", Status: CardDetected, BBoxX: 400, BBoxY: 10},
		{CubeID: cube.ID, RawOCRText: "b", Status: CardDetected, BBoxX: 10, BBoxY: 200},
		{CubeID: cube.ID, RawOCRText: "a", Status: CardDetected, BBoxX: 10, BBoxY: 10},
	}
	require.NoError(t, s.AddCards(cards))

	got, err := s.ListCards(cube.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].RawOCRText)
	assert.Equal(t, "b", got[1].RawOCRText)
	assert.Equal(t, "c", got[2].RawOCRText)
}

func TestGetCardScopedToCube(t *testing.T) {
	s := openTestStore(t)
	cube := seedCube(t, s)

	cards := []Card{{CubeID: cube.ID, RawOCRText: "x", Status: CardDetected}}
	require.NoError(t, s.AddCards(cards))

	got, err := s.GetCard(cards[0].ID, cube.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.RawOCRText)

	_, err = s.GetCard(cards[0].ID, cube.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveCardConfirmation(t *testing.T) {
	s := openTestStore(t)
	cube := seedCube(t, s)

	cards := []Card{{CubeID: cube.ID, RawOCRText: "Lightnng Bot", Status: CardDetected}}
	require.NoError(t, s.AddCards(cards))

	card, err := s.GetCard(cards[0].ID, cube.ID)
	require.NoError(t, err)

	name := "Lightning Bolt"
	card.ConfirmedName = &name
	card.Status = CardConfirmed
	require.NoError(t, s.SaveCard(card))

	reloaded, err := s.GetCard(card.ID, cube.ID)
	require.NoError(t, err)
	assert.Equal(t, CardConfirmed, reloaded.Status)
	assert.Equal(t, "Lightning Bolt", reloaded.DisplayName())
}

func TestDeleteCube(t *testing.T) {
	s := openTestStore(t)
	cube := seedCube(t, s)

	require.NoError(t, s.DeleteCube(cube.ID))
	_, err := s.GetCube(cube.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteCube(cube.ID), ErrNotFound)
}

func TestAddCardsEmpty(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.AddCards(nil))
}
