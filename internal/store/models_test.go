package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cube-tracker/pkg/geometry"
)

func strptr(s string) *string { return &s }

func TestCardDisplayName(t *testing.T) {
	tests := []struct {
		name string
		card Card
		want string
	}{
		{"confirmed wins", Card{ConfirmedName: strptr("Counterspell"), RecognizedName: strptr("Counterspel"), RawOCRText: "Countersp"}, "Counterspell"},
		{"recognized next", Card{RecognizedName: strptr("Counterspell"), RawOCRText: "Countersp"}, "Counterspell"},
		{"raw text next", Card{RawOCRText: "Countersp"}, "Countersp"},
		{"empty confirmed falls through", Card{ConfirmedName: strptr(""), RawOCRText: "Countersp"}, "Countersp"},
		{"nothing known", Card{}, "Unknown Card"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.card.DisplayName())
		})
	}
}

func TestCardPolygonRoundTrip(t *testing.T) {
	box := geometry.RectInt{X: 10, Y: 20, Width: 100, Height: 30}

	var card Card
	card.SetPolygon(box.Corners())

	got := card.Polygon()
	assert.Equal(t, box.Corners(), got)
}

func TestCardPolygonAbsent(t *testing.T) {
	var card Card
	assert.Nil(t, card.Polygon())

	card.PolygonJSON = "{broken"
	assert.Nil(t, card.Polygon())
}

func TestCardBBox(t *testing.T) {
	card := Card{BBoxX: 1, BBoxY: 2, BBoxWidth: 3, BBoxHeight: 4}
	assert.Equal(t, geometry.RectInt{X: 1, Y: 2, Width: 3, Height: 4}, card.BBox())
}
