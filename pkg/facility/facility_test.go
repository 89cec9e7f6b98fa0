package facility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func region(w, h int) *Region {
	u := Uniform(1)
	return &Region{
		ID: 1, Name: "hall", X: 2, Y: 1, Width: w, Height: h,
		Aggressiveness: u, Unavailability: u, Laboriousness: u,
		BadRadioTransmittance: u, BadWiredTransmittance: u,
	}
}

func TestEstimate(t *testing.T) {
	e := Estimate{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, e.At(Top))
	assert.Equal(t, 4.0, e.At(Left))
	assert.Equal(t, 5.0, e.At(Inside))
	assert.Equal(t, 0.0, e.At(Position(9)))
	assert.Equal(t, 7.0, Uniform(7).At(Right))

	tests := []struct {
		name    string
		e       Estimate
		wantErr bool
	}{
		{"uniform", Estimate{0}, false},
		{"per position", Estimate{1, 1, 1, 1, 1}, false},
		{"empty", nil, true},
		{"wrong length", Estimate{1, 2}, true},
		{"negative", Estimate{1, -1, 1, 1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.e.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEstimate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	assert.Equal(t, Bottom, Top.Opposite())
	assert.Equal(t, Left, Right.Opposite())
	assert.Equal(t, Inside, Inside.Opposite())
	assert.Equal(t, "inside", Inside.String())
	assert.Equal(t, "unknown", Position(-1).String())
}

func TestRegionValidate(t *testing.T) {
	require.NoError(t, region(3, 3).Validate())

	r := region(0, 3)
	assert.Error(t, r.Validate())

	r = region(3, 3)
	r.X = -1
	assert.Error(t, r.Validate())

	r = region(3, 3)
	r.Laboriousness = Estimate{1, 1}
	err := r.Validate()
	require.ErrorIs(t, err, ErrInvalidEstimate)
	assert.Contains(t, err.Error(), "laboriousness")
}

func TestRegionGeometry(t *testing.T) {
	r := region(3, 2)
	assert.True(t, r.Contains(2, 1))
	assert.True(t, r.Contains(4, 2))
	assert.False(t, r.Contains(5, 1))
	assert.False(t, r.Contains(2, 0))

	assert.Equal(t, []Position{Top, Left}, r.Borders(0, 0))
	assert.Equal(t, []Position{Right, Bottom}, r.Borders(2, 1))
	assert.Equal(t, []Position{Top}, r.Borders(1, 0))
	assert.Equal(t, []Position{Top, Right, Bottom, Left}, region(1, 1).Borders(0, 0))
}

func TestVertex(t *testing.T) {
	r := region(3, 3)
	center := &Vertex{Region: r, LocalX: 1, LocalY: 1, Index: 4}
	corner := &Vertex{Region: r, LocalX: 2, LocalY: 0, Index: 2}

	assert.True(t, center.IsInside())
	assert.Equal(t, Inside, center.Position())
	assert.False(t, corner.IsInside())
	assert.Equal(t, Top, corner.Position())

	assert.Equal(t, 3, center.GlobalX())
	assert.Equal(t, 2, center.GlobalY())
	assert.Equal(t, VertexKey{RegionID: 1, LocalX: 1, LocalY: 1}, center.Key())
	assert.Equal(t, "hall(1,1)", center.String())

	assert.True(t, corner.Less(center))
	assert.False(t, center.Less(corner))

	other := &Vertex{Region: &Region{ID: 0}, LocalX: 2, LocalY: 2}
	assert.True(t, other.Less(corner))
	assert.False(t, other.SameRegion(corner))
	assert.True(t, center.SameRegion(corner))
}

func TestZone(t *testing.T) {
	z := &Zone{ID: 1, Name: "boiler"}
	assert.False(t, z.HasRequirements())
	assert.Error(t, z.Validate())

	z.RequiredControls = []Control{ValveControl}
	z.Locations = []Point{{X: 0, Y: 0}}
	assert.True(t, z.HasRequirements())
	assert.NoError(t, z.Validate())
}

func TestContainsAll(t *testing.T) {
	have := []Measurement{Temperature, Humidity}
	assert.True(t, ContainsAll(have, nil))
	assert.True(t, ContainsAll(have, []Measurement{Humidity}))
	assert.False(t, ContainsAll(have, []Measurement{Temperature, Pressure}))
	assert.False(t, ContainsAll(nil, []Measurement{Temperature}))
}
