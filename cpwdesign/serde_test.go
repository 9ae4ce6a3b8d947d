package cpwdesign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeDesignRoundTrip(t *testing.T) {
	d := testDesign(t)
	if _, err := d.Connect(PinRef{"q1", "readout"}, PinRef{"q2", "readout"}); err != nil {
		t.Fatal(err)
	}

	b, err := SerializeDesign(d)
	assert.NoError(t, err)

	newD, err := DeserializeDesign(b)
	assert.NoError(t, err)

	assert.Equal(t, len(d.Components()), len(newD.Components()))
	for i, c := range d.Components() {
		c2 := newD.Components()[i]
		assert.Equal(t, c.ID, c2.ID)
		assert.Equal(t, c.Box, c2.Box)
		assert.Equal(t, c.Pins(), c2.Pins())
	}
	assert.Equal(t, d.Nets().Entries(), newD.Nets().Entries())

	b2, err := SerializeDesign(newD)
	assert.NoError(t, err)
	assert.Equal(t, string(b), string(b2))
}

func TestDeserializeDesignRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{
			name: "duplicate component id",
			doc: `{"components": [
				{"id": "a"},
				{"id": "a"}
			]}`,
		},
		{
			name: "missing component id",
			doc:  `{"components": [{}]}`,
		},
		{
			name: "pin without middle",
			doc: `{"components": [
				{"id": "a", "pins": [{"name": "p", "normal": [1, 0], "width": 0.01}]}
			]}`,
		},
		{
			name: "pin with zero normal",
			doc: `{"components": [
				{"id": "a", "pins": [{"name": "p", "middle": {"x": 0, "y": 0}, "normal": [0, 0], "width": 0.01}]}
			]}`,
		},
		{
			name: "pin without width",
			doc: `{"components": [
				{"id": "a", "pins": [{"name": "p", "middle": {"x": 0, "y": 0}, "normal": [1, 0]}]}
			]}`,
		},
		{
			name: "pin outside its box",
			doc: `{"components": [
				{"id": "a", "box": {"x1": 0, "y1": 0, "x2": 1, "y2": 1},
					"pins": [{"name": "p", "middle": {"x": 5, "y": 5}, "normal": [1, 0], "width": 0.01}]}
			]}`,
		},
		{
			name: "odd net table",
			doc: `{"components": [], "nets": [
				{"net": 0, "ref": {"component": "a", "pin": "p"}}
			]}`,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := DeserializeDesign([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestDeserializeDesignNormalizesNormals(t *testing.T) {
	d, err := DeserializeDesign([]byte(`{"components": [
		{"id": "a", "pins": [{"name": "p", "middle": {"x": 0, "y": 0}, "normal": [3, 4], "width": 0.01}]}
	]}`))
	assert.NoError(t, err)

	c, _ := d.Component("a")
	p, _ := c.Pin("p")
	assert.InDelta(t, 0.6, p.Normal[0], 1e-9)
	assert.InDelta(t, 0.8, p.Normal[1], 1e-9)
	assert.InDelta(t, 1.0, p.Normal.Length(), 1e-9)
}
