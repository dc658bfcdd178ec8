package entity

import (
	"encoding/json"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseView(t *testing.T) {
	v, ok := ParseView("front")
	require.True(t, ok)
	require.Equal(t, ViewFront, v)

	v, ok = ParseView("back")
	require.True(t, ok)
	require.Equal(t, ViewBack, v)

	for _, name := range []string{"side", "Front", "FRONT", " back ", "back\n", ""} {
		_, ok = ParseView(name)
		require.False(t, ok, "name %q", name)
	}
}

func TestBBoxGeometry(t *testing.T) {
	b := BBox{X1: 10.2, Y1: 20, X2: 30.5, Y2: 26}
	require.InDelta(t, 20.3, b.Width(), 1e-9)
	require.InDelta(t, 6.0, b.Height(), 1e-9)
	require.Equal(t, image.Rect(10, 20, 31, 26), b.Rect())

	require.Zero(t, BBox{X1: 5, Y1: 5, X2: 5, Y2: 9}.Area())
}

func TestDamageLocation(t *testing.T) {
	loc := DamageLocation(ViewBack, BBox{X1: 1.4, Y1: 2.6, X2: 100, Y2: 50.5})
	require.Equal(t, "back - bbox: [1, 3, 100, 51]", loc)
}

func TestGradeAndSeverityText(t *testing.T) {
	require.Equal(t, "S", GradeS.String())
	require.Equal(t, "D", GradeD.String())
	require.Equal(t, "Grade(7)", Grade(7).String())
	require.False(t, Grade(-1).Valid())

	_, err := Grade(7).MarshalText()
	require.Error(t, err)

	g, err := ParseGrade("B")
	require.NoError(t, err)
	require.Equal(t, GradeB, g)

	require.True(t, SeverityMinor < SeverityModerate && SeverityModerate < SeveritySevere)
	s, err := ParseSeverity("moderate")
	require.NoError(t, err)
	require.Equal(t, SeverityModerate, s)

	text, err := SeveritySevere.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "severe", string(text))

	var d Damage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"oil","location":"back","severity":"minor"}`), &d))
	require.Equal(t, SeverityMinor, d.Severity)

	var parsed Grade
	require.NoError(t, parsed.UnmarshalText([]byte("C")))
	require.Equal(t, GradeC, parsed)
	require.Error(t, parsed.UnmarshalText([]byte("Z")))
}

func TestAdapterErrorUnwrap(t *testing.T) {
	cause := errors.New("model crashed")
	err := error(&AdapterError{View: ViewFront, Err: cause})
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "front")
}
