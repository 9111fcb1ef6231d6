package dice_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// maxSrc returns the largest value every draw allows.
type maxSrc struct{}

func (maxSrc) Intn(n int) int   { return n - 1 }
func (maxSrc) Float64() float64 { return 0.999 }

// minSrc returns the smallest value every draw allows.
type minSrc struct{}

func (minSrc) Intn(int) int     { return 0 }
func (minSrc) Float64() float64 { return 0 }

func TestParse_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"2d6", dice.Expression{Raw: "2d6", Count: 2, Sides: 6}},
		{"1d16+14", dice.Expression{Raw: "1d16+14", Count: 1, Sides: 16, Modifier: 14}},
		{"3D4-2", dice.Expression{Raw: "3D4-2", Count: 3, Sides: 4, Modifier: -2}},
		{" 1d11+9 ", dice.Expression{Raw: "1d11+9", Count: 1, Sides: 11, Modifier: 9}},
	}
	for _, tc := range cases {
		got, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "2d1", "2d", "d6+", "2x6", "1d6+2+3", "-1d6"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "%q", in)
	}
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nonsense") })
	assert.NotPanics(t, func() { dice.MustParse("1d16+14") })
}

func TestExpression_Range(t *testing.T) {
	assert.Equal(t, dice.Range{Min: 15, Max: 30}, dice.MustParse("1d16+14").Range())
	assert.Equal(t, dice.Range{Min: 2, Max: 12}, dice.MustParse("2d6").Range())
	assert.Equal(t, dice.Range{Min: 1, Max: 10}, dice.MustParse("3d4-2").Range())
}

// TestRollExpression_Property verifies every total lands in the expression's range
// and the audit trail adds up.
func TestRollExpression_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := dice.Expression{
			Raw:      "x",
			Count:    rapid.IntRange(1, 6).Draw(rt, "count"),
			Sides:    rapid.IntRange(2, 30).Draw(rt, "sides"),
			Modifier: rapid.IntRange(-20, 20).Draw(rt, "mod"),
		}
		res := dice.RollExpression(dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), e)
		require.Len(rt, res.Dice, e.Count)
		r := e.Range()
		assert.GreaterOrEqual(rt, res.Total(), r.Min)
		assert.LessOrEqual(rt, res.Total(), r.Max)
	})
}

// TestRollExpression_MatchesRangeRoll verifies a single-die expression draws the
// same value as rolling its range directly.
func TestRollExpression_MatchesRangeRoll(t *testing.T) {
	e := dice.MustParse("1d16+14")
	a := dice.NewSeededSource(9)
	b := dice.NewSeededSource(9)
	for i := 0; i < 50; i++ {
		require.Equal(t, dice.Roll(b, e.Range()), dice.RollExpression(a, e).Total())
	}
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "1d16+14", Dice: []int{7}, Modifier: 14}
	assert.Equal(t, 21, r.Total())
	assert.Equal(t, "1d16+14 [7] +14 = 21", r.String())
}

func TestRoller_LogsExpressionRoll(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(maxSrc{}, zap.New(core))

	res := dice.RollExpression(r, dice.MustParse("2d6+1"))

	assert.Equal(t, 13, res.Total())
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "dice expression", entry.Message)
	assert.Equal(t, "2d6+1", entry.ContextMap()["expression"])
	assert.EqualValues(t, 13, entry.ContextMap()["total"])
}

func TestRange_UnmarshalYAML(t *testing.T) {
	var doc struct {
		Expr    dice.Range `yaml:"expr"`
		Mapping dice.Range `yaml:"mapping"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("expr: 1d41+79\nmapping: {min: 10, max: 20}\n"), &doc))
	assert.Equal(t, dice.Range{Min: 80, Max: 120}, doc.Expr)
	assert.Equal(t, dice.Range{Min: 10, Max: 20}, doc.Mapping)

	err := yaml.Unmarshal([]byte("expr: 1x41\n"), &doc)
	assert.Error(t, err)
}

func TestNewSeedFrom_Bounds(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt), dice.NewSeedFrom(maxSrc{}))
	assert.Equal(t, int64(1), dice.NewSeedFrom(minSrc{}))
}
