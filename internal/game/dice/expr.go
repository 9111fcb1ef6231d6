package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Expression is a parsed "NdS+M" dice expression.
//
// Invariant: Count >= 1 and Sides >= 2 for every Expression returned by Parse.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// Parse parses expressions of the form "d20", "2d6", "1d16+14" or "3d4-2".
//
// Precondition: s must be non-empty.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(s string) (Expression, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", raw)
	}
	e := Expression{Raw: raw, Count: 1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		e.Count = n
	}
	if e.Count < 1 {
		return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}
	e.Sides = sides
	if m[3] != "" {
		mod, err := strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
		e.Modifier = mod
	}
	return e, nil
}

// MustParse parses s and panics on error. Used for package-level effect tables.
//
// Precondition: s must be a valid dice expression.
func MustParse(s string) Expression {
	e, err := Parse(s)
	if err != nil {
		panic("dice: MustParse failed: " + err.Error())
	}
	return e
}

// Range returns the inclusive interval of totals e can produce.
//
// Postcondition: Range().Min == Count+Modifier and Range().Max == Count*Sides+Modifier.
func (e Expression) Range() Range {
	return Range{Min: e.Count + e.Modifier, Max: e.Count*e.Sides + e.Modifier}
}

// String returns the expression as written.
func (e Expression) String() string { return e.Raw }

// RollResult is the audit trail of one expression roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of the dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d16+14 [7] +14 = 21".
func (r RollResult) String() string {
	return fmt.Sprintf("%s %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// ExpressionRoller is a Source that rolls whole expressions itself, usually to
// record the RollResult.
type ExpressionRoller interface {
	Source
	RollExpression(e Expression) RollResult
}

// RollExpression rolls e against src. When src is an ExpressionRoller the roll is
// delegated to it.
//
// Precondition: e must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == e.Count; e.Range() contains result.Total().
func RollExpression(src Source, e Expression) RollResult {
	if er, ok := src.(ExpressionRoller); ok {
		return er.RollExpression(e)
	}
	return rollDice(src, e)
}

func rollDice(src Source, e Expression) RollResult {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	return RollResult{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
}

// UnmarshalYAML accepts either a {min, max} mapping or a dice expression
// string such as "1d41+79", which becomes the expression's total range.
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e, err := Parse(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*r = e.Range()
		return nil
	}
	type plain Range
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*r = Range(p)
	return nil
}
