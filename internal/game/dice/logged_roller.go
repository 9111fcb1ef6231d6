package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every draw is logged at debug level.
// A Roller is itself a Source and can be handed to anything that rolls.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewLoggedRoller precondition violated: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll",
		zap.Int("sides", n),
		zap.Int("value", v),
	)
	return v
}

// Float64 draws from the wrapped source and logs the result.
func (r *Roller) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("dice chance", zap.Float64("value", v))
	return v
}

// RollExpression rolls e against the wrapped source and logs the full roll.
//
// Precondition: e must come from Parse.
// Postcondition: Exactly one debug entry carrying the expression, dice and total.
func (r *Roller) RollExpression(e Expression) RollResult {
	res := rollDice(r.src, e)
	r.logger.Debug("dice expression",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}
