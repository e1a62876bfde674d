package dice

import "go.uber.org/zap"

// Analyzer ties the parser, the statistics accessors, and a randomness Source
// together behind a logger. All evaluations are logged at debug level with
// the expression, outcome count, total weight, and expected value.
type Analyzer struct {
	src    Source
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer that samples with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewAnalyzer(src Source, logger *zap.Logger) *Analyzer {
	return &Analyzer{src: src, logger: logger}
}

// Analyze parses expr and returns its exact distribution, logging the
// derived statistics.
//
// Postcondition: returns a non-empty Distribution or a *ParseError.
func (a *Analyzer) Analyze(expr string) (Distribution, error) {
	d, err := Parse(expr)
	if err != nil {
		a.logger.Debug("dice expression rejected",
			zap.String("expression", expr),
			zap.Error(err),
		)
		return Distribution{}, err
	}
	ev, err := d.ExpectedValue()
	if err != nil {
		return Distribution{}, err
	}
	a.logger.Debug("dice expression analyzed",
		zap.String("expression", expr),
		zap.Int("outcomes", d.Len()),
		zap.Float64("total_weight", d.TotalWeight()),
		zap.Float64("expected_value", ev),
	)
	return d, nil
}

// Roll parses expr and draws a single weighted outcome from its distribution.
//
// Postcondition: the drawn outcome is logged at debug level; returns a
// *ParseError for malformed expressions.
func (a *Analyzer) Roll(expr string) (Outcome, error) {
	outcome, _, err := a.Evaluate(expr)
	return outcome, err
}

// Evaluate parses expr, draws one weighted outcome, and returns both the
// draw and the full distribution it came from.
//
// Postcondition: the drawn outcome is logged at debug level; returns a
// *ParseError for malformed expressions.
func (a *Analyzer) Evaluate(expr string) (Outcome, Distribution, error) {
	d, err := Parse(expr)
	if err != nil {
		return Outcome{}, Distribution{}, err
	}
	outcome, err := d.Sample(a.src)
	if err != nil {
		return Outcome{}, Distribution{}, err
	}
	a.logger.Debug("dice roll",
		zap.String("expression", expr),
		zap.String("outcome", outcome.String()),
		zap.Float64("weight", d.Weight(outcome)),
		zap.Float64("total_weight", d.TotalWeight()),
	)
	return outcome, d, nil
}
