// Package scoring turns a day's metric submissions into points.
//
// Everything here is pure: no I/O, no clock, no shared state. The engine is
// lenient and never returns an error. Values or configuration it cannot
// interpret score 0. Callers that need strict checks run Validate on the
// metric definitions before storing them.
package scoring

import (
	"github.com/Miandari/dailygrit/pkg/models"
)

// Scorer awards points for one submitted value of a metric
type Scorer interface {
	Score(value interface{}) int
}

// Compile turns a stored metric definition into its scoring variant
func Compile(def models.MetricDefinition) Scorer {
	points := def.MaxPoints()

	switch def.Type {
	case models.MetricBoolean:
		return booleanMetric{points: points}
	case models.MetricNumber, models.MetricDuration:
		return numericMetric{
			points:    points,
			mode:      def.Mode(),
			threshold: def.Threshold,
			direction: def.Direction(),
			tiers:     def.Tiers,
		}
	case models.MetricChoice:
		return choiceMetric{points: points}
	case models.MetricText:
		return textMetric{points: points}
	case models.MetricFile:
		return fileMetric{points: points}
	case models.MetricCombined:
		return unscoredMetric{}
	default:
		return unscoredMetric{}
	}
}

// MetricPoints scores one value against one metric definition.
// An absent, null or empty-string value scores 0 whatever the type;
// required-ness only matters for the perfect-day flag.
func MetricPoints(def models.MetricDefinition, value interface{}) int {
	if isEmpty(value) {
		return 0
	}
	return Compile(def).Score(value)
}

type booleanMetric struct {
	points int
}

func (m booleanMetric) Score(value interface{}) int {
	if b, ok := value.(bool); ok && b {
		return m.points
	}
	return 0
}

type numericMetric struct {
	points    int
	mode      models.ScoringMode
	threshold *float64
	direction models.ThresholdType
	tiers     []models.ScoreTier
}

func (m numericMetric) Score(value interface{}) int {
	v, ok := toNumber(value)
	if !ok {
		return 0
	}
	return NumericPoints(v, m.points, m.mode, m.threshold, m.direction, m.tiers)
}

// choiceMetric awards points for any selection. Multi-select arrays count
// as soon as the key is present.
type choiceMetric struct {
	points int
}

func (m choiceMetric) Score(value interface{}) int {
	if truthy(value) {
		return m.points
	}
	return 0
}

type textMetric struct {
	points int
}

func (m textMetric) Score(value interface{}) int {
	if textLength(value) > 0 {
		return m.points
	}
	return 0
}

// fileMetric awards points for a non-empty list of uploaded file URLs
type fileMetric struct {
	points int
}

func (m fileMetric) Score(value interface{}) int {
	if n, isList := listLength(value); isList {
		if n > 0 {
			return m.points
		}
		return 0
	}
	if truthy(value) {
		return m.points
	}
	return 0
}

// unscoredMetric covers the reserved combined type and types this version does not know
type unscoredMetric struct{}

func (unscoredMetric) Score(interface{}) int {
	return 0
}
