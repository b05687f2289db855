package services

import (
	"regexp"
	"strconv"
)

// scorePattern matches "<number>/5" anywhere in the report, inside words too.
var scorePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)/5`)

// ExtractScores returns every N/5 value in the report in order of appearance.
func ExtractScores(report string) []float64 {
	matches := scorePattern.FindAllStringSubmatch(report, -1)

	scores := make([]float64, 0, len(matches))
	for _, match := range matches {
		score, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		scores = append(scores, score)
	}

	return scores
}

// AverageScore is the mean of scores rounded to 2 decimals. ok is false when
// there was nothing to average, in which case the value is 0.0.
func AverageScore(scores []float64) (avg float64, ok bool) {
	if len(scores) == 0 {
		return 0.0, false
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}

	return roundTo(sum/float64(len(scores)), 2), true
}

// roundTo rounds the exact binary value half to even, so 2.125 becomes 2.12
// and 0.0625 becomes 0.062.
func roundTo(value float64, decimals int) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(value, 'f', decimals, 64), 64)
	if err != nil {
		return value
	}
	return rounded
}
