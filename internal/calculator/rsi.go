package calculator

import "errors"

// neutralRSI is reported while the history is shorter than period+1 closes.
const neutralRSI = 50.0

// CalculateRSI returns the relative strength index of closes, ascending by
// date, using Wilder smoothing over period.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return neutralRSI, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		if i <= period {
			// seed with the plain mean of the first period moves
			avgGain += gain / float64(period)
			avgLoss += loss / float64(period)
			continue
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}
	return 100 - 100/(1+avgGain/avgLoss), nil
}

// split separates a close-to-close move into its gain and loss parts.
func split(move float64) (gain, loss float64) {
	if move > 0 {
		return move, 0
	}
	return 0, -move
}
