package momentum

import (
	"time"

	"quantsim/internal/engine"
	"quantsim/types"
)

// Strategy signals Long for assets whose adjusted close rose over the
// lookback window and Exit for held assets that stopped rising. Assets
// without enough history yet produce no signal at all.
type Strategy struct {
	lookback int
}

func New(lookback int) *Strategy {
	return &Strategy{lookback: lookback}
}

func (s *Strategy) GenerateSignals(date time.Time, strat *engine.Strategy, hist *engine.History) (map[types.Asset]types.SignalType, error) {
	signals := make(map[types.Asset]types.SignalType)

	for _, asset := range strat.Assets() {
		// lookback returns need lookback+1 observations
		series := hist.SeriesThrough(asset, date, s.lookback+1)
		if len(series) < s.lookback+1 {
			continue
		}

		first := series[0].AdjustedClose
		last := series[len(series)-1].AdjustedClose
		if !first.IsPositive() {
			continue
		}

		switch {
		case last.GreaterThan(first):
			signals[asset] = types.SignalLong
		case strat.Position(asset) != 0:
			signals[asset] = types.SignalExit
		}
	}

	return signals, nil
}
