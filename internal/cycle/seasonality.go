package cycle

import "time"

// SeasonalityStatus is the discrete seasonality reading for a month.
type SeasonalityStatus string

const (
	SeasonalityVeryBullish SeasonalityStatus = "VERY BULLISH"
	SeasonalityBullish     SeasonalityStatus = "BULLISH"
	SeasonalityBearish     SeasonalityStatus = "BEARISH"
	SeasonalityNeutral     SeasonalityStatus = "NEUTRAL"
)

// Status cutoffs on the average monthly return, in percent.
const (
	veryBullishCutoff = 10.0
	bullishCutoff     = 3.0
	bearishCutoff     = -3.0
)

// DefaultMonthlyAvgReturns is the historical average monthly return table
// (approx. 2013-2023), in percent.
func DefaultMonthlyAvgReturns() map[time.Month]float64 {
	return map[time.Month]float64{
		time.January:   1.5,
		time.February:  12.0,
		time.March:     -5.0, // Tax season
		time.April:     15.0,
		time.May:       5.0,
		time.June:      2.0,
		time.July:      8.0,
		time.August:    -2.0,
		time.September: -6.0, // Historically worst month
		time.October:   20.0, // "Uptober"
		time.November:  45.0,
		time.December:  5.0,
	}
}

// Seasonality is the reading for a specific date's month.
type Seasonality struct {
	Month        time.Month
	AvgReturnPct float64
	Status       SeasonalityStatus
}

// IsBullish reports whether the status counts as positive seasonality for
// the medium-term score.
func (s Seasonality) IsBullish() bool {
	return s.Status == SeasonalityBullish || s.Status == SeasonalityVeryBullish
}

// SeasonalityTable maps calendar months to their historical average return.
type SeasonalityTable struct {
	monthlyAvg map[time.Month]float64
}

// NewSeasonalityTable creates a table from the given month -> avg return
// mapping. Months absent from the mapping read as 0% / NEUTRAL.
func NewSeasonalityTable(monthlyAvg map[time.Month]float64) *SeasonalityTable {
	table := make(map[time.Month]float64, len(monthlyAvg))
	for m, v := range monthlyAvg {
		table[m] = v
	}
	return &SeasonalityTable{monthlyAvg: table}
}

// Get returns the seasonality reading for the date's month.
func (t *SeasonalityTable) Get(date time.Time) Seasonality {
	month := date.Month()
	avg := t.monthlyAvg[month]

	status := SeasonalityNeutral
	switch {
	case avg > veryBullishCutoff:
		status = SeasonalityVeryBullish
	case avg > bullishCutoff:
		status = SeasonalityBullish
	case avg < bearishCutoff:
		status = SeasonalityBearish
	}

	return Seasonality{
		Month:        month,
		AvgReturnPct: avg,
		Status:       status,
	}
}
