package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParams is wrapped by every parameter validation failure
var ErrInvalidParams = errors.New("invalid parameters")

// ZoneRange is one heart rate zone as fractions of max HR.
// Only Lower is used for classification.
type ZoneRange struct {
	Lower float64
	Upper float64
}

// ZoneTable holds the five zone ranges, z1 first.
// The zero value means "use DefaultZoneTable".
type ZoneTable [5]ZoneRange

// DefaultZoneTable returns the standard 50/60/70/80/90 %HRmax floors
func DefaultZoneTable() ZoneTable {
	return ZoneTable{
		{Lower: 0.50, Upper: 0.60},
		{Lower: 0.60, Upper: 0.70},
		{Lower: 0.70, Upper: 0.80},
		{Lower: 0.80, Upper: 0.90},
		{Lower: 0.90, Upper: 1.00},
	}
}

// NewZoneTable builds a table from five ascending floors. Each zone's upper
// bound is the next floor; z5 tops out at 1.0 (or its floor, if higher).
func NewZoneTable(floors ...float64) (ZoneTable, error) {
	var zt ZoneTable
	if len(floors) != len(zt) {
		return zt, fmt.Errorf("%w: need %d zone floors, got %d", ErrInvalidParams, len(zt), len(floors))
	}
	for i, f := range floors {
		zt[i].Lower = f
		if i+1 < len(floors) {
			zt[i].Upper = floors[i+1]
		} else {
			zt[i].Upper = max(1.0, f)
		}
	}
	if err := zt.Validate(); err != nil {
		return ZoneTable{}, err
	}
	return zt, nil
}

// Validate checks that floors are positive and strictly ascending
func (zt ZoneTable) Validate() error {
	prev := 0.0
	for i, z := range zt {
		if z.Lower <= 0 {
			return fmt.Errorf("%w: zone %d floor must be positive, got %v", ErrInvalidParams, i+1, z.Lower)
		}
		if i > 0 && z.Lower <= prev {
			return fmt.Errorf("%w: zone floors must be ascending, z%d=%v after z%d=%v", ErrInvalidParams, i+1, z.Lower, i, prev)
		}
		if z.Upper < z.Lower {
			return fmt.Errorf("%w: zone %d upper bound %v below floor %v", ErrInvalidParams, i+1, z.Upper, z.Lower)
		}
		prev = z.Lower
	}
	return nil
}

// orDefault substitutes the default table for the zero value
func (zt ZoneTable) orDefault() ZoneTable {
	if zt == (ZoneTable{}) {
		return DefaultZoneTable()
	}
	return zt
}

// TRIMPCoefficients parameterize w(i) = C1 * e^(C2 * i)
type TRIMPCoefficients struct {
	C1 float64
	C2 float64
}

// LoadParams configures workout load scoring
type LoadParams struct {
	Zones                  ZoneTable
	ZoneWeights            [5]float64
	TRIMPMale              TRIMPCoefficients
	TRIMPFemale            TRIMPCoefficients
	DefaultRPE             float64
	SportMultipliers       map[string]float64 // keyed by lower-cased workout type
	DefaultSportMultiplier float64
}

// SignalGate maps a day's value/baseline ratio to a rate modifier.
//
// For higher-is-better signals, ratio >= GoodRatio is good and
// ratio < PoorRatio is poor. With LowerIsBetter, ratio <= GoodRatio is good
// and ratio >= PoorRatio is poor. Anything else is neutral (1.0).
type SignalGate struct {
	GoodRatio     float64
	PoorRatio     float64
	GoodModifier  float64
	PoorModifier  float64
	LowerIsBetter bool
}

// DebtParams configures the recovery debt model
type DebtParams struct {
	YellowMax         float64 // debt at or below is green; also the "ready" threshold
	RedMax            float64 // debt above is red
	BaseRatePerHour   float64
	BaselineDays      int
	LearningPhaseDays int
	LearningBoost     float64
	Sleep             SignalGate
	HRV               SignalGate
	RHR               SignalGate
}

// EpocParams configures the EPOC recovery-time estimator
type EpocParams struct {
	ZoneIntensity        [5]float64
	TypeIntensity        map[string]float64
	DefaultTypeIntensity float64
	MinIntensity         float64
	MaxIntensity         float64
	A                    float64 // exponent coefficient
	FInt                 float64 // intensity scaling factor
	VO2Max               float64
	K                    float64
}

// ModifierParams configures the displayed recovery modifier
type ModifierParams struct {
	WindowEntries int

	SleepExcellentPct float64
	SleepGoodPct      float64
	SleepPoorPct      float64
	SleepExcellent    float64
	SleepGood         float64
	SleepPoor         float64

	HRVHighRatio float64
	HRVLowRatio  float64
	HRVHigh      float64
	HRVLow       float64

	RHRLowRatio  float64
	RHRHighRatio float64
	RHRLow       float64
	RHRHigh      float64

	StressWindowDays int
	StressLoadCap    float64
	StressFloor      float64
}

// Params bundles every tunable table used by the engine
type Params struct {
	Load     LoadParams
	Debt     DebtParams
	Epoc     EpocParams
	Modifier ModifierParams
}

// DefaultParams returns the reference parameter set
func DefaultParams() Params {
	return Params{
		Load:     DefaultLoadParams(),
		Debt:     DefaultDebtParams(),
		Epoc:     DefaultEpocParams(),
		Modifier: DefaultModifierParams(),
	}
}

// DefaultLoadParams returns the reference load scoring tables
func DefaultLoadParams() LoadParams {
	return LoadParams{
		Zones:       DefaultZoneTable(),
		ZoneWeights: [5]float64{1.0, 1.5, 2.5, 4.0, 7.0},
		TRIMPMale:   TRIMPCoefficients{C1: 0.64, C2: 1.92},
		TRIMPFemale: TRIMPCoefficients{C1: 0.86, C2: 1.67},
		DefaultRPE:  5,
		SportMultipliers: map[string]float64{
			"running":       1.0,
			"trail running": 1.05,
			"cycling":       0.9,
			"swimming":      0.95,
			"rowing":        0.95,
			"hiit":          1.1,
			"strength":      0.7,
			"walking":       0.5,
			"hiking":        0.6,
			"yoga":          0.4,
		},
		DefaultSportMultiplier: 0.85,
	}
}

// DefaultDebtParams returns the reference debt model constants
func DefaultDebtParams() DebtParams {
	return DebtParams{
		YellowMax:         20,
		RedMax:            80,
		BaseRatePerHour:   10,
		BaselineDays:      28,
		LearningPhaseDays: 7,
		LearningBoost:     1.15,
		Sleep:             SignalGate{GoodRatio: 1.0, PoorRatio: 0.8, GoodModifier: 1.15, PoorModifier: 0.8},
		HRV:               SignalGate{GoodRatio: 1.05, PoorRatio: 0.9, GoodModifier: 1.1, PoorModifier: 0.85},
		RHR:               SignalGate{GoodRatio: 0.97, PoorRatio: 1.05, GoodModifier: 1.05, PoorModifier: 0.85, LowerIsBetter: true},
	}
}

// DefaultEpocParams returns the reference EPOC constants
func DefaultEpocParams() EpocParams {
	return EpocParams{
		ZoneIntensity: [5]float64{0.55, 0.65, 0.75, 0.85, 0.95},
		TypeIntensity: map[string]float64{
			"running":       0.75,
			"trail running": 0.78,
			"cycling":       0.70,
			"swimming":      0.70,
			"rowing":        0.72,
			"hiit":          0.85,
			"strength":      0.60,
			"walking":       0.55,
			"hiking":        0.60,
			"yoga":          0.55,
		},
		DefaultTypeIntensity: 0.65,
		MinIntensity:         0.4,
		MaxIntensity:         1.0,
		A:                    3.5,
		FInt:                 1.0,
		VO2Max:               45,
		K:                    0.8,
	}
}

// DefaultModifierParams returns the reference modifier bands
func DefaultModifierParams() ModifierParams {
	return ModifierParams{
		WindowEntries: 7,

		SleepExcellentPct: 120,
		SleepGoodPct:      100,
		SleepPoorPct:      70,
		SleepExcellent:    1.5,
		SleepGood:         1.2,
		SleepPoor:         0.5,

		HRVHighRatio: 1.05,
		HRVLowRatio:  0.80,
		HRVHigh:      1.2,
		HRVLow:       0.2,

		RHRLowRatio:  0.95,
		RHRHighRatio: 1.05,
		RHRLow:       1.1,
		RHRHigh:      0.8,

		StressWindowDays: 3,
		StressLoadCap:    250,
		StressFloor:      0.2,
	}
}

// Validate reports the first invalid constant found
func (p Params) Validate() error {
	if err := p.Load.Validate(); err != nil {
		return err
	}
	if err := p.Debt.Validate(); err != nil {
		return err
	}
	if err := p.Epoc.Validate(); err != nil {
		return err
	}
	return p.Modifier.Validate()
}

// Validate checks the zone table, weights and multipliers
func (p LoadParams) Validate() error {
	if err := p.Zones.orDefault().Validate(); err != nil {
		return err
	}
	for i, w := range p.ZoneWeights {
		if w < 0 {
			return fmt.Errorf("%w: zone weight z%d is negative", ErrInvalidParams, i+1)
		}
		if i > 0 && w <= p.ZoneWeights[i-1] {
			return fmt.Errorf("%w: zone weights must increase with intensity (z%d=%v, z%d=%v)",
				ErrInvalidParams, i, p.ZoneWeights[i-1], i+1, w)
		}
	}
	for _, c := range []TRIMPCoefficients{p.TRIMPMale, p.TRIMPFemale} {
		if c.C1 < 0 || c.C2 < 0 {
			return fmt.Errorf("%w: TRIMP coefficients must be non-negative", ErrInvalidParams)
		}
	}
	if p.DefaultRPE < 1 || p.DefaultRPE > 10 {
		return fmt.Errorf("%w: default RPE %v outside 1-10", ErrInvalidParams, p.DefaultRPE)
	}
	if p.DefaultSportMultiplier < 0 {
		return fmt.Errorf("%w: default sport multiplier is negative", ErrInvalidParams)
	}
	for sport, m := range p.SportMultipliers {
		if m < 0 {
			return fmt.Errorf("%w: sport multiplier %q is negative", ErrInvalidParams, sport)
		}
		if sport != strings.ToLower(sport) {
			return fmt.Errorf("%w: sport multiplier key %q must be lower-case", ErrInvalidParams, sport)
		}
	}
	return nil
}

// Validate checks thresholds, rates and gates
func (p DebtParams) Validate() error {
	if p.YellowMax < 0 || p.RedMax < 0 {
		return fmt.Errorf("%w: debt thresholds must be non-negative", ErrInvalidParams)
	}
	if p.YellowMax >= p.RedMax {
		return fmt.Errorf("%w: yellow threshold %v must be below red threshold %v", ErrInvalidParams, p.YellowMax, p.RedMax)
	}
	if p.BaseRatePerHour <= 0 {
		return fmt.Errorf("%w: base recovery rate must be positive, got %v", ErrInvalidParams, p.BaseRatePerHour)
	}
	if p.BaselineDays <= 0 {
		return fmt.Errorf("%w: baseline window must be positive", ErrInvalidParams)
	}
	if p.LearningPhaseDays < 0 || p.LearningBoost <= 0 {
		return fmt.Errorf("%w: learning phase length must be non-negative and boost positive", ErrInvalidParams)
	}
	gates := map[string]SignalGate{"sleep": p.Sleep, "hrv": p.HRV, "rhr": p.RHR}
	for name, g := range gates {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("%s gate: %w", name, err)
		}
	}
	return nil
}

// Validate checks ratios and modifiers are positive and ordered
func (g SignalGate) Validate() error {
	if g.GoodRatio <= 0 || g.PoorRatio <= 0 || g.GoodModifier <= 0 || g.PoorModifier <= 0 {
		return fmt.Errorf("%w: ratios and modifiers must be positive", ErrInvalidParams)
	}
	if g.LowerIsBetter && g.GoodRatio >= g.PoorRatio {
		return fmt.Errorf("%w: good ratio %v must be below poor ratio %v", ErrInvalidParams, g.GoodRatio, g.PoorRatio)
	}
	if !g.LowerIsBetter && g.GoodRatio <= g.PoorRatio {
		return fmt.Errorf("%w: good ratio %v must be above poor ratio %v", ErrInvalidParams, g.GoodRatio, g.PoorRatio)
	}
	return nil
}

// Validate checks EPOC constants
func (p EpocParams) Validate() error {
	for i, v := range p.ZoneIntensity {
		if v <= 0 {
			return fmt.Errorf("%w: EPOC zone intensity z%d must be positive", ErrInvalidParams, i+1)
		}
	}
	if p.MinIntensity < 0 || p.MinIntensity > p.MaxIntensity {
		return fmt.Errorf("%w: EPOC intensity clamp [%v, %v] is invalid", ErrInvalidParams, p.MinIntensity, p.MaxIntensity)
	}
	if p.DefaultTypeIntensity < 0 {
		return fmt.Errorf("%w: default type intensity is negative", ErrInvalidParams)
	}
	for sport, v := range p.TypeIntensity {
		if v < 0 {
			return fmt.Errorf("%w: type intensity %q is negative", ErrInvalidParams, sport)
		}
	}
	if p.A < 0 || p.FInt < 0 || p.VO2Max < 0 || p.K < 0 {
		return fmt.Errorf("%w: EPOC constants must be non-negative", ErrInvalidParams)
	}
	return nil
}

// Validate checks modifier bands are ordered and non-negative
func (p ModifierParams) Validate() error {
	if p.WindowEntries <= 0 || p.StressWindowDays <= 0 {
		return fmt.Errorf("%w: modifier windows must be positive", ErrInvalidParams)
	}
	if !(p.SleepPoorPct < p.SleepGoodPct && p.SleepGoodPct <= p.SleepExcellentPct) {
		return fmt.Errorf("%w: sleep bands must ascend (poor < good <= excellent)", ErrInvalidParams)
	}
	if p.HRVLowRatio >= p.HRVHighRatio {
		return fmt.Errorf("%w: HRV low ratio must be below high ratio", ErrInvalidParams)
	}
	if p.RHRLowRatio >= p.RHRHighRatio {
		return fmt.Errorf("%w: RHR low ratio must be below high ratio", ErrInvalidParams)
	}
	for _, v := range []float64{p.SleepExcellent, p.SleepGood, p.SleepPoor, p.HRVHigh, p.HRVLow, p.RHRLow, p.RHRHigh} {
		if v < 0 {
			return fmt.Errorf("%w: modifier factors must be non-negative", ErrInvalidParams)
		}
	}
	if p.StressLoadCap <= 0 {
		return fmt.Errorf("%w: stress load cap must be positive", ErrInvalidParams)
	}
	if p.StressFloor < 0 || p.StressFloor > 1 {
		return fmt.Errorf("%w: stress floor must be within [0, 1]", ErrInvalidParams)
	}
	return nil
}
