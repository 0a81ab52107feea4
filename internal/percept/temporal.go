package percept

import (
	"math"
	"time"
)

// #region compute

// ComputeTemporal derives the clock features for one tick.
// startedAt is process start, lastEventAt the time of the most recent
// spatial observation (zero value means none yet).
func ComputeTemporal(now, startedAt, lastEventAt time.Time) TemporalFeatures {
	sinceEvent := now.Sub(startedAt).Seconds()
	if !lastEventAt.IsZero() {
		sinceEvent = now.Sub(lastEventAt).Seconds()
	}
	return TemporalFeatures{
		Phase:                     PhaseOf(now.Hour()),
		Circadian:                 Circadian(now),
		Hour:                      now.Hour(),
		DayOfWeek:                 int(now.Weekday()),
		UptimeSeconds:             now.Sub(startedAt).Seconds(),
		TimeSinceLastEventSeconds: sinceEvent,
	}
}

// #endregion compute

// #region phase-of

// PhaseOf maps an hour of day to a phase label.
func PhaseOf(hour int) Phase {
	switch {
	case hour >= 5 && hour < 7:
		return PhaseDawn
	case hour >= 7 && hour < 12:
		return PhaseMorning
	case hour >= 12 && hour < 17:
		return PhaseAfternoon
	case hour >= 17 && hour < 20:
		return PhaseEvening
	case hour >= 20 && hour < 22:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

// #endregion phase-of

// #region circadian

// Circadian returns a [0,1] rhythm value: 0 at midnight, 1 at noon.
func Circadian(now time.Time) float32 {
	secOfDay := float64(now.Hour()*3600 + now.Minute()*60 + now.Second())
	frac := secOfDay / 86400.0
	return float32(0.5 * (1.0 - math.Cos(2.0*math.Pi*frac)))
}

// #endregion circadian

// #region feature-vector

// FeatureVector encodes the temporal features as a cyclical vector of
// FusionDim harmonics over the day and week cycles.
func (t TemporalFeatures) FeatureVector() []float32 {
	dayFrac := (float64(t.Hour) + float64(t.Circadian)) / 24.0
	weekFrac := (float64(t.DayOfWeek) + dayFrac) / 7.0

	v := make([]float32, FusionDim)
	for i := 0; i < FusionDim; i++ {
		k := float64(i/2 + 1)
		scale := 1.0 / math.Sqrt(k)
		if i%2 == 0 {
			v[i] = float32(scale * math.Sin(2.0*math.Pi*dayFrac*k))
		} else {
			v[i] = float32(scale * math.Cos(2.0*math.Pi*weekFrac*k))
		}
	}
	return v
}

// #endregion feature-vector
