package ledger

import (
	"math"
	"slices"
	"time"
)

// miningDifficulty returns the integer number of leading zeros the next
// block must carry.
func (l *Ledger) miningDifficulty() uint {
	return uint(math.Floor(l.difficulty))
}

// adjustDifficulty compares the average block time over the recent window
// with the target and scales the difficulty by target/average when it falls
// outside half to one and a half times the target.
func (l *Ledger) adjustDifficulty() {
	recent := l.durations
	if len(recent) > l.adjustmentInterval {
		recent = recent[len(recent)-l.adjustmentInterval:]
	}

	if len(recent) < 2 {
		return
	}

	avg := l.ema
	if !l.emaSet {
		var sum time.Duration
		for _, d := range recent {
			sum += d
		}
		avg = sum / time.Duration(len(recent))
	}

	l.evHandler("ledger: adjustDifficulty: stats: ema[%v] min[%v] max[%v] recent[%v]", avg, slices.Min(recent), slices.Max(recent), recent)

	target := l.targetBlockTime.Seconds()
	lower := target * 0.5
	upper := target * 1.5
	avgSecs := avg.Seconds()

	switch {
	case avgSecs < lower:
		l.difficulty = l.clamp(l.difficulty * factor(target, avgSecs))
		l.evHandler("ledger: adjustDifficulty: increasing: difficulty[%.2f] ema[%v] target[%v]", l.difficulty, avg, l.targetBlockTime)

	case avgSecs > upper:
		l.difficulty = l.clamp(l.difficulty * factor(target, avgSecs))
		l.evHandler("ledger: adjustDifficulty: decreasing: difficulty[%.2f] ema[%v] target[%v]", l.difficulty, avg, l.targetBlockTime)

	default:
		l.evHandler("ledger: adjustDifficulty: unchanged: difficulty[%.2f] ema[%v] target[%v]", l.difficulty, avg, l.targetBlockTime)
	}
}

// factor returns target/avg. An average of zero gives positive infinity,
// which the caller clamps to the maximum difficulty.
func factor(target, avg float64) float64 {
	if avg <= 0 {
		return math.Inf(1)
	}
	return target / avg
}

// clamp bounds a retargeted difficulty. A product that is not a number,
// from a zero difficulty scaled by an infinite factor, goes to the maximum.
func (l *Ledger) clamp(d float64) float64 {
	switch {
	case math.IsNaN(d), d > l.maxDifficulty:
		return l.maxDifficulty
	case d < l.minDifficulty:
		return l.minDifficulty
	}
	return d
}
