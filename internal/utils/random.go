package utils

import (
	"fmt"
	"math/rand"
	"time"

	"wallet_vote/internal/config"
	"wallet_vote/internal/types"
)

// RandomIntInRange returns a random integer within the range [min, max]
func RandomIntInRange(min, max int) int {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return min
	}
	return rand.Intn(max-min+1) + min
}

// RandomDuration returns a random time.Duration based on the config DelayRange.
// A zero range yields zero regardless of unit.
func RandomDuration(delayRange config.DelayRange) (time.Duration, error) {
	if delayRange.Min == 0 && delayRange.Max == 0 {
		return 0, nil
	}
	randomVal := time.Duration(RandomIntInRange(delayRange.Min, delayRange.Max))
	switch delayRange.Unit {
	case types.TimeUnitMilliseconds:
		return randomVal * time.Millisecond, nil
	case types.TimeUnitSeconds:
		return randomVal * time.Second, nil
	case types.TimeUnitMinutes:
		return randomVal * time.Minute, nil
	default:
		return 0, fmt.Errorf("unknown delay unit: %s", delayRange.Unit)
	}
}
