package types

// TimeUnit defines the units for configured delays.
type TimeUnit string

const (
	TimeUnitMilliseconds TimeUnit = "milliseconds"
	TimeUnitSeconds      TimeUnit = "seconds"
	TimeUnitMinutes      TimeUnit = "minutes"
)
