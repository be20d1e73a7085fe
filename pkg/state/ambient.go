package state

// Weather conditions understood by the resolver
const (
	WeatherClear = "clear"
	WeatherRain  = "rain"
	WeatherStorm = "storm"
	WeatherSnow  = "snow"
	WeatherFog   = "fog"
	WeatherHeat  = "heat"
)

// Times of day
const (
	TimeDawn  = "dawn"
	TimeDay   = "day"
	TimeDusk  = "dusk"
	TimeNight = "night"
)

// Ambient carries read-only conditions supplied by external providers
type Ambient struct {
	Weather      string  `json:"weather,omitempty"`
	TimeOfDay    string  `json:"time_of_day,omitempty"`
	TemperatureC float64 `json:"temperature_c,omitempty"`
}

// TimeOfDayAt maps minutes since midnight to a time of day
func TimeOfDayAt(minutes int) string {
	h := (minutes / 60) % 24
	if h < 0 {
		h += 24
	}
	switch {
	case h >= 5 && h < 8:
		return TimeDawn
	case h >= 8 && h < 18:
		return TimeDay
	case h >= 18 && h < 21:
		return TimeDusk
	default:
		return TimeNight
	}
}
