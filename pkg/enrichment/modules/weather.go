package modules

import (
	"context"
	"fmt"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/resolver"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// WeatherData describes current conditions for the narrator
type WeatherData struct {
	Weather      string   `json:"weather"`
	TimeOfDay    string   `json:"time_of_day"`
	TemperatureC float64  `json:"temperature_c"`
	Feel         string   `json:"feel"`
	Dark         bool     `json:"dark,omitempty"`
	CheckPenalty int      `json:"check_penalty,omitempty"`
	Reasons      []string `json:"reasons,omitempty"`
}

// NewWeatherModule reports ambient conditions. It has no dependencies.
func NewWeatherModule() *enrichment.FuncModule {
	return enrichment.NewFuncModule(WeatherID, nil, func(_ context.Context, ec enrichment.EnrichedContext) (any, error) {
		return weatherData(ec.Ambient), nil
	})
}

func weatherData(amb state.Ambient) WeatherData {
	d := WeatherData{
		Weather:      amb.Weather,
		TimeOfDay:    amb.TimeOfDay,
		TemperatureC: amb.TemperatureC,
	}
	if d.Weather == "" {
		d.Weather = state.WeatherClear
	}
	if d.TimeOfDay == "" {
		d.TimeOfDay = state.TimeDay
	}
	d.Dark = d.TimeOfDay == state.TimeNight
	d.CheckPenalty, d.Reasons = resolver.AmbientModifier(amb)
	d.Feel = feel(d.Weather, amb.TemperatureC)
	return d
}

func feel(weather string, celsius float64) string {
	var temp string
	switch {
	case celsius <= 0:
		temp = "freezing"
	case celsius < 10:
		temp = "cold"
	case celsius < 20:
		temp = "mild"
	case celsius < 28:
		temp = "warm"
	default:
		temp = "hot"
	}
	switch weather {
	case state.WeatherRain:
		return fmt.Sprintf("%s and wet", temp)
	case state.WeatherStorm:
		return fmt.Sprintf("%s, stormy", temp)
	case state.WeatherSnow:
		return "snowy and " + temp
	case state.WeatherFog:
		return fmt.Sprintf("%s, low visibility", temp)
	case state.WeatherHeat:
		return "sweltering"
	}
	return temp
}
