package functions

import (
	"context"
	"errors"

	"github.com/mwiater/fncall/internal/logging"
	"github.com/mwiater/fncall/internal/weather"
)

// TemperatureSource looks up the current temperature in Celsius for a location.
type TemperatureSource interface {
	CurrentTemperature(ctx context.Context, location string) (float64, error)
}

// weatherHandler reports provider failures as a FetchWeatherFailed payload
// rather than an error status. A reply without a reading is an internal error.
func weatherHandler(temps TemperatureSource) Handler {
	log := logging.New("functions")
	return func(ctx context.Context, args []any) (Result, error) {
		location, ok := args[0].(string)
		if !ok {
			return Result{}, ErrInvalidWeatherArgument
		}
		temp, err := temps.CurrentTemperature(ctx, location)
		if errors.Is(err, weather.ErrNoReading) {
			return Result{}, err
		}
		if err != nil {
			log.Error("Error fetching weather data: %v", err)
			return Result{Error: FetchWeatherFailed}, nil
		}
		return Result{Temperature: &temp}, nil
	}
}
