package std

import (
	"context"

	"github.com/ilkoid/poncho-cookbook/pkg/tools"
)

// CityArgs — аргументы городских инструментов.
type CityArgs struct {
	City string `json:"city"`
}

// Ответы статические: инструменты показывают несколько tool calls в одном ответе.
func newWeatherTool() (tools.Tool, error) {
	return tools.NewTyped(tools.ToolDefinition{
		Name:        string(KindWeather),
		Description: "Get the weather information for a specific city",
		Parameters: tools.ObjectSchema(map[string]tools.Property{
			"city": tools.String("The name of the city to get the weather information for"),
		}, "city"),
	}, func(ctx context.Context, args CityArgs) (string, error) {
		return "The weather in " + args.City + " is 75 degrees Fahrenheit. It is sunny with a light breeze.", nil
	})
}

func newFavouriteFoodTool() (tools.Tool, error) {
	return tools.NewTyped(tools.ToolDefinition{
		Name:        string(KindFavouriteFood),
		Description: "Get the favourite food information for a specific city",
		Parameters: tools.ObjectSchema(map[string]tools.Property{
			"city": tools.String("The name of the city to get the favourite food information for"),
		}, "city"),
	}, func(ctx context.Context, args CityArgs) (string, error) {
		return "The favourite food in " + args.City + " is pizza.", nil
	})
}
