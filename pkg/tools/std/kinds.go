// Package std содержит закрытый набор инструментов демо-программ.
//
// Каждый Kind имеет свою структуру аргументов; аргументы валидируются по
// схеме и декодируются до вызова обработчика (см. tools.Typed).
package std

import (
	"fmt"

	"github.com/ilkoid/poncho-cookbook/pkg/tools"
)

// Kind — имя поддерживаемого инструмента.
type Kind string

const (
	KindFindRecipe    Kind = "findRecipe"
	KindNutritionInfo Kind = "getNutritionInfo"
	KindWeather       Kind = "getWeather"
	KindFavouriteFood Kind = "getFavouriteFood"
	KindClick         Kind = "click"
	KindEnter         Kind = "enter"
)

// Наборы инструментов для демо-программ.
var (
	RecipeTools = []Kind{KindFindRecipe, KindNutritionInfo}
	CityTools   = []Kind{KindWeather, KindFavouriteFood}
	StepTools   = []Kind{KindClick, KindEnter}
)

// AllKinds возвращает все поддерживаемые Kind.
//
// При добавлении Kind его нужно добавить сюда и в NewTool;
// TestNewTool_AllKinds ловит расхождение.
func AllKinds() []Kind {
	return []Kind{
		KindFindRecipe,
		KindNutritionInfo,
		KindWeather,
		KindFavouriteFood,
		KindClick,
		KindEnter,
	}
}

// Deps — внешние зависимости обработчиков.
type Deps struct {
	Recipes RecipeSource
}

// NewTool собирает инструмент для kind.
func NewTool(kind Kind, deps Deps) (tools.Tool, error) {
	switch kind {
	case KindFindRecipe:
		return newFindRecipeTool(deps.Recipes)
	case KindNutritionInfo:
		return newNutritionTool(deps.Recipes)
	case KindWeather:
		return newWeatherTool()
	case KindFavouriteFood:
		return newFavouriteFoodTool()
	case KindClick:
		return newClickTool()
	case KindEnter:
		return newEnterTool()
	default:
		return nil, fmt.Errorf("unsupported tool kind '%s'", kind)
	}
}

// NewRegistry регистрирует инструменты kinds в порядке перечисления.
func NewRegistry(deps Deps, kinds ...Kind) (*tools.Registry, error) {
	registry := tools.NewRegistry()
	for _, kind := range kinds {
		tool, err := NewTool(kind, deps)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
