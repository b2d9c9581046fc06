package std

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-cookbook/pkg/recipes"
	"github.com/ilkoid/poncho-cookbook/pkg/tools"
)

// fakeRecipes — мок RecipeSource.
type fakeRecipes struct {
	recipe       *recipes.Recipe
	nutrients    []recipes.Nutrient
	searchErr    error
	lastQuery    string
	nutritionFor int64
}

func (f *fakeRecipes) Search(ctx context.Context, query string) (*recipes.Recipe, error) {
	f.lastQuery = query
	return f.recipe, f.searchErr
}

func (f *fakeRecipes) Nutrition(ctx context.Context, recipeID int64) ([]recipes.Nutrient, error) {
	f.nutritionFor = recipeID
	return f.nutrients, nil
}

func TestNewTool_AllKinds(t *testing.T) {
	deps := Deps{Recipes: &fakeRecipes{}}
	seen := map[string]bool{}

	for _, kind := range AllKinds() {
		tool, err := NewTool(kind, deps)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, string(kind), tool.Definition().Name)
		seen[string(kind)] = true
	}
	assert.Len(t, seen, len(AllKinds()), "kinds must be unique")

	for _, set := range [][]Kind{RecipeTools, CityTools, StepTools} {
		for _, kind := range set {
			assert.True(t, seen[string(kind)], "toolset kind %s missing from AllKinds", kind)
		}
	}
}

func TestNewTool_UnknownKind(t *testing.T) {
	_, err := NewTool(Kind("getStockPrice"), Deps{})
	assert.Error(t, err)
}

func TestNewTool_RecipeToolsNeedSource(t *testing.T) {
	for _, kind := range RecipeTools {
		_, err := NewTool(kind, Deps{})
		assert.Error(t, err, "kind %s", kind)
	}
}

func TestNewRegistry_Order(t *testing.T) {
	registry, err := NewRegistry(Deps{}, CityTools...)
	require.NoError(t, err)

	defs := registry.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "getWeather", defs[0].Name)
	assert.Equal(t, "getFavouriteFood", defs[1].Name)
}

func execute(t *testing.T, kind Kind, deps Deps, args string) (string, error) {
	t.Helper()
	tool, err := NewTool(kind, deps)
	require.NoError(t, err)
	return tool.Execute(context.Background(), args)
}

func TestFindRecipe(t *testing.T) {
	src := &fakeRecipes{recipe: &recipes.Recipe{ID: 1, Title: "White Sauce Pasta"}}
	out, err := execute(t, KindFindRecipe, Deps{Recipes: src}, `{"searchQuery": "white sauce pasta"}`)
	require.NoError(t, err)
	assert.Equal(t, "White Sauce Pasta", out)
	assert.Equal(t, "white sauce pasta", src.lastQuery)

	out, err = execute(t, KindFindRecipe, Deps{Recipes: &fakeRecipes{}}, `{"searchQuery": "unicorn"}`)
	require.NoError(t, err)
	assert.Equal(t, NoRecipeFound, out)
}

func TestFindRecipe_EmptyQueryRejected(t *testing.T) {
	_, err := execute(t, KindFindRecipe, Deps{Recipes: &fakeRecipes{}}, `{"searchQuery": ""}`)
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)
}

func TestNutritionInfo(t *testing.T) {
	src := &fakeRecipes{
		recipe: &recipes.Recipe{ID: 716429, Title: "Mutton Curry"},
		nutrients: []recipes.Nutrient{
			{Name: "Calories", Amount: 540, Unit: "kcal", PercentOfDailyNeeds: 27},
			{Name: "Fat", Amount: 30, Unit: "g", PercentOfDailyNeeds: 46},
		},
	}

	out, err := execute(t, KindNutritionInfo, Deps{Recipes: src}, `{"searchQuery": "mutton curry"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(716429), src.nutritionFor)

	var decoded struct {
		Recipe    string             `json:"recipe"`
		Nutrients []recipes.Nutrient `json:"nutrients"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Mutton Curry", decoded.Recipe)
	assert.Equal(t, src.nutrients, decoded.Nutrients)
}

func TestNutritionInfo_NotFoundPaths(t *testing.T) {
	out, err := execute(t, KindNutritionInfo, Deps{Recipes: &fakeRecipes{}}, `{"searchQuery": "unicorn"}`)
	require.NoError(t, err)
	assert.Equal(t, NoRecipeFound, out)

	src := &fakeRecipes{recipe: &recipes.Recipe{ID: 2, Title: "Water"}}
	out, err = execute(t, KindNutritionInfo, Deps{Recipes: src}, `{"searchQuery": "water"}`)
	require.NoError(t, err)
	assert.Equal(t, NoNutritionFound, out)
}

func TestNutritionInfo_SourceErrorPropagates(t *testing.T) {
	src := &fakeRecipes{searchErr: context.Canceled}
	_, err := execute(t, KindNutritionInfo, Deps{Recipes: src}, `{"searchQuery": "curry"}`)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCityTools(t *testing.T) {
	out, err := execute(t, KindWeather, Deps{}, `{"city": "Mumbai"}`)
	require.NoError(t, err)
	assert.Equal(t, "The weather in Mumbai is 75 degrees Fahrenheit. It is sunny with a light breeze.", out)

	out, err = execute(t, KindFavouriteFood, Deps{}, `{"city": "Mumbai"}`)
	require.NoError(t, err)
	assert.Equal(t, "The favourite food in Mumbai is pizza.", out)

	_, err = execute(t, KindWeather, Deps{}, `{"town": "Mumbai"}`)
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)
}

func TestStepTools(t *testing.T) {
	out, err := execute(t, KindEnter, Deps{}, `{"xpath": "//input[@name='username']", "value": "Admin123"}`)
	require.NoError(t, err)

	step, err := ParseStep(out)
	require.NoError(t, err)
	assert.Equal(t, Step{Action: "enter", XPath: "//input[@name='username']", Value: "Admin123"}, step)
	assert.Equal(t, `enter //input[@name='username'] = "Admin123"`, step.String())

	out, err = execute(t, KindClick, Deps{}, `{"xpath": "//button[text()='Sign in']"}`)
	require.NoError(t, err)
	step, err = ParseStep(out)
	require.NoError(t, err)
	assert.Equal(t, "click //button[text()='Sign in']", step.String())

	_, err = ParseStep("not json")
	assert.Error(t, err)
}
