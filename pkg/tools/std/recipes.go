package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/poncho-cookbook/pkg/recipes"
	"github.com/ilkoid/poncho-cookbook/pkg/tools"
	"github.com/ilkoid/poncho-cookbook/pkg/utils"
)

// Тексты результатов, когда данных нет. Уходят в модель как tool result.
const (
	NoRecipeFound    = "No recipe found."
	NoNutritionFound = "No nutritional details found."
)

// RecipeSource — то, что нужно recipe инструментам от recipe API.
//
// *recipes.Client реализует этот интерфейс.
type RecipeSource interface {
	Search(ctx context.Context, query string) (*recipes.Recipe, error)
	Nutrition(ctx context.Context, recipeID int64) ([]recipes.Nutrient, error)
}

// SearchArgs — аргументы findRecipe и getNutritionInfo.
type SearchArgs struct {
	SearchQuery string `json:"searchQuery"`
}

func searchSchema(description string) tools.JSONSchema {
	schema := tools.ObjectSchema(map[string]tools.Property{
		"searchQuery": tools.String(description),
	}, "searchQuery")
	// Пустой запрос бессмысленен для поиска
	schema["properties"].(map[string]any)["searchQuery"].(map[string]any)["minLength"] = 1
	return schema
}

func newFindRecipeTool(source RecipeSource) (tools.Tool, error) {
	if source == nil {
		return nil, fmt.Errorf("tool '%s': recipe source is required", KindFindRecipe)
	}
	return tools.NewTyped(tools.ToolDefinition{
		Name: string(KindFindRecipe),
		Description: "Search for a recipe based on the user query. Use this if the user is interested in " +
			"finding a recipe to cook.",
		Parameters: searchSchema("Optimized search query for finding a recipe"),
	}, func(ctx context.Context, args SearchArgs) (string, error) {
		recipe, err := source.Search(ctx, args.SearchQuery)
		if err != nil {
			return "", err
		}
		if recipe == nil {
			return NoRecipeFound, nil
		}
		return recipe.Title, nil
	})
}

func newNutritionTool(source RecipeSource) (tools.Tool, error) {
	if source == nil {
		return nil, fmt.Errorf("tool '%s': recipe source is required", KindNutritionInfo)
	}
	return tools.NewTyped(tools.ToolDefinition{
		Name: string(KindNutritionInfo),
		Description: "Fetch nutritional information for a specific dish. Use this if the user is asking about " +
			"the nutritional content of a dish; only the dish name should be used in the query.",
		Parameters: searchSchema("Optimized search query for finding the nutritional information of a recipe"),
	}, func(ctx context.Context, args SearchArgs) (string, error) {
		recipe, err := source.Search(ctx, args.SearchQuery)
		if err != nil {
			return "", err
		}
		if recipe == nil {
			utils.Info("No recipe found for nutritional details", "query", args.SearchQuery)
			return NoRecipeFound, nil
		}

		nutrients, err := source.Nutrition(ctx, recipe.ID)
		if err != nil {
			return "", err
		}
		if len(nutrients) == 0 {
			return NoNutritionFound, nil
		}

		out, err := json.Marshal(struct {
			Recipe    string             `json:"recipe"`
			Nutrients []recipes.Nutrient `json:"nutrients"`
		}{recipe.Title, nutrients})
		if err != nil {
			return "", fmt.Errorf("marshal nutrients: %w", err)
		}
		return string(out), nil
	})
}
