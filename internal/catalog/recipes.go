package catalog

import (
	"strings"

	"github.com/kingrea/wasteless/internal/store"
)

const fallbackImage = "vegetable-fried-rice.jpg"

var imageByRecipe = map[string]string{
	"Garlic Soy Chicken Bowl": "garlic-soy-chicken-bowl.jpg",
	"Lemon Garlic Chicken":    "lemon-garlic-chicken.jpg",
	"Vegetable Fried Rice":    "vegetable-fried-rice.jpg",
}

// IngredientStatus reports whether one recipe ingredient is in the pantry.
type IngredientStatus struct {
	Name     string
	InPantry bool
}

// RecipeByID looks a recipe up by id.
func (p *Profile) RecipeByID(id int) (Recipe, bool) {
	for _, r := range p.Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// PantryStatus matches each recipe ingredient against inventory item names,
// ignoring case.
func PantryStatus(recipe Recipe, inventory []store.InventoryItem) []IngredientStatus {
	have := make(map[string]struct{}, len(inventory))
	for _, item := range inventory {
		have[strings.ToLower(item.Name)] = struct{}{}
	}
	out := make([]IngredientStatus, 0, len(recipe.Ingredients))
	for _, name := range recipe.Ingredients {
		_, ok := have[strings.ToLower(name)]
		out = append(out, IngredientStatus{Name: name, InPantry: ok})
	}
	return out
}

// ImageFor returns the artwork key for a recipe.
func ImageFor(recipeName string) string {
	if img, ok := imageByRecipe[recipeName]; ok {
		return img
	}
	return fallbackImage
}
