package cookbook

import "github.com/dmitrijs2005/recipekeeper/internal/server/models"

func ing(name string, amount models.Amount, unit string) models.Ingredient {
	return models.Ingredient{Name: name, Amount: amount, Unit: unit}
}

func num(n int64) models.Amount { return models.NumberAmount(n) }

func text(s string) models.Amount { return models.TextAmount(s) }

func recipeWith(id int64, items ...models.Ingredient) *models.Recipe {
	return &models.Recipe{ID: id, UserID: 1, Title: "r", Rate: 5, Ingredients: items, Status: models.StatusSaved}
}

func tagged(id int64, rate int, tags ...string) *models.Recipe {
	return &models.Recipe{ID: id, UserID: 1, Title: "r", Rate: rate, Tags: models.NewTagList(tags), Status: models.StatusSaved}
}
