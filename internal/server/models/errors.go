package models

import (
	"errors"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

func isIncorrectData(err error) bool {
	return errors.Is(err, common.ErrorIncorrectData)
}
