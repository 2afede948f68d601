package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	if req.Title == nil {
		respondWithError(w, http.StatusBadRequest, "Need title")
		return
	}

	recipe, err := s.recipes.Create(r.Context(), userID, req.patch())
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, M{"id": recipe.ID, "title": recipe.Title, "rate": recipe.Rate})
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	recipes, err := s.recipes.List(r.Context(), userID, parseListQuery(r))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	out := make([]recipeSummary, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, newRecipeSummary(recipe))
	}
	respondWithJSON(w, http.StatusOK, M{"recipes": out})
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	id, err := recipeIDParam(ps)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	recipe, err := s.recipes.Get(r.Context(), userID, id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newRecipeResponse(recipe))
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	id, err := recipeIDParam(ps)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	recipe, err := s.recipes.Update(r.Context(), userID, id, req.patch())
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, M{
		"id":     recipe.ID,
		"title":  recipe.Title,
		"rate":   recipe.Rate,
		"status": recipe.Status,
	})
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	id, err := recipeIDParam(ps)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	if err := s.recipes.Delete(r.Context(), userID, id); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, M{"success": true, "message": "Recipe deleted"})
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	id, err := recipeIDParam(ps)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	recipe, err := s.recipes.AddNote(r.Context(), userID, id, req.Text)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newRecipeResponse(recipe))
}

func (s *Server) verifyRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	id, err := recipeIDParam(ps)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	verified, err := s.recipes.Verify(r.Context(), userID, id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	s.metrics.RecipeVerified()

	respondWithJSON(w, http.StatusCreated, newRecipeResponse(verified))
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	counts, err := s.recipes.Tags(r.Context(), userID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	out := make([]tagResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, tagResponse{Name: string(c.Name), Count: c.Count})
	}
	respondWithJSON(w, http.StatusOK, M{"tags": out})
}

func (s *Server) shoppingList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	ids, err := parseRecipeIDs(r.URL.Query().Get("recipe_ids"))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	meals, err := s.recipes.ShoppingList(r.Context(), userID, ids)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	if meals == nil {
		meals = []models.Ingredient{}
	}
	s.metrics.ShoppingListBuilt(len(meals))

	respondWithJSON(w, http.StatusOK, M{"meals": meals})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := callerID(r)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	exp, err := s.archive.Export(r.Context(), userID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, M{"key": exp.Key, "url": exp.URL})
}
