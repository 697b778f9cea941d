package handlers

import (
	"net/http"

	"github.com/glossahub/glossahub-backend/internal/services"
	"github.com/glossahub/glossahub-backend/pkg/utils"
)

// ResetAPIKey replaces the user's API token with a fresh random one. The old
// token stops working immediately. Bound POST-only.
func ResetAPIKey(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	token, err := utils.RandomString(utils.APITokenLength)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := services.DeleteToken(user.ID); err != nil {
		http.Error(w, "Failed to reset API key", http.StatusInternalServerError)
		return
	}
	if err := services.CreateToken(user.ID, token); err != nil {
		http.Error(w, "Failed to reset API key", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Redirect: redirectProfile("#api"),
	})
}
