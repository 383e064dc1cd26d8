package me

import (
	"net/http"

	"hatesaway-server/identity"
	"hatesaway-server/middleware"

	"github.com/go-chi/render"
)

type Response struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// HandleMe reports the caller's anonymous identity
func HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		render.JSON(w, r, Response{
			UserID:      userID,
			DisplayName: identity.DisplayName(userID),
		})
	}
}
