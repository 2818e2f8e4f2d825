// Package controllers contains the HTTP handlers. Controllers stay thin:
// bind and validate the request, call a service, map the result or error to
// a response. All business rules live in app/services.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/logger"
	"github.com/saristore/saristore/pkg/middleware"
	"github.com/saristore/saristore/pkg/response"
	"gorm.io/gorm"
)

// principal is the authenticated caller, extracted from the request context.
type principal struct {
	UserID  uint
	StoreID uint
	Role    string
}

// caller reads the principal injected by the auth middleware. The bool is
// false only when the middleware did not run, which is a routing bug.
func caller(r *http.Request) (principal, bool) {
	userID, ok1 := middleware.UserIDFromCtx(r)
	storeID, ok2 := middleware.StoreIDFromCtx(r)
	role, ok3 := middleware.RoleFromCtx(r)
	if !ok1 || !ok2 || !ok3 {
		return principal{}, false
	}
	return principal{UserID: userID, StoreID: storeID, Role: role}, true
}

// uintParam parses a numeric chi URL parameter.
func uintParam(r *http.Request, name string) (uint, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	return uint(n), err
}

// serviceError maps service sentinel errors onto stable status codes.
// Unknown errors become opaque 500s; the detail goes to the log, not the
// client.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(w)
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrCategoryExists),
		errors.Is(err, services.ErrCategoryInUse),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrOverReturn),
		errors.Is(err, services.ErrOverSettlement):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidPayment),
		errors.Is(err, services.ErrWalkInCredit),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrUnsupportedImage),
		errors.Is(err, services.ErrNothingToSettle):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrCodeSpaceExhausted):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("unhandled service error", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
