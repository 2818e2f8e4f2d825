package controllers

import (
	"net/http"

	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/bind"
	"github.com/saristore/saristore/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register creates a store and its owner account.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StoreName     string `json:"store_name" validate:"required,min=2,max=100"`
		StoreAddress  string `json:"store_address" validate:"nullable,max=255"`
		Username      string `json:"username" validate:"required,alpha_dash,min=3,max=50"`
		Password      string `json:"password" validate:"required,min=8,max=72"`
		FirstName     string `json:"first_name" validate:"required,max=100"`
		LastName      string `json:"last_name" validate:"required,max=100"`
		Email         string `json:"email" validate:"required,email"`
		ContactNumber string `json:"contact_number" validate:"nullable,max=50"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.service.Register(services.RegisterInput{
		StoreName:     body.StoreName,
		StoreAddress:  body.StoreAddress,
		Username:      body.Username,
		Password:      body.Password,
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Email:         body.Email,
		ContactNumber: body.ContactNumber,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.Created(w, result)
}

// Login exchanges credentials for a token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.service.Login(body.Username, body.Password)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Me returns the authenticated account.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, err := c.service.Me(p.UserID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, user)
}

// Profile returns the authenticated account joined with its store.
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	profile, err := c.service.Profile(p.UserID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, profile)
}

// UpdateProfile edits the caller's own details.
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		FirstName     string `json:"first_name" validate:"required,max=100"`
		LastName      string `json:"last_name" validate:"required,max=100"`
		Email         string `json:"email" validate:"required,email"`
		ContactNumber string `json:"contact_number" validate:"nullable,max=50"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.UpdateProfile(p.UserID, services.ProfileInput{
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Email:         body.Email,
		ContactNumber: body.ContactNumber,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, user)
}

// ChangePassword rotates the caller's password.
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.ChangePassword(p.UserID, body.CurrentPassword, body.NewPassword); err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"changed": true})
}

// AddStaff lets an admin create another account in the store.
func (c *AuthController) AddStaff(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		Username      string `json:"username" validate:"required,alpha_dash,min=3,max=50"`
		Password      string `json:"password" validate:"required,min=8,max=72"`
		Role          string `json:"role" validate:"required,in=Admin,Cashier"`
		FirstName     string `json:"first_name" validate:"required,max=100"`
		LastName      string `json:"last_name" validate:"required,max=100"`
		Email         string `json:"email" validate:"required,email"`
		ContactNumber string `json:"contact_number" validate:"nullable,max=50"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.AddStaff(p.StoreID, services.StaffInput{
		Username:      body.Username,
		Password:      body.Password,
		Role:          body.Role,
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Email:         body.Email,
		ContactNumber: body.ContactNumber,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, user)
}

// Staff handles GET /api/users, the store's account list.
func (c *AuthController) Staff(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	users, err := c.service.Staff(p.StoreID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, users)
}
