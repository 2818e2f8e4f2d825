package services

import (
	"errors"
	"strings"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/repositories"
	"github.com/saristore/saristore/pkg/auth"
	"github.com/saristore/saristore/pkg/logger"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and bad
	// passwords; login never reveals which.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned on registration conflicts.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidRole is returned when a staff account is given an unknown role.
	ErrInvalidRole = errors.New("invalid role")
)

// RegisterInput creates a store together with its first admin account.
type RegisterInput struct {
	StoreName     string
	StoreAddress  string
	Username      string
	Password      string
	FirstName     string
	LastName      string
	Email         string
	ContactNumber string
}

// StaffInput adds an account to an existing store.
type StaffInput struct {
	Username      string
	Password      string
	Role          string
	FirstName     string
	LastName      string
	Email         string
	ContactNumber string
}

// AuthResult is a signed token plus the account it belongs to.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// AuthService handles registration, login and profile management.
type AuthService struct {
	db    *gorm.DB
	users *repositories.UserRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db, users: repositories.NewUserRepository(db)}
}

// Register creates a store and its owner in one transaction. The owner is
// always an Admin; staff accounts come later via AddStaff.
func (s *AuthService) Register(in RegisterInput) (AuthResult, error) {
	if _, err := s.users.FindByUsername(strings.TrimSpace(in.Username)); err == nil {
		return AuthResult{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResult{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	var user models.User

	err = s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		stores := repositories.NewStoreRepository(tx)
		users := repositories.NewUserRepository(tx)

		store := models.Store{
			StoreName:    strings.TrimSpace(in.StoreName),
			StoreAddress: strings.TrimSpace(in.StoreAddress),
		}
		// Store codes are global, not per store; numbered by row count.
		var n int64
		if err := tx.Model(&models.Store{}).Count(&n).Error; err != nil {
			return err
		}
		code, err := formatCode(Sequence{Prefix: "ST", Width: 3}, int(n)+1)
		if err != nil {
			return err
		}
		store.StoreCode = code
		if err := stores.Create(&store); err != nil {
			return err
		}

		user = models.User{
			Username:      strings.TrimSpace(in.Username),
			PasswordHash:  hash,
			Role:          models.RoleAdmin,
			FirstName:     strings.TrimSpace(in.FirstName),
			LastName:      strings.TrimSpace(in.LastName),
			Email:         strings.TrimSpace(in.Email),
			ContactNumber: strings.TrimSpace(in.ContactNumber),
			StoreID:       store.ID,
		}
		_, err = gen.InsertWithRetry(SeqUser, store.ID, func(code string) error {
			user.UserCode = code
			user.ID = 0
			return users.Create(&user)
		})
		return err
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := auth.GenerateToken(user.ID, user.StoreID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}

	logger.Info("store registered", "store_id", user.StoreID, "user", user.Username)
	return AuthResult{Token: token, User: user}, nil
}

// AddStaff creates an extra account in the caller's store.
func (s *AuthService) AddStaff(storeID uint, in StaffInput) (models.User, error) {
	if in.Role != models.RoleAdmin && in.Role != models.RoleCashier {
		return models.User{}, ErrInvalidRole
	}

	if _, err := s.users.FindByUsername(strings.TrimSpace(in.Username)); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		users := repositories.NewUserRepository(tx)

		user = models.User{
			Username:      strings.TrimSpace(in.Username),
			PasswordHash:  hash,
			Role:          in.Role,
			FirstName:     strings.TrimSpace(in.FirstName),
			LastName:      strings.TrimSpace(in.LastName),
			Email:         strings.TrimSpace(in.Email),
			ContactNumber: strings.TrimSpace(in.ContactNumber),
			StoreID:       storeID,
		}
		_, err := gen.InsertWithRetry(SeqUser, storeID, func(code string) error {
			user.UserCode = code
			user.ID = 0
			return users.Create(&user)
		})
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login verifies credentials and issues a token bound to the user's store.
func (s *AuthService) Login(username, password string) (AuthResult, error) {
	user, err := s.users.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.StoreID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Staff lists every account of the store, admins and cashiers alike.
func (s *AuthService) Staff(storeID uint) ([]models.User, error) {
	return s.users.ForStore(storeID)
}

// Me returns the account behind a token's user ID.
func (s *AuthService) Me(userID uint) (models.User, error) {
	return s.users.FindByID(userID)
}

// Profile is the account together with its store, for the settings screen.
type Profile struct {
	User  models.User  `json:"user"`
	Store models.Store `json:"store"`
}

// Profile returns the caller's account joined with their store.
func (s *AuthService) Profile(userID uint) (Profile, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return Profile{}, err
	}
	store, err := repositories.NewStoreRepository(s.db).FindByID(user.StoreID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: user, Store: store}, nil
}

// ProfileInput carries the self-editable account fields.
type ProfileInput struct {
	FirstName     string
	LastName      string
	Email         string
	ContactNumber string
}

// UpdateProfile edits the caller's own account details.
func (s *AuthService) UpdateProfile(userID uint, in ProfileInput) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return models.User{}, err
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = strings.TrimSpace(in.Email)
	user.ContactNumber = strings.TrimSpace(in.ContactNumber)

	if err := s.users.Update(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(userID uint, current, next string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return s.users.Update(&user)
}
