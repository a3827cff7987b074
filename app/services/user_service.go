package services

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/pkg/auth"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/orm"
)

const birthDateLayout = "2006-01-02"

type AuthStatus string

const (
	AuthSuccess AuthStatus = "Success"
	AuthFailed  AuthStatus = "Failed"
)

// AuthResult is the outcome of a login attempt. User is set on success.
type AuthResult struct {
	Status AuthStatus
	User   *models.User
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Nickname             string `json:"nickname"              validate:"max=100"`
	FirstName            string `json:"firstName"             validate:"max=100"`
	LastName             string `json:"lastName"              validate:"max=100"`
	Email                string `json:"email"                 validate:"required,email,max=255"`
	Password             string `json:"password"              validate:"required,min=8,max=72,confirmed"`
	PasswordConfirmation string `json:"password_confirmation"`
	PhoneNumber          string `json:"phoneNumber"           validate:"max=30"`
	BirthDate            string `json:"birthDate"             validate:"nullable,date"`
	Country              string `json:"country"               validate:"max=100"`
	City                 string `json:"city"                  validate:"max=100"`
	PostalCode           string `json:"postalCode"            validate:"max=20"`
}

// ProfileInput updates the caller's profile. Empty fields are left as they
// are.
type ProfileInput struct {
	Nickname    string `json:"nickname"    validate:"max=100"`
	FirstName   string `json:"firstName"   validate:"max=100"`
	LastName    string `json:"lastName"    validate:"max=100"`
	Email       string `json:"email"       validate:"nullable,email,max=255"`
	Password    string `json:"password"    validate:"nullable,min=8,max=72"`
	PhoneNumber string `json:"phoneNumber" validate:"max=30"`
	BirthDate   string `json:"birthDate"   validate:"nullable,date"`
	Country     string `json:"country"     validate:"max=100"`
	City        string `json:"city"        validate:"max=100"`
	PostalCode  string `json:"postalCode"  validate:"max=20"`
}

type UserService struct {
	users *repositories.UserRepository
	emit  Emitter
}

func NewUserService() *UserService {
	return &UserService{users: repositories.NewUserRepository(), emit: defaultEmitter}
}

func (s *UserService) WithEmitter(e Emitter) *UserService {
	s.emit = e
	return s
}

// Authenticate checks credentials. Unknown emails and wrong passwords both
// yield AuthFailed; only storage faults are returned as errors.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if orm.IsNotFound(err) {
		return AuthResult{Status: AuthFailed}, nil
	}
	if err != nil {
		return AuthResult{}, fault(ctx, "user.authenticate", email, err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return AuthResult{Status: AuthFailed}, nil
	}
	if auth.NeedsRehash(user.Password) {
		s.rehash(ctx, &user, password)
	}
	return AuthResult{Status: AuthSuccess, User: &user}, nil
}

// rehash upgrades a stored hash to the configured cost. A failure only
// costs another rehash on the next login.
func (s *UserService) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		user.Password = hash
		err = s.users.Update(ctx, user)
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("services: password rehash failed", "user_id", user.ID, "error", err)
	}
}

// Register creates a customer account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fault(ctx, "user.register", email, err)
	}
	if taken {
		return nil, invalidData("The email %s is already registered.", email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fault(ctx, "user.register", email, err)
	}

	user := models.User{
		Role:        models.RoleCustomer,
		Nickname:    strings.TrimSpace(in.Nickname),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       email,
		Password:    hash,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Country:     strings.TrimSpace(in.Country),
		City:        strings.TrimSpace(in.City),
		PostalCode:  strings.TrimSpace(in.PostalCode),
	}
	if user.BirthDate, err = parseBirthDate(in.BirthDate); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return nil, fault(ctx, "user.register", email, err)
	}

	s.emit(EventUserRegistered, UserRegistered{User: user})
	return &user, nil
}

// GetProfile loads a user by id.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if orm.IsNotFound(err) {
		return nil, notFound("User not found.")
	}
	if err != nil {
		return nil, fault(ctx, "user.profile", userID, err)
	}
	return &user, nil
}

// UpdateProfile overwrites only the fields that are non-empty in in.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if orm.IsNotFound(err) {
		return nil, invalidData("User not found.")
	}
	if err != nil {
		return nil, fault(ctx, "user.update_profile", userID, err)
	}

	if email := strings.TrimSpace(in.Email); email != "" && email != user.Email {
		taken, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return nil, fault(ctx, "user.update_profile", userID, err)
		}
		if taken {
			return nil, invalidData("The email %s is already registered.", email)
		}
		user.Email = email
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, fault(ctx, "user.update_profile", userID, err)
		}
		user.Password = hash
	}
	if in.BirthDate != "" {
		if user.BirthDate, err = parseBirthDate(in.BirthDate); err != nil {
			return nil, err
		}
	}

	overwrite(&user.Nickname, in.Nickname)
	overwrite(&user.FirstName, in.FirstName)
	overwrite(&user.LastName, in.LastName)
	overwrite(&user.PhoneNumber, in.PhoneNumber)
	overwrite(&user.Country, in.Country)
	overwrite(&user.City, in.City)
	overwrite(&user.PostalCode, in.PostalCode)

	if err := s.users.Update(ctx, &user); err != nil {
		return nil, fault(ctx, "user.update_profile", userID, err)
	}
	return &user, nil
}

func overwrite(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func parseBirthDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(birthDateLayout, s)
	if err != nil {
		return nil, invalidData("Birth date must be in YYYY-MM-DD format.")
	}
	return &t, nil
}
