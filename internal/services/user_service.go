package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"furniture_shop/internal/database"
	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegistrationForm is the sign-up payload.
type RegistrationForm struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Password1 string `json:"password1" form:"password1"`
	Password2 string `json:"password2" form:"password2"`
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const (
	minUsernameLength = 3
	minPasswordLength = 8
	// bcrypt rejects longer input
	maxPasswordBytes = 72
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, form RegistrationForm) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, validate: newValidator()}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	if user.Role == "" {
		user.Role = string(models.Customer)
	}
	return s.userRepo.Create(ctx, user)
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Authenticate checks a username and password. Unknown users, wrong
// passwords and deactivated accounts all yield ErrInvalidCredentials.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) Register(ctx context.Context, form RegistrationForm) (*models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)

	verr := &ValidationError{}
	if err := s.checkUsername(ctx, form.Username, verr); err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, form.Email, verr); err != nil {
		return nil, err
	}
	checkPassword(form.Password1, verr)
	if form.Password2 == "" {
		verr.Add("password2", "This field is required.")
	} else if form.Password1 != form.Password2 {
		verr.Add("password2", "Passwords do not match.")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Role:     string(models.Customer),
		IsActive: true,
	}
	if err := s.CreateUser(ctx, user, form.Password1); err != nil {
		if database.IsDuplicateKey(err) {
			verr.Add("username", "A user with that username already exists.")
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("Registered user %s (id %d)", user.Username, user.ID)
	return user, nil
}

func (s *userService) checkUsername(ctx context.Context, username string, verr *ValidationError) error {
	switch {
	case username == "":
		verr.Add("username", "This field is required.")
		return nil
	case utf8.RuneCountInString(username) < minUsernameLength:
		verr.Add("username", fmt.Sprintf("Username must be at least %d characters.", minUsernameLength))
		return nil
	case !usernamePattern.MatchString(username):
		verr.Add("username", "Username may contain only letters, digits and underscores.")
		return nil
	}

	taken, err := s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		verr.Add("username", "A user with that username already exists.")
	}
	return nil
}

func (s *userService) checkEmail(ctx context.Context, email string, verr *ValidationError) error {
	if email == "" {
		verr.Add("email", "This field is required.")
		return nil
	}
	if err := s.validate.Var(email, "email"); err != nil {
		verr.Add("email", "Enter a valid email address.")
		return nil
	}

	taken, err := s.userRepo.EmailTaken(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		verr.Add("email", "A user with that email already exists.")
	}
	return nil
}

func checkPassword(password string, verr *ValidationError) {
	if password == "" {
		verr.Add("password1", "This field is required.")
		return
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		verr.Add("password1", fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
		return
	}
	if len(password) > maxPasswordBytes {
		verr.Add("password1", fmt.Sprintf("Password must be at most %d bytes.", maxPasswordBytes))
		return
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		verr.Add("password1", "Password must contain an uppercase letter, a lowercase letter and a digit.")
	}
}
