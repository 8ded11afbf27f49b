package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"
	"furniture_shop/internal/session"
	"furniture_shop/pkg/mailer"

	"gorm.io/gorm"
)

type LoginStep string

const (
	StepOTPRequired   LoginStep = "otp_required"
	StepAuthenticated LoginStep = "authenticated"
)

const (
	otpSubject  = "Your Login OTP"
	otpBodyText = "Hello, thanks for selecting our shop.\nHere is your OTP: %s\nThank you — HAPPY SHOPPINGGGG"
)

type LoginResult struct {
	Step      LoginStep    `json:"step"`
	User      *models.User `json:"user,omitempty"`
	Notice    string       `json:"message"`
	Delivered bool         `json:"otp_sent"`
}

type AuthService interface {
	Login(ctx context.Context, state *session.State, username, password, otp string) (*LoginResult, error)
	ResendOTP(ctx context.Context, state *session.State) (*LoginResult, error)
	Logout(state *session.State)
	CurrentUser(ctx context.Context, state *session.State) (*models.User, error)
}

type authService struct {
	userService UserService
	userRepo    repository.UserRepository
	sender      mailer.Sender
	newOTP      func() (string, error)
}

func NewAuthService(userService UserService, userRepo repository.UserRepository, sender mailer.Sender) AuthService {
	return &authService{
		userService: userService,
		userRepo:    userRepo,
		sender:      sender,
		newOTP:      generateOTP,
	}
}

// generateOTP returns a four digit code in 1000..9999.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

// Login runs one step of the password then OTP handshake. Without an otp it
// checks the credentials and sends a code; with one it completes the login.
func (s *authService) Login(ctx context.Context, state *session.State, username, password, otp string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	otp = strings.TrimSpace(otp)

	if otp == "" {
		return s.startLogin(ctx, state, username, password)
	}
	return s.completeLogin(ctx, state, username, password, otp)
}

func (s *authService) startLogin(ctx context.Context, state *session.State, username, password string) (*LoginResult, error) {
	user, err := s.userService.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	code, err := s.newOTP()
	if err != nil {
		return nil, err
	}
	state.BeginLogin(user.Username, code)

	result := &LoginResult{Step: StepOTPRequired}
	if user.Email == "" {
		result.Notice = "OTP has been sent to your registered email. Enter it to proceed."
		return result, nil
	}
	if err := s.deliver(ctx, user, code); err != nil {
		result.Notice = "Enter the OTP to proceed."
		return result, nil
	}
	result.Delivered = true
	result.Notice = "OTP has been sent to your registered email. Enter it to proceed."
	return result, nil
}

func (s *authService) completeLogin(ctx context.Context, state *session.State, username, password, otp string) (*LoginResult, error) {
	pendingUser, pendingOTP := state.PendingLogin()
	if pendingUser != username || pendingOTP == "" {
		return nil, ErrOTPSessionExpired
	}
	if otp != pendingOTP {
		return nil, ErrInvalidOTP
	}

	user, err := s.userService.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	state.ClearLogin()
	state.Authenticate(user.ID)
	log.Printf("User %s logged in", user.Username)
	return &LoginResult{
		Step:   StepAuthenticated,
		User:   user,
		Notice: "Logged in successfully.",
	}, nil
}

// ResendOTP replaces the pending code with a fresh one and sends it again.
func (s *authService) ResendOTP(ctx context.Context, state *session.State) (*LoginResult, error) {
	username, _ := state.PendingLogin()
	if username == "" {
		return nil, ErrNoPendingLogin
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPSessionExpired
		}
		return nil, err
	}

	code, err := s.newOTP()
	if err != nil {
		return nil, err
	}
	state.SetOTP(code)

	result := &LoginResult{Step: StepOTPRequired}
	switch {
	case user.Email == "":
		result.Notice = "Your account has no email address set. Contact support."
	case s.deliver(ctx, user, code) != nil:
		result.Notice = "Could not send OTP. Please try again."
	default:
		result.Delivered = true
		result.Notice = "A new OTP has been sent to your email."
	}
	return result, nil
}

func (s *authService) Logout(state *session.State) {
	state.ClearLogin()
	state.Logout()
}

// CurrentUser returns nil without error for anonymous sessions.
func (s *authService) CurrentUser(ctx context.Context, state *session.State) (*models.User, error) {
	if !state.IsAuthenticated() {
		return nil, nil
	}
	user, err := s.userService.GetUserByID(ctx, state.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) deliver(ctx context.Context, user *models.User, code string) error {
	err := s.sender.Send(ctx, otpSubject, fmt.Sprintf(otpBodyText, code), user.Email)
	if err != nil {
		log.Printf("Error sending OTP to user %s: %v", user.Username, err)
	}
	return err
}
