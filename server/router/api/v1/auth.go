package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/nutribot/server/auth"
	apierrors "github.com/hrygo/nutribot/server/internal/errors"
	"github.com/hrygo/nutribot/store"
)

// profileFields are the optional body metrics accepted on register and profile update.
type profileFields struct {
	Age           *int32   `json:"age"`
	Height        *float64 `json:"height"`
	Weight        *float64 `json:"weight"`
	Gender        *string  `json:"gender"`
	Goal          *string  `json:"goal"`
	ActivityLevel *string  `json:"activity_level"`
}

func (p *profileFields) validate() error {
	if (p.Age != nil && *p.Age < 0) || (p.Height != nil && *p.Height < 0) || (p.Weight != nil && *p.Weight < 0) {
		return apierrors.InvalidArgument("age, height and weight must not be negative")
	}
	return nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	profileFields
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userView struct {
	ID            int32   `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Age           int32   `json:"age,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	Gender        string  `json:"gender,omitempty"`
	Goal          string  `json:"goal,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type userResponse struct {
	Message string    `json:"message"`
	User    *userView `json:"user"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	User        *userView `json:"user"`
}

func convertUser(u *store.User) *userView {
	return &userView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Age:           u.Age,
		Height:        u.Height,
		Weight:        u.Weight,
		Gender:        u.Gender,
		Goal:          u.Goal,
		ActivityLevel: u.ActivityLevel,
		CreatedAt:     time.Unix(u.CreatedTs, 0).UTC().Format(time.RFC3339),
	}
}

// Register creates an account.
// POST /api/auth/register
func (s *APIV1Service) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return writeError(c, apierrors.InvalidArgument("username, email and password are required"))
	}
	if !strings.Contains(req.Email, "@") {
		return writeError(c, apierrors.InvalidArgument("invalid email"))
	}
	if err := req.profileFields.validate(); err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	if existing, err := s.Store.GetUser(ctx, &store.FindUser{Username: &req.Username}); err != nil {
		return writeError(c, apierrors.Internal("failed to look up user", err))
	} else if existing != nil {
		return writeError(c, apierrors.Conflict("username already exists"))
	}
	if existing, err := s.Store.GetUser(ctx, &store.FindUser{Email: &req.Email}); err != nil {
		return writeError(c, apierrors.Internal("failed to look up user", err))
	} else if existing != nil {
		return writeError(c, apierrors.Conflict("email already exists"))
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return writeError(c, apierrors.InvalidArgument(err.Error()))
	} else if err != nil {
		return writeError(c, apierrors.Internal("failed to hash password", err))
	}

	now := s.now().Unix()
	create := &store.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedTs:    now,
		UpdatedTs:    now,
	}
	applyProfileFields(create, &req.profileFields)
	user, err := s.Store.CreateUser(ctx, create)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to create user", err))
	}
	return c.JSON(http.StatusCreated, userResponse{Message: "User created successfully", User: convertUser(user)})
}

func applyProfileFields(u *store.User, p *profileFields) {
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Height != nil {
		u.Height = *p.Height
	}
	if p.Weight != nil {
		u.Weight = *p.Weight
	}
	if p.Gender != nil {
		u.Gender = strings.TrimSpace(*p.Gender)
	}
	if p.Goal != nil {
		u.Goal = strings.TrimSpace(*p.Goal)
	}
	if p.ActivityLevel != nil {
		u.ActivityLevel = strings.TrimSpace(*p.ActivityLevel)
	}
}

// Login exchanges a username and password for an access token.
// POST /api/auth/login
func (s *APIV1Service) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return writeError(c, apierrors.InvalidArgument("username and password are required"))
	}

	user, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{Username: &username})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to look up user", err))
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return writeError(c, apierrors.Unauthorized("invalid username or password"))
	}

	token, err := auth.GenerateAccessToken(user.ID, user.Username, s.now(), []byte(s.Profile.JWTSecret))
	if err != nil {
		return writeError(c, apierrors.Internal("failed to issue access token", err))
	}
	return c.JSON(http.StatusOK, loginResponse{AccessToken: token, User: convertUser(user)})
}

// GetCurrentUser returns the caller's profile.
// GET /api/auth/me
func (s *APIV1Service) GetCurrentUser(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertUser(user))
}

// UpdateProfile changes the caller's email and body metrics.
// PUT /api/auth/profile
func (s *APIV1Service) UpdateProfile(c echo.Context) error {
	var req struct {
		Email *string `json:"email"`
		profileFields
	}
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := req.profileFields.validate(); err != nil {
		return writeError(c, err)
	}
	user, err := s.currentUser(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	update := &store.UpdateUser{ID: user.ID}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !strings.Contains(email, "@") {
			return writeError(c, apierrors.InvalidArgument("invalid email"))
		}
		if email != user.Email {
			existing, err := s.Store.GetUser(ctx, &store.FindUser{Email: &email})
			if err != nil {
				return writeError(c, apierrors.Internal("failed to look up user", err))
			}
			if existing != nil {
				return writeError(c, apierrors.Conflict("email already exists"))
			}
			update.Email = &email
		}
	}
	update.Age = req.Age
	update.Height = req.Height
	update.Weight = req.Weight
	update.Gender = trimmed(req.Gender)
	update.Goal = trimmed(req.Goal)
	update.ActivityLevel = trimmed(req.ActivityLevel)
	updatedTs := s.now().Unix()
	update.UpdatedTs = &updatedTs

	updated, err := s.Store.UpdateUser(ctx, update)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to update profile", err))
	}
	return c.JSON(http.StatusOK, userResponse{Message: "Profile updated successfully", User: convertUser(updated)})
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (s *APIV1Service) currentUser(c echo.Context) (*store.User, error) {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, apierrors.Unauthorized("authentication required")
	}
	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return nil, apierrors.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, apierrors.NotFound("user not found")
	}
	return user, nil
}
