package controllers

import (
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/auth"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
	"github.com/shashiranjanraj/cafe/pkg/session"
)

type AccountController struct {
	users *services.UserService
}

func NewAccountController(users *services.UserService) *AccountController {
	return &AccountController{users: users}
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (ctl *AccountController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := ctl.users.Authenticate(c.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err, "Unable to sign you in right now.")
		return
	}
	if res.Status != services.AuthSuccess {
		c.Fail("Invalid email or password.")
		return
	}
	ctl.signIn(c, res.User, "Signed in.")
}

func (ctl *AccountController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := ctl.users.Register(c.Context(), in)
	if err != nil {
		fail(c, err, "Unable to create your account.")
		return
	}
	ctl.signIn(c, user, "Account created.")
}

// signIn issues the token pair and binds the user to the session.
func (ctl *AccountController) signIn(c *ctx.Context, user *models.User, msg string) {
	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.Log().Error("account: sign token", "user_id", user.ID, "error", err)
		c.Fail("Unable to sign you in right now.")
		return
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		c.Log().Error("account: sign refresh token", "user_id", user.ID, "error", err)
		c.Fail("Unable to sign you in right now.")
		return
	}

	sess := c.Session()
	sess.Regenerate()
	sess.Set(session.UserIDKey, user.ID)
	sess.Set(session.RoleKey, user.Role)
	if err := sess.Save(c.W); err != nil {
		c.Log().Warn("account: save session", "user_id", user.ID, "error", err)
	}

	c.Succeed(map[string]any{
		"message":      msg,
		"token":        token,
		"refreshToken": refresh,
		"user":         user,
	})
}

func (ctl *AccountController) Refresh(c *ctx.Context) {
	var in refreshInput
	if !c.BindJSON(&in) {
		return
	}
	token, _, err := auth.Refresh(in.RefreshToken)
	if err != nil {
		c.Fail("Your session has expired. Please sign in again.")
		return
	}
	c.Succeed(map[string]any{"token": token})
}

func (ctl *AccountController) Logout(c *ctx.Context) {
	sess := c.Session()
	sess.Invalidate()
	if err := sess.Save(c.W); err != nil {
		c.Log().Warn("account: clear session", "error", err)
	}
	c.Message("Signed out.")
}

func (ctl *AccountController) Profile(c *ctx.Context) {
	user, err := ctl.users.GetProfile(c.Context(), c.UserID())
	if err != nil {
		fail(c, err, "Unable to load your profile.")
		return
	}
	c.Success(user)
}

func (ctl *AccountController) UpdateProfile(c *ctx.Context) {
	var in services.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := ctl.users.UpdateProfile(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err, "Unable to update your profile.")
		return
	}
	c.Done("Profile updated.", user)
}
