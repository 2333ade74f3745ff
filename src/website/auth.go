package website

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vanguardtable/vanguard/src/auth"
	"github.com/vanguardtable/vanguard/src/db"
	"github.com/vanguardtable/vanguard/src/models"
	"github.com/vanguardtable/vanguard/src/oops"
)

type userData struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func userToData(user *models.User) userData {
	return userData{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// Good enough to catch typos; real validation happens when mail bounces.
var ReEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Register(c *RequestContext) ResponseData {
	if c.CurrentUser != nil {
		return c.RejectRequest("You are already logged in.")
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if !ReEmail.MatchString(email) {
		return c.RejectRequest("Invalid email address")
	}
	if len(body.Password) < 8 {
		return c.RejectRequest("Password too short")
	}

	alreadyExists, err := db.QueryOneScalar[bool](c, c.Conn,
		`SELECT COUNT(*) > 0 FROM users WHERE email = $1`,
		email,
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to check for existing email"))
	}
	if alreadyExists {
		return c.RejectRequest("An account with this email already exists")
	}

	hashed := auth.HashPassword(body.Password)
	user, err := db.QueryOne[models.User](c, c.Conn,
		`
		INSERT INTO users (id, email, password)
		VALUES ($1, $2, $3)
		RETURNING *
		`,
		uuid.New(), email, hashed.String(),
	)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create user"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	err = loginUser(c, user, &res)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	res.WriteJson(userToData(user))
	return res
}

func Login(c *RequestContext) ResponseData {
	if c.CurrentUser != nil {
		return c.RejectRequest("You are already logged in.")
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}

	loginFailure := func() ResponseData {
		return c.ErrorResponse(http.StatusUnauthorized, NewSafeError(nil, "Incorrect email or password"))
	}

	user, err := db.QueryOne[models.User](c, c.Conn,
		`SELECT * FROM users WHERE email = LOWER($1)`,
		strings.TrimSpace(body.Email),
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return loginFailure()
		} else {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to look up user by email"))
		}
	}

	success, err := tryLogin(c, user, body.Password)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if !success {
		return loginFailure()
	}

	var res ResponseData
	err = loginUser(c, user, &res)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	res.WriteJson(userToData(user))
	return res
}

func Logout(c *RequestContext) ResponseData {
	var res ResponseData
	logoutUser(c, &res)
	res.WriteJson(struct {
		LoggedOut bool `json:"logged_out"`
	}{true})
	return res
}

func CurrentUserInfo(c *RequestContext) ResponseData {
	var res ResponseData
	res.WriteJson(userToData(c.CurrentUser))
	return res
}

func tryLogin(c *RequestContext, user *models.User, password string) (bool, error) {
	hashed, err := auth.ParsePasswordString(user.Password)
	if err != nil {
		return false, oops.New(err, "failed to parse password string")
	}

	passwordsMatch, err := auth.CheckPassword(password, hashed)
	if err != nil {
		return false, oops.New(err, "failed to check password")
	}

	return passwordsMatch, nil
}

func loginUser(c *RequestContext, user *models.User, res *ResponseData) error {
	session, err := auth.CreateSession(c, c.Conn, user.ID)
	if err != nil {
		return oops.New(err, "failed to create session")
	}

	res.SetCookie(auth.NewSessionCookie(session))
	return nil
}

func logoutUser(c *RequestContext, res *ResponseData) {
	sessionCookie, err := c.Req.Cookie(auth.SessionCookieName)
	if err == nil {
		err := auth.DeleteSession(c, c.Conn, sessionCookie.Value)
		if err != nil {
			c.Logger.Error().Err(err).Msg("failed to delete session on logout")
		}
	}

	res.SetCookie(auth.DeleteSessionCookie)
}
