package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/session"
)

// appJWTConfig is the default JWT auth middleware config.
var appJWTConfig = middleware.JWTConfig{
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "sessionToken",
	Claims:        new(Claims),
}

func initJWTConfig(conf *core.Config) {
	appJWTConfig.SigningKey = []byte(conf.SecretKey)
}

// Claims represents the authorization claims transmitted via a JWT.
// They carry the resolved identity plus the id of the server-side
// navigation state; selection state lives in that state, not in the token.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	NavID        string   `json:"nav_id,omitempty"`
	Role         string   `json:"role,omitempty"`
	SchoolID     string   `json:"school_id,omitempty"`
	Stages       []string `json:"stages,omitempty"`
	StudentID    string   `json:"student_id,omitempty"`
	TeacherID    string   `json:"teacher_id,omitempty"`
}

// Session rebuilds the identity part of the session from the claims.
func (c Claims) Session() session.Session {
	return session.Session{
		Role:      session.Role(c.Role),
		SchoolID:  c.SchoolID,
		Stages:    c.Stages,
		StudentID: c.StudentID,
		TeacherID: c.TeacherID,
	}
}

func GetSessionClaims(conf *core.Config, sess session.Session, navID string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	subject := sess.StudentID
	if subject == "" {
		subject = sess.TeacherID
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			Audience:  "Madrasa",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		NavID:        navID,
		Role:         string(sess.Role),
		SchoolID:     sess.SchoolID,
		Stages:       sess.Stages,
		StudentID:    sess.StudentID,
		TeacherID:    sess.TeacherID,
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

type authApi struct {
	conf     *core.Config
	resolver *session.Resolver
	navMgr   *nav.Manager
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{
		conf:     deps.Conf,
		resolver: deps.Resolver,
		navMgr:   deps.NavMgr,
		validate: deps.Validate,
	}

	// TODO: rate limit `/login`
	g.POST("/login", api.login)
	g.POST("/token-refresh", api.refreshToken, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, found, err := api.resolver.Resolve(ctx.Request().Context(), data.Code)
	if err != nil {
		return errors.Wrap(err, "resolving login code")
	}
	if !found {
		// a miss is an expected outcome; the client renders it inline
		return core.NewValidationError(nil, core.FieldError{Field: "code", Error: "unrecognized login code"})
	}

	navID := api.navMgr.Start(sess)
	token, err := GenerateToken(GetSessionClaims(api.conf, sess, navID))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Session: sess,
		Page:    nav.HomeFor(sess.Role),
	})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// the nav state must still be alive; a restarted server logs everyone out
	if _, err = api.navMgr.Get(claims.NavID); err != nil {
		return errSessionExpired
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(api.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return errRefreshExpired
	}

	newClaims := GetSessionClaims(api.conf, claims.Session(), claims.NavID, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Session: claims.Session()})
}

type (
	LoginRequest struct {
		Code string `json:"code" validate:"required,logincode"`
	}

	LoginResponse struct {
		Token   string          `json:"token"`
		Session session.Session `json:"session"`
		Page    nav.Page        `json:"page,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Code = core.CleanString(lr.Code)
	return validate.Struct(lr)
}
