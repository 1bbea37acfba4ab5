package util

import (
	"errors"
	"sync"
	"time"

	"taskboard/config"
	"taskboard/dao/model"
	"taskboard/logutils"

	jwt "github.com/golang-jwt/jwt/v5"
)

type TokenConf struct {
	AccessTokenExpiryHour  int
	RefreshTokenExpiryHour int
	AccessTokenSecret      string
	RefreshTokenSecret     string
}

func NewTokenConf(cfg *config.Config) *TokenConf {
	return &TokenConf{
		AccessTokenExpiryHour:  cfg.Auth.AccessTokenExpiryHour,
		RefreshTokenExpiryHour: cfg.Auth.RefreshTokenExpiryHour,
		AccessTokenSecret:      cfg.Auth.AccessTokenSecret,
		RefreshTokenSecret:     cfg.Auth.RefreshTokenSecret,
	}
}

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

type (
	JWTClaims struct {
		UserID       uint       `json:"ui"`
		Username     string     `json:"un"`
		RolePlatform model.Role `json:"rp"`
		Kind         tokenKind  `json:"tk"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		UserID       uint       `json:"userID"`       // User ID
		Username     string     `json:"username"`     // Username
		RolePlatform model.Role `json:"rolePlatform"` // Role in platform (user or operator)
	}
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("token is invalid")
)

type TokenManager struct {
	accessSecret    string
	refreshSecret   string
	accessTokenTTL  int
	refreshTokenTTL int
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

// GetTokenMgr returns the process-wide manager built from config.GetConfig.
func GetTokenMgr() *TokenManager {
	once.Do(func() {
		tokenMgr = NewTokenManager(NewTokenConf(config.GetConfig()))
	})
	return tokenMgr
}

func NewTokenManager(conf *TokenConf) *TokenManager {
	refreshSecret := conf.RefreshTokenSecret
	if refreshSecret == "" {
		refreshSecret = conf.AccessTokenSecret
	}
	return &TokenManager{
		accessSecret:    conf.AccessTokenSecret,
		refreshSecret:   refreshSecret,
		accessTokenTTL:  conf.AccessTokenExpiryHour,
		refreshTokenTTL: conf.RefreshTokenExpiryHour,
	}
}

func (tm *TokenManager) secret(kind tokenKind) []byte {
	if kind == kindRefresh {
		return []byte(tm.refreshSecret)
	}
	return []byte(tm.accessSecret)
}

func (tm *TokenManager) createToken(msg *JWTMessage, kind tokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:       msg.UserID,
		Username:     msg.Username,
		RolePlatform: msg.RolePlatform,
		Kind:         kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret(kind))
}

// CreateTokens creates a new access token and a new refresh token
func (tm *TokenManager) CreateTokens(msg *JWTMessage) (
	accessToken string, refreshToken string, err error) {
	accessToken, err = tm.createToken(msg, kindAccess, time.Hour*time.Duration(tm.accessTokenTTL))
	if err != nil {
		logutils.Log.Error(err)
		return "", "", err
	}
	refreshToken, err = tm.createToken(msg, kindRefresh, time.Hour*time.Duration(tm.refreshTokenTTL))
	if err != nil {
		logutils.Log.Error(err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// CheckToken verifies an access token. It returns ErrTokenExpired or ErrInvalidToken on failure.
func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	return tm.check(requestToken, kindAccess)
}

// CheckRefreshToken verifies a refresh token.
func (tm *TokenManager) CheckRefreshToken(requestToken string) (JWTMessage, error) {
	return tm.check(requestToken, kindRefresh)
}

func (tm *TokenManager) check(requestToken string, kind tokenKind) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return tm.secret(kind), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return JWTMessage{}, ErrTokenExpired
	case err != nil:
		return JWTMessage{}, ErrInvalidToken
	case claims.Kind != kind || claims.UserID == 0:
		return JWTMessage{}, ErrInvalidToken
	}
	return JWTMessage{
		UserID:       claims.UserID,
		Username:     claims.Username,
		RolePlatform: claims.RolePlatform,
	}, nil
}
