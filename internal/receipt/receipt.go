// Package receipt 为结算结果签发 HS256 凭证，观看端或排行榜可据此验证成绩未被篡改
package receipt

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bombsim/pkg/core"
)

// SecretEnv 签名密钥的环境变量
const SecretEnv = "BOMBSIM_SECRET"

// 开发环境默认密钥，部署时应设置 BOMBSIM_SECRET
const devSecret = "bombsim-dev-secret-change-in-production"

// ErrInvalidToken 凭证签名、签发者或有效期校验失败
var ErrInvalidToken = errors.New("invalid receipt")

// Claims 凭证内容
type Claims struct {
	Level         int     `json:"level"`
	Outcome       string  `json:"outcome"`
	Score         int     `json:"score"`
	Bonus         int     `json:"bonus"`
	Stars         int     `json:"stars"`
	TimeRemaining float64 `json:"time_remaining"`
	Lives         int     `json:"lives"`
	jwt.RegisteredClaims
}

// Signer 签发与校验凭证
type Signer struct {
	issuer string
	ttl    time.Duration
	key    []byte
	now    func() time.Time
}

// NewSigner 创建签发器，secret 为空时使用开发密钥
func NewSigner(issuer string, ttl time.Duration, secret string) *Signer {
	if secret == "" {
		secret = devSecret
	}
	return &Signer{
		issuer: issuer,
		ttl:    ttl,
		key:    []byte(secret),
		now:    time.Now,
	}
}

// SecretFromEnv 读取 BOMBSIM_SECRET
func SecretFromEnv() string {
	return os.Getenv(SecretEnv)
}

// Sign 为一次结算签发凭证，subject 一般是会话标识
func (s *Signer) Sign(r core.RoundResult, subject string) (string, error) {
	now := s.now()
	claims := Claims{
		Level:         r.Level,
		Outcome:       r.Outcome.String(),
		Score:         r.Score,
		Bonus:         r.Bonus,
		Stars:         r.Stars,
		TimeRemaining: r.TimeRemaining,
		Lives:         r.Lives,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("签发凭证失败: %w", err)
	}
	return signed, nil
}

// Verify 校验凭证并返回内容
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
