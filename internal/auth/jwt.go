package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSecret     = errors.New("api secret is not configured")
	ErrEmptyDevice  = errors.New("device name is empty")
)

const (
	// Время жизни токена - 7 дней, планшет на кухне не должен логиниться каждый час
	TokenExpirationMinutes = 7 * 24 * 60
)

type contextKey string

const deviceKey contextKey = "device"

type Claims struct {
	Device string `json:"device"`
	jwt.StandardClaims
}

// Authenticator подписывает и проверяет токены устройств.
// С пустым секретом Enabled() == false и Middleware пропускает все запросы.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

func (a *Authenticator) GenerateToken(device string) (string, error) {
	if !a.Enabled() {
		return "", ErrNoSecret
	}
	device = strings.TrimSpace(device)
	if device == "" {
		return "", ErrEmptyDevice
	}

	now := a.now()
	claims := &Claims{
		Device: device,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(GetTokenExpiration()) * time.Minute).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// ValidateToken проверяет и извлекает данные из JWT токена
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	if !a.Enabled() {
		return nil, ErrNoSecret
	}
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return a.secret, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("недействительный токен")
	}

	return claims, nil
}

func GetTokenExpiration() int {
	return TokenExpirationMinutes
}

// Middleware пропускает запрос только с валидным "Bearer {token}".
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := ExtractTokenFromRequest(r)
		if tokenString == "" {
			writeError(w, "Unauthorized: no token provided")
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			message := "Unauthorized: invalid token"
			if errors.Is(err, ErrExpiredToken) {
				message = "Unauthorized: token has expired"
			}
			writeError(w, message)
			return
		}

		ctx := context.WithValue(r.Context(), deviceKey, claims.Device)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceFromContext возвращает имя устройства, записанное Middleware.
func DeviceFromContext(ctx context.Context) (string, bool) {
	device, ok := ctx.Value(deviceKey).(string)
	return device, ok
}

func ExtractTokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

func writeError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, message)
}
