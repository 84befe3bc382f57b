package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	KeyUserID     = "user_id"
	KeyEmployeeID = "employee_id"
	KeyRole       = "role"
)

// AuthMiddleware validates an HMAC-signed bearer token (or the
// access_token cookie) and exposes user_id, employee_id and role.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, ErrTokenMissing.HTTPStatus, ErrTokenMissing.Code, ErrTokenMissing.Message)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			errObj := ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = ErrTokenExpired
			}
			abortWith(c, errObj.HTTPStatus, errObj.Code, errObj.Message)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, ErrInvalidToken.HTTPStatus, ErrInvalidToken.Code, "Invalid token claims")
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			abortWith(c, ErrInvalidToken.HTTPStatus, ErrInvalidToken.Code, "User ID not found in token")
			return
		}

		employeeID, ok := claimUint(claims["employee_id"])
		if !ok {
			abortWith(c, ErrInvalidToken.HTTPStatus, ErrInvalidToken.Code, "Employee ID not found in token")
			return
		}

		role, _ := claims["role"].(string)

		c.Set(KeyUserID, userID)
		c.Set(KeyEmployeeID, employeeID)
		c.Set(KeyRole, role)

		ctx := contextutil.WithActorID(c.Request.Context(), employeeID)
		reqLogger := contextutil.GetLogger(ctx, zap.L()).With(zap.Uint("employee_id", employeeID))
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// EmployeeID returns the authenticated caller's employee id.
func EmployeeID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(KeyEmployeeID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// claimUint accepts a JSON number or a numeric string.
func claimUint(v any) (uint, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 || t != float64(uint(t)) {
			return 0, false
		}
		return uint(t), true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	default:
		return 0, false
	}
}

func abortWith(c *gin.Context, status int, code, message string) {
	response.Error(c, status, code, message, nil)
	c.Abort()
}
