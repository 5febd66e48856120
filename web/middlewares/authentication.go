package middlewares

import (
	"net/http"
	"strings"
	"time"

	"faceclock.com/faceclock/web/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func parseJwt(tokenStr string, jwtSecret []byte) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})
	return token, err
}

// Authentication checks for a valid Bearer token
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie("faceclock.ApplicationCookie")
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = parts[1]
		}

		token, err := parseJwt(tokenStr, jwtSecret)

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok && int64(exp) < time.Now().Unix() {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("token expired"))
				return
			}

			c.Set("claims", claims)
		}

		c.Next()
	}
}

// RequireStaff aborts unless the authenticated token carries the staff
// claim. Must run after Authentication.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsStaff(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("staff access required"))
			return
		}
		c.Next()
	}
}

// EmployeeID returns the authenticated employee id, or 0 when the
// token carries none.
func EmployeeID(c *gin.Context) uint {
	raw, ok := c.Get("claims")
	if !ok {
		return 0
	}
	claims, ok := raw.(jwt.MapClaims)
	if !ok {
		return 0
	}
	if id, ok := claims["nameid"].(float64); ok {
		return uint(id)
	}
	return 0
}

func IsStaff(c *gin.Context) bool {
	raw, ok := c.Get("claims")
	if !ok {
		return false
	}
	claims, ok := raw.(jwt.MapClaims)
	if !ok {
		return false
	}
	staff, _ := claims["staff"].(bool)
	return staff
}
