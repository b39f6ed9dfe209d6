package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/kikiminyes/TutyJuicy/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Role: role,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, staffID, issuer, role string) {
	claims := MockValidatedClaims(staffID, issuer, role)
	c.Set("staff_id", staffID)
	c.Set("validated_claims", claims)
}

// StaffAuthMiddleware returns a middleware that injects staff claims the same
// way the real JWT middleware does, for wiring admin routes in tests
func StaffAuthMiddleware(staffID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, staffID, "https://test.tutyjuicy.dev/", "staff")
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
