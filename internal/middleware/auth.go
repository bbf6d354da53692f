package middleware

import (
	stdErrors "errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/models"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

const (
	CtxClaimsKey      = "authClaims"
	CtxAccountIDKey   = "accountID"
	CtxAccountTypeKey = "accountType"
	CtxRoleKey        = "role"
)

// Auth enforces JWT authentication using the supplied JWT service. The
// account's ban state is re-checked on every request so a ban takes effect
// immediately, not at token expiry.
func Auth(jwt *iauth.JWTService, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if err := checkAccountStanding(c, db, claims); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxAccountIDKey, claims.UserID)
		c.Set(CtxAccountTypeKey, claims.AccountType)
		if claims.Role != "" {
			c.Set(CtxRoleKey, claims.Role)
		}

		c.Next()
	}
}

// checkAccountStanding rejects tokens whose account no longer exists or has
// been banned since the token was issued.
func checkAccountStanding(c *gin.Context, db *gorm.DB, claims *iauth.Claims) error {
	if db == nil {
		return nil
	}

	var standing struct {
		IsBanned bool
	}

	query := db.WithContext(c.Request.Context())
	if claims.AccountType == iauth.AccountVendor {
		query = query.Model(&models.Vendor{})
	} else {
		query = query.Model(&models.User{})
	}

	if err := query.Select("is_banned").Where("id = ?", claims.UserID).Take(&standing).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUnauthorized
		}
		return errors.ErrInternalServer.WithInternal(err)
	}

	if standing.IsBanned {
		return errors.ErrAccountBanned
	}
	return nil
}

// RequireUser restricts the route to user accounts.
func RequireUser() gin.HandlerFunc {
	return requireAccountType(iauth.AccountUser)
}

// RequireVendor restricts the route to vendor accounts.
func RequireVendor() gin.HandlerFunc {
	return requireAccountType(iauth.AccountVendor)
}

// RequireActiveSubscription gates vendor management routes behind the
// vendor's subscription: status must be active and the expiry, when set, in
// the future. Runs after Auth and RequireVendor so the vendor id is trusted.
func RequireActiveSubscription(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vendor models.Vendor
		err := db.WithContext(c.Request.Context()).
			Select("subscription_status", "subscription_until").
			Where("id = ?", c.GetString(CtxAccountIDKey)).
			Take(&vendor).Error
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				response.Error(c, errors.ErrUnauthorized)
			} else {
				response.Error(c, errors.ErrInternalServer.WithInternal(err))
			}
			c.Abort()
			return
		}

		active := vendor.SubscriptionStatus == models.SubscriptionActive &&
			(vendor.SubscriptionUntil == nil || vendor.SubscriptionUntil.After(time.Now()))
		if !active {
			response.Error(c, errors.ErrSubscriptionRequired)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin restricts the route to user accounts carrying the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxAccountTypeKey) != iauth.AccountUser || c.GetString(CtxRoleKey) != models.RoleAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAccountType(accountType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxAccountTypeKey) != accountType {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
