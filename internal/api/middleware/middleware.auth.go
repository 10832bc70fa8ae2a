package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	authmodels "meta_cmdb/internal/api/auth/models"
	authsvc "meta_cmdb/internal/api/auth/service"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/logger"
	"meta_cmdb/internal/utility"
)

// AuthManager resolves tokens to users and caches group permissions,
// shared by every AuthMiddleware instance.
type AuthManager struct {
	Users  *authsvc.UsersManager
	Groups *authsvc.GroupsManager
	Cache  *utility.Cache
}

var (
	authManagerInstance *AuthManager
	authManagerOnce     sync.Once
)

// GetAuthManager returns the singleton AuthManager.
func GetAuthManager() *AuthManager {
	authManagerOnce.Do(func() {
		var err error
		authManagerInstance, err = newAuthManager()
		if err != nil {
			panic(err)
		}
	})
	return authManagerInstance
}

func newAuthManager() (*AuthManager, error) {
	groups, err := authsvc.NewGroupsManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create groups manager: %w", err)
	}
	users, err := authsvc.NewUsersManager(groups)
	if err != nil {
		return nil, fmt.Errorf("failed to create users manager: %w", err)
	}

	return &AuthManager{
		Users:  users,
		Groups: groups,
		Cache:  utility.NewCache(5*time.Minute, 10*time.Minute),
	}, nil
}

// getGroup loads a group from cache or database. Permission edits take
// up to the cache TTL to become visible.
func (am *AuthManager) getGroup(ctx context.Context, groupID int64) (*authmodels.Group, error) {
	cacheKey := fmt.Sprintf("group:%d", groupID)
	if cached, found := am.Cache.Get(cacheKey); found {
		return cached.(*authmodels.Group), nil
	}

	group, err := am.Groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	am.Cache.Set(cacheKey, group)
	return group, nil
}

// AuthMiddleware authenticates the bearer token and, when
// requirePermission is non-empty, checks the caller's group holds that
// permission. On success it stores user_id, group_id, user and
// permission_name in the request locals.
func AuthMiddleware(requirePermission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		authManager := GetAuthManager()

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}
		token := parts[1]

		// Signature and expiry first, then the database lookup so a
		// logout (token removed from the user) revokes the session.
		claims, err := authsvc.ParseToken(global.MongoDB_ServerConfig.JwtSecret, token)
		if err != nil {
			HandleErrorResponse(c, err)
			return nil
		}

		user, err := authManager.Users.FindByToken(context.Background(), token)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":    c.Path(),
				"user_id": claims.UserID,
			}).Warn("token not found on any user, treating as revoked")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		if !user.Active {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthCredentials,
				"account is deactivated",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		c.Locals("user_id", user.PublicID)
		c.Locals("group_id", user.GroupID)
		c.Locals("user", *user)

		// Routes like /auth/me only need a valid session.
		if requirePermission == "" {
			return c.Next()
		}

		group, err := authManager.getGroup(context.Background(), user.GroupID)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"user_id":  user.PublicID,
				"group_id": user.GroupID,
				"path":     c.Path(),
				"error":    err.Error(),
			}).Error("failed to load caller group")
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthPermission,
				"could not resolve group permissions",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		if !group.HasPermission(requirePermission) {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"user_id":             user.PublicID,
				"group_id":            user.GroupID,
				"required_permission": requirePermission,
				"path":                c.Path(),
			}).Warn("permission denied")
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthPermission,
				"missing permission: "+requirePermission,
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		c.Locals("permission_name", requirePermission)
		return c.Next()
	}
}
