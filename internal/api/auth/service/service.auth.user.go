package authsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	dto "meta_cmdb/internal/api/auth/dto"
	models "meta_cmdb/internal/api/auth/models"
	basesvc "meta_cmdb/internal/api/base/service"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/logger"
)

// UsersManager owns the user collection.
type UsersManager struct {
	*basesvc.BaseServiceMongoImpl[models.User]
	counter *basesvc.CounterService
	groups  *GroupsManager
}

// NewUsersManager wires the manager from the collection registry.
func NewUsersManager(groups *GroupsManager) (*UsersManager, error) {
	usersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.Users, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}

	return &UsersManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](usersCol),
		counter:              basesvc.NewCounterService(countersCol),
		groups:               groups,
	}, nil
}

// Get returns one user by public id.
func (m *UsersManager) Get(ctx context.Context, publicID int64) (*models.User, error) {
	user, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("user %d not found", publicID), err)
	}
	return &user, nil
}

// Create allocates a public id, hashes the password and inserts the
// user. The target group must exist.
func (m *UsersManager) Create(ctx context.Context, input *dto.UserCreateInput) (*models.User, error) {
	if _, err := m.groups.Get(ctx, input.GroupID); err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, fmt.Sprintf("group %d does not exist", input.GroupID), err)
	}

	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.Users)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "password hashing failed", err)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	now := time.Now().Unix()
	user := models.User{
		PublicID:  publicID,
		UserName:  input.UserName,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  string(hash),
		GroupID:   input.GroupID,
		Tokens:    []models.Token{},
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := m.InsertOne(ctx, user)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "user insert failed", err)
	}
	return &created, nil
}

// Update applies a partial update to a user.
func (m *UsersManager) Update(ctx context.Context, publicID int64, input *dto.UserUpdateInput) (*models.User, error) {
	set := map[string]interface{}{
		"updated_at": time.Now().Unix(),
	}
	if input.Email != nil {
		set["email"] = *input.Email
	}
	if input.FirstName != nil {
		set["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		set["last_name"] = *input.LastName
	}
	if input.GroupID != nil {
		if _, err := m.groups.Get(ctx, *input.GroupID); err != nil {
			return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("group %d does not exist", *input.GroupID), err)
		}
		set["group_id"] = *input.GroupID
	}
	if input.Active != nil {
		set["active"] = *input.Active
	}

	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("user %d update failed", publicID), err)
	}
	return &updated, nil
}

// Delete removes a user.
func (m *UsersManager) Delete(ctx context.Context, publicID int64) error {
	if err := m.DeleteOne(ctx, bson.M{"public_id": publicID}); err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, fmt.Sprintf("user %d delete failed", publicID), err)
	}
	return nil
}

// Login verifies the credentials, signs a fresh token and stores it on
// the user, per device (hwid).
func (m *UsersManager) Login(ctx context.Context, input *dto.UserLoginInput) (*models.User, string, error) {
	user, err := m.FindOne(ctx, bson.M{"user_name": input.UserName}, nil)
	if err != nil {
		// Same error as a wrong password, so login probing cannot tell
		// unknown users apart.
		return nil, "", common.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_name": input.UserName,
		}).Warn("login rejected: wrong password")
		return nil, "", common.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, "", common.NewError(common.ErrCodeAuthCredentials, "account is deactivated", common.StatusForbidden, nil)
	}

	token, err := CreateToken(global.MongoDB_ServerConfig.JwtSecret, user.PublicID, user.GroupID)
	if err != nil {
		return nil, "", err
	}

	tokens := user.Tokens
	replaced := false
	for i := range tokens {
		if tokens[i].Hwid == input.Hwid {
			tokens[i].JwtToken = token
			replaced = true
			break
		}
	}
	if !replaced {
		tokens = append(tokens, models.Token{Hwid: input.Hwid, JwtToken: token})
	}

	updated, err := m.UpdateById(ctx, user.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token":  token,
			"tokens": tokens,
		},
	})
	if err != nil {
		return nil, "", common.WrapManagerError(common.ErrManagerUpdate, "storing login token failed", err)
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"user_id":   updated.PublicID,
		"user_name": updated.UserName,
	}).Info("user logged in")
	return &updated, token, nil
}

// Logout drops the token of one device.
func (m *UsersManager) Logout(ctx context.Context, publicID int64, input *dto.UserLogoutInput) error {
	user, err := m.Get(ctx, publicID)
	if err != nil {
		return err
	}

	tokens := make([]models.Token, 0, len(user.Tokens))
	for _, t := range user.Tokens {
		if t.Hwid != input.Hwid {
			tokens = append(tokens, t)
		}
	}

	_, err = m.UpdateById(ctx, user.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token":  "",
			"tokens": tokens,
		},
	})
	if err != nil {
		return common.WrapManagerError(common.ErrManagerUpdate, "dropping login token failed", err)
	}
	return nil
}

// ChangePassword rotates a user's password after verifying the old
// one, and invalidates every existing session.
func (m *UsersManager) ChangePassword(ctx context.Context, publicID int64, input *dto.UserChangePasswordInput) error {
	user, err := m.Get(ctx, publicID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		return common.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.WrapManagerError(common.ErrManagerUpdate, "password hashing failed", err)
	}

	_, err = m.UpdateById(ctx, user.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"password":   string(hash),
			"token":      "",
			"tokens":     []models.Token{},
			"updated_at": time.Now().Unix(),
		},
	})
	if err != nil {
		return common.WrapManagerError(common.ErrManagerUpdate, "password update failed", err)
	}
	return nil
}

// FindByToken resolves a login token back to its user. Tokens live on
// the user document, so revoking is deleting them there.
func (m *UsersManager) FindByToken(ctx context.Context, token string) (*models.User, error) {
	user, err := m.FindOne(ctx, bson.M{"token": token}, nil)
	if err == nil {
		return &user, nil
	}

	user, err = m.FindOne(ctx, bson.M{"tokens.jwtToken": token}, nil)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}
	return &user, nil
}
