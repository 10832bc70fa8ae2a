package authsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	dto "meta_cmdb/internal/api/auth/dto"
	models "meta_cmdb/internal/api/auth/models"
	basesvc "meta_cmdb/internal/api/base/service"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
)

// GroupsManager owns the group collection. Deleting a group is refused
// while users are still assigned to it, and system groups cannot be
// deleted at all.
type GroupsManager struct {
	*basesvc.BaseServiceMongoImpl[models.Group]
	counter *basesvc.CounterService
	users   *mongo.Collection
}

// NewGroupsManager wires the manager from the collection registry.
func NewGroupsManager() (*GroupsManager, error) {
	groupsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Groups)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.Groups, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}
	usersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.Users, common.ErrNotFound)
	}

	return &GroupsManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Group](groupsCol),
		counter:              basesvc.NewCounterService(countersCol),
		users:                usersCol,
	}, nil
}

// Get returns one group by public id.
func (m *GroupsManager) Get(ctx context.Context, publicID int64) (*models.Group, error) {
	group, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("group %d not found", publicID), err)
	}
	return &group, nil
}

// Create allocates a public id and inserts the group.
func (m *GroupsManager) Create(ctx context.Context, input *dto.GroupCreateInput) (*models.Group, error) {
	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.Groups)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	group := models.Group{
		PublicID:    publicID,
		Name:        input.Name,
		Label:       input.Label,
		Permissions: input.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if group.Permissions == nil {
		group.Permissions = []string{}
	}

	created, err := m.InsertOne(ctx, group)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "group insert failed", err)
	}
	return &created, nil
}

// Update applies a partial update to a group.
func (m *GroupsManager) Update(ctx context.Context, publicID int64, input *dto.GroupUpdateInput) (*models.Group, error) {
	set := map[string]interface{}{
		"updated_at": time.Now().Unix(),
	}
	if input.Label != nil {
		set["label"] = *input.Label
	}
	if input.Permissions != nil {
		set["permissions"] = *input.Permissions
	}

	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("group %d update failed", publicID), err)
	}
	return &updated, nil
}

// Delete removes a group unless it is a system group or still has
// members.
func (m *GroupsManager) Delete(ctx context.Context, publicID int64) error {
	group, err := m.Get(ctx, publicID)
	if err != nil {
		return err
	}
	if group.System {
		return common.NewError(common.ErrCodeAccessDenied,
			fmt.Sprintf("group %q is a system group and cannot be deleted", group.Name),
			common.StatusForbidden, nil)
	}

	members, err := m.users.CountDocuments(ctx, bson.M{"group_id": publicID})
	if err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, "member count failed", err)
	}
	if members > 0 {
		return common.WrapManagerError(common.ErrManagerDelete,
			fmt.Sprintf("group %d still has %d members", publicID, members), nil)
	}

	if err := m.DeleteOne(ctx, bson.M{"public_id": publicID}); err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, fmt.Sprintf("group %d delete failed", publicID), err)
	}
	return nil
}
