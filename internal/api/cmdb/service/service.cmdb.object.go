// Package cmdbsvc - ObjectsManager handles typed instances
// (cmdb_objects). Every mutation passes the type-active precondition
// and the type ACL before touching the store.
package cmdbsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	basesvc "meta_cmdb/internal/api/base/service"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/logger"
	"meta_cmdb/internal/mongoquery"
)

// ObjectsManager owns the object collection.
type ObjectsManager struct {
	*basesvc.BaseServiceMongoImpl[models.CmdbObject]
	types   *TypesManager
	counter *basesvc.CounterService
	logs    *LogsManager
	builder *mongoquery.BaseQueryBuilder
}

// NewObjectsManager wires the manager from the collection registry.
func NewObjectsManager(types *TypesManager, logs *LogsManager) (*ObjectsManager, error) {
	objectsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbObjects)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbObjects, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}

	return &ObjectsManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.CmdbObject](objectsCol),
		types:                types,
		counter:              basesvc.NewCounterService(countersCol),
		logs:                 logs,
		builder:              mongoquery.NewBaseQueryBuilder(global.MongoDB_ColNames.CmdbTypes, global.MongoDB_ColNames.Users),
	}, nil
}

// mutableType fetches the object's type and enforces the two write
// preconditions: the type must be active, and the ACL must grant the
// permission to the caller's group.
func (m *ObjectsManager) mutableType(ctx context.Context, typeID int64, groupID int64, permission string) (*models.CmdbType, error) {
	t, err := m.types.Get(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if err := checkMutable(t, groupID, permission); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns one object by public id after checking the view ACL of
// its type.
func (m *ObjectsManager) Get(ctx context.Context, publicID int64, groupID int64) (*models.CmdbObject, error) {
	obj, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("object %d not found", publicID), err)
	}

	t, err := m.types.Get(ctx, obj.TypeID)
	if err != nil {
		return nil, err
	}
	if err := VerifyAccess(t, groupID, models.PermissionObjectView); err != nil {
		return nil, err
	}
	return &obj, nil
}

// Create validates the type precondition, allocates a public id and
// inserts the object.
func (m *ObjectsManager) Create(ctx context.Context, input *dto.ObjectCreateInput, authorID int64, groupID int64) (*models.CmdbObject, error) {
	t, err := m.mutableType(ctx, input.TypeID, groupID, models.PermissionObjectAdd)
	if err != nil {
		return nil, err
	}

	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.CmdbObjects)
	if err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	obj := models.CmdbObject{
		PublicID:          publicID,
		TypeID:            t.PublicID,
		Active:            active,
		Version:           models.DefaultVersion,
		AuthorID:          authorID,
		CreationTime:      time.Now().UTC(),
		Fields:            input.Fields,
		MultiDataSections: normalizeMultiDataSections(input.MultiDataSections),
	}

	created, err := m.InsertOne(ctx, obj)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "object insert failed", err)
	}
	return &created, nil
}

// Update applies a partial update after the type precondition, bumping
// the version and stamping the editor.
func (m *ObjectsManager) Update(ctx context.Context, publicID int64, input *dto.ObjectUpdateInput, editorID int64, groupID int64) (*models.CmdbObject, error) {
	current, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("object %d not found", publicID), err)
	}

	if _, err := m.mutableType(ctx, current.TypeID, groupID, models.PermissionObjectEdit); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := map[string]interface{}{
		"version":        bumpVersion(current.Version),
		"editor_id":      editorID,
		"last_edit_time": now,
	}
	if input.Active != nil {
		set["active"] = *input.Active
	}
	if input.Fields != nil {
		set["fields"] = input.Fields
	}
	if input.MultiDataSections != nil {
		set["multi_data_sections"] = normalizeMultiDataSections(input.MultiDataSections)
	}

	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("object %d update failed", publicID), err)
	}
	return &updated, nil
}

// SetActive toggles the active flag through the activation permission.
func (m *ObjectsManager) SetActive(ctx context.Context, publicID int64, active bool, editorID int64, groupID int64) (*models.CmdbObject, error) {
	current, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("object %d not found", publicID), err)
	}

	if _, err := m.mutableType(ctx, current.TypeID, groupID, models.PermissionObjectActivation); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: map[string]interface{}{
		"active":         active,
		"version":        bumpVersion(current.Version),
		"editor_id":      editorID,
		"last_edit_time": now,
	}}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("object %d state change failed", publicID), err)
	}
	return &updated, nil
}

// Delete removes an object after the type precondition and writes the
// DELETE audit entry directly, since the change event carries no
// document for deletes.
func (m *ObjectsManager) Delete(ctx context.Context, publicID int64, editorID int64, groupID int64) error {
	current, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("object %d not found", publicID), err)
	}

	if _, err := m.mutableType(ctx, current.TypeID, groupID, models.PermissionObjectDelete); err != nil {
		return err
	}

	if err := m.DeleteOne(ctx, bson.M{"public_id": publicID}); err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, fmt.Sprintf("object %d delete failed", publicID), err)
	}

	if m.logs != nil {
		if err := m.logs.WriteDeleteLog(ctx, &current, editorID); err != nil {
			logger.GetAppLogger().WithError(err).Warnf("delete log for object %d failed", publicID)
		}
	}
	return nil
}

// FetchObject is the unchecked fetch used by the render engine, which
// runs after the entry object passed its own ACL check.
func (m *ObjectsManager) FetchObject(ctx context.Context, publicID int64) (*models.CmdbObject, error) {
	obj, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("object %d not found", publicID), err)
	}
	return &obj, nil
}

// Iterate runs the object listing pipeline: lookups, sort, paging and
// ACL stages.
func (m *ObjectsManager) Iterate(ctx context.Context, params mongoquery.BuilderParameters, groupID int64, permission string) (*mongoquery.IterationResult[models.CmdbObject], error) {
	return m.IterateQuery(ctx, m.builder, params, true, groupID, permission)
}

// CountByType counts objects of one type.
func (m *ObjectsManager) CountByType(ctx context.Context, typeID int64) (int64, error) {
	return m.CountDocuments(ctx, bson.M{"type_id": typeID})
}

// ReferencedBy lists objects carrying a reference onto the given
// public id in their flat field list.
func (m *ObjectsManager) ReferencedBy(ctx context.Context, publicID int64, params mongoquery.BuilderParameters, groupID int64, permission string) (*mongoquery.IterationResult[models.CmdbObject], error) {
	criteria := bson.M{"fields.value": publicID}
	if existing, ok := params.Criteria.(map[string]interface{}); ok && len(existing) > 0 {
		criteria = bson.M{"$and": bson.A{existing, criteria}}
	}
	params.Criteria = criteria
	return m.IterateQuery(ctx, m.builder, params, true, groupID, permission)
}

// normalizeMultiDataSections recomputes each section's highest_id from
// its rows. Row ids only grow; gaps from deleted rows stay.
func normalizeMultiDataSections(sections []models.MultiDataSection) []models.MultiDataSection {
	for i := range sections {
		highest := sections[i].HighestID
		for _, entry := range sections[i].Values {
			if entry.MultiDataID > highest {
				highest = entry.MultiDataID
			}
		}
		sections[i].HighestID = highest
	}
	return sections
}
