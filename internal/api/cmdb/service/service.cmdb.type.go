// Package cmdbsvc - TypesManager handles the CmdbType schema lifecycle
// (cmdb_types).
package cmdbsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "meta_cmdb/internal/api/base/service"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/mongoquery"
)

// TypesManager owns the schema collection. Deleting a type is refused
// while objects of that type still exist.
type TypesManager struct {
	*basesvc.BaseServiceMongoImpl[models.CmdbType]
	counter   *basesvc.CounterService
	templates *basesvc.BaseServiceMongoImpl[models.CmdbSectionTemplate]
	objects   *mongo.Collection
	builder   *mongoquery.BaseQueryBuilder
}

// NewTypesManager wires the manager from the collection registry.
func NewTypesManager() (*TypesManager, error) {
	typesCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbTypes)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbTypes, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}
	templatesCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbSectionTemplates)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbSectionTemplates, common.ErrNotFound)
	}
	objectsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbObjects)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbObjects, common.ErrNotFound)
	}

	return &TypesManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.CmdbType](typesCol),
		counter:              basesvc.NewCounterService(countersCol),
		templates:            basesvc.NewBaseServiceMongo[models.CmdbSectionTemplate](templatesCol),
		objects:              objectsCol,
		builder:              mongoquery.NewBaseQueryBuilder(global.MongoDB_ColNames.CmdbTypes, global.MongoDB_ColNames.Users),
	}, nil
}

// Get returns one type by public id.
func (m *TypesManager) Get(ctx context.Context, publicID int64) (*models.CmdbType, error) {
	t, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("type %d not found", publicID), err)
	}
	return &t, nil
}

// FetchType adapts Get to the render engine's fetcher interface.
func (m *TypesManager) FetchType(ctx context.Context, publicID int64) (*models.CmdbType, error) {
	return m.Get(ctx, publicID)
}

// GetByName returns one type by its unique name.
func (m *TypesManager) GetByName(ctx context.Context, name string) (*models.CmdbType, error) {
	t, err := m.FindOne(ctx, bson.M{"name": name}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("type %q not found", name), err)
	}
	return &t, nil
}

// Create allocates a public id, applies global section templates and
// inserts the type.
func (m *TypesManager) Create(ctx context.Context, input *dto.TypeCreateInput, authorID int64) (*models.CmdbType, error) {
	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.CmdbTypes)
	if err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	t := models.CmdbType{
		PublicID:           publicID,
		Name:               input.Name,
		Label:              input.Label,
		Description:        input.Description,
		Active:             active,
		Version:            models.DefaultVersion,
		AuthorID:           authorID,
		CreationTime:       time.Now().UTC(),
		SelectableAsParent: input.SelectableAsParent,
		GlobalTemplateIds:  input.GlobalTemplateIds,
		Fields:             input.Fields,
		RenderMeta:         input.RenderMeta,
		ACL:                input.ACL,
	}

	if err := m.applyGlobalTemplates(ctx, &t); err != nil {
		return nil, err
	}

	created, err := m.InsertOne(ctx, t)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "type insert failed", err)
	}
	return &created, nil
}

// Update applies a partial update, bumps the version and stamps the
// editor.
func (m *TypesManager) Update(ctx context.Context, publicID int64, input *dto.TypeUpdateInput, editorID int64) (*models.CmdbType, error) {
	current, err := m.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		current.Name = input.Name
	}
	if input.Label != "" {
		current.Label = input.Label
	}
	if input.Description != "" {
		current.Description = input.Description
	}
	if input.Active != nil {
		current.Active = *input.Active
	}
	if input.SelectableAsParent != nil {
		current.SelectableAsParent = *input.SelectableAsParent
	}
	if input.GlobalTemplateIds != nil {
		current.GlobalTemplateIds = input.GlobalTemplateIds
	}
	if input.Fields != nil {
		current.Fields = input.Fields
	}
	if input.RenderMeta != nil {
		current.RenderMeta = *input.RenderMeta
	}
	if input.ACL != nil {
		current.ACL = input.ACL
	}

	if err := m.applyGlobalTemplates(ctx, current); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	current.Version = bumpVersion(current.Version)
	current.EditorID = editorID
	current.LastEditTime = &now

	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: map[string]interface{}{
		"name":                 current.Name,
		"label":                current.Label,
		"description":          current.Description,
		"active":               current.Active,
		"version":              current.Version,
		"editor_id":            current.EditorID,
		"last_edit_time":       current.LastEditTime,
		"selectable_as_parent": current.SelectableAsParent,
		"global_template_ids":  current.GlobalTemplateIds,
		"fields":               current.Fields,
		"render_meta":          current.RenderMeta,
		"acl":                  current.ACL,
	}}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("type %d update failed", publicID), err)
	}
	return &updated, nil
}

// Delete removes a type. Refused while objects of the type exist.
func (m *TypesManager) Delete(ctx context.Context, publicID int64) error {
	if _, err := m.Get(ctx, publicID); err != nil {
		return err
	}

	objectCount, err := m.objects.CountDocuments(ctx, bson.M{"type_id": publicID})
	if err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, "object count failed", err)
	}
	if objectCount > 0 {
		return common.WrapManagerError(common.ErrManagerDelete,
			fmt.Sprintf("type %d still has %d objects", publicID, objectCount), nil)
	}

	if err := m.DeleteOne(ctx, bson.M{"public_id": publicID}); err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, fmt.Sprintf("type %d delete failed", publicID), err)
	}
	return nil
}

// Iterate runs a filtered, sorted, paged listing with ACL stages when a
// permission is given.
func (m *TypesManager) Iterate(ctx context.Context, params mongoquery.BuilderParameters, groupID int64, permission string) (*mongoquery.IterationResult[models.CmdbType], error) {
	return m.IterateQuery(ctx, m.builder, params, false, groupID, permission)
}

// CountObjects returns how many objects exist for a type.
func (m *TypesManager) CountObjects(ctx context.Context, publicID int64) (int64, error) {
	count, err := m.objects.CountDocuments(ctx, bson.M{"type_id": publicID})
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// applyGlobalTemplates copies the sections of every referenced global
// template into the type. Copies, not links: later template edits do
// not touch existing types.
func (m *TypesManager) applyGlobalTemplates(ctx context.Context, t *models.CmdbType) error {
	for _, name := range t.GlobalTemplateIds {
		template, err := m.templates.FindOne(ctx, bson.M{"name": name, "is_global": true}, nil)
		if err != nil {
			return common.WrapManagerError(common.ErrManagerGet,
				fmt.Sprintf("global section template %q not found", name), err)
		}

		if hasSection(t.RenderMeta.Sections, template.Name) {
			continue
		}
		t.RenderMeta.Sections = append(t.RenderMeta.Sections, template.ToSection())
		for _, field := range template.Fields {
			if _, exists := t.GetField(field.Name); !exists {
				t.Fields = append(t.Fields, field)
			}
		}
	}
	return nil
}

func hasSection(sections []models.TypeSection, name string) bool {
	for _, section := range sections {
		if section.Name == name {
			return true
		}
	}
	return false
}
