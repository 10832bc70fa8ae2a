// Package cmdbsvc - SectionTemplatesManager handles reusable section
// blueprints (cmdb_section_templates).
package cmdbsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	basesvc "meta_cmdb/internal/api/base/service"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
)

// SectionTemplatesManager owns the template collection. Predefined
// templates are read-only.
type SectionTemplatesManager struct {
	*basesvc.BaseServiceMongoImpl[models.CmdbSectionTemplate]
	counter *basesvc.CounterService
}

// NewSectionTemplatesManager wires the manager from the collection
// registry.
func NewSectionTemplatesManager() (*SectionTemplatesManager, error) {
	templatesCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbSectionTemplates)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbSectionTemplates, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}

	return &SectionTemplatesManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.CmdbSectionTemplate](templatesCol),
		counter:              basesvc.NewCounterService(countersCol),
	}, nil
}

// Get returns one template by public id.
func (m *SectionTemplatesManager) Get(ctx context.Context, publicID int64) (*models.CmdbSectionTemplate, error) {
	template, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("section template %d not found", publicID), err)
	}
	return &template, nil
}

// Create allocates a public id and inserts the template.
func (m *SectionTemplatesManager) Create(ctx context.Context, input *dto.SectionTemplateCreateInput) (*models.CmdbSectionTemplate, error) {
	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.CmdbSectionTemplates)
	if err != nil {
		return nil, err
	}

	template := models.CmdbSectionTemplate{
		PublicID: publicID,
		Name:     input.Name,
		Label:    input.Label,
		IsGlobal: input.IsGlobal,
		Fields:   input.Fields,
	}

	created, err := m.InsertOne(ctx, template)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "section template insert failed", err)
	}
	return &created, nil
}

// Seed inserts one fully-formed template, used for the predefined
// templates created at startup.
func (m *SectionTemplatesManager) Seed(ctx context.Context, template models.CmdbSectionTemplate) error {
	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.CmdbSectionTemplates)
	if err != nil {
		return err
	}
	template.PublicID = publicID

	if _, err := m.InsertOne(ctx, template); err != nil {
		return common.WrapManagerError(common.ErrManagerInsert, "section template seed failed", err)
	}
	return nil
}

// Update applies a partial template update. Predefined templates are
// rejected.
func (m *SectionTemplatesManager) Update(ctx context.Context, publicID int64, input *dto.SectionTemplateUpdateInput) (*models.CmdbSectionTemplate, error) {
	current, err := m.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if current.Predefined {
		return nil, common.WrapManagerError(common.ErrManagerUpdate,
			fmt.Sprintf("section template %d is predefined and read-only", publicID), nil)
	}

	set := map[string]interface{}{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.Label != "" {
		set["label"] = input.Label
	}
	if input.IsGlobal != nil {
		set["is_global"] = *input.IsGlobal
	}
	if input.Fields != nil {
		set["fields"] = input.Fields
	}

	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("section template %d update failed", publicID), err)
	}
	return &updated, nil
}

// Delete removes a template. Predefined templates are rejected.
func (m *SectionTemplatesManager) Delete(ctx context.Context, publicID int64) error {
	current, err := m.Get(ctx, publicID)
	if err != nil {
		return err
	}
	if current.Predefined {
		return common.WrapManagerError(common.ErrManagerDelete,
			fmt.Sprintf("section template %d is predefined and read-only", publicID), nil)
	}

	if err := m.DeleteOne(ctx, bson.M{"public_id": publicID}); err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, fmt.Sprintf("section template %d delete failed", publicID), err)
	}
	return nil
}

// GlobalTemplates lists every global template.
func (m *SectionTemplatesManager) GlobalTemplates(ctx context.Context) ([]models.CmdbSectionTemplate, error) {
	return m.Find(ctx, bson.M{"is_global": true}, nil)
}
