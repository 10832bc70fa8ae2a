// Package cmdbsvc - CategoriesManager maintains the category tree
// (cmdb_categories).
package cmdbsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	basesvc "meta_cmdb/internal/api/base/service"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
)

// CategoryNode is one node of the assembled tree.
type CategoryNode struct {
	Category models.CmdbCategory `json:"category"`
	Children []*CategoryNode     `json:"children,omitempty"`
}

// CategoriesManager owns the category collection.
type CategoriesManager struct {
	*basesvc.BaseServiceMongoImpl[models.CmdbCategory]
	counter *basesvc.CounterService
}

// NewCategoriesManager wires the manager from the collection registry.
func NewCategoriesManager() (*CategoriesManager, error) {
	categoriesCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCategories)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCategories, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}

	return &CategoriesManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.CmdbCategory](categoriesCol),
		counter:              basesvc.NewCounterService(countersCol),
	}, nil
}

// Get returns one category by public id.
func (m *CategoriesManager) Get(ctx context.Context, publicID int64) (*models.CmdbCategory, error) {
	category, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("category %d not found", publicID), err)
	}
	return &category, nil
}

// Create allocates a public id and inserts the category. A non-zero
// parent must exist.
func (m *CategoriesManager) Create(ctx context.Context, input *dto.CategoryCreateInput) (*models.CmdbCategory, error) {
	if input.ParentID > 0 {
		if _, err := m.Get(ctx, input.ParentID); err != nil {
			return nil, err
		}
	}

	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.CmdbCategories)
	if err != nil {
		return nil, err
	}

	category := models.CmdbCategory{
		PublicID: publicID,
		Name:     input.Name,
		Label:    input.Label,
		Meta:     input.Meta,
		ParentID: input.ParentID,
		Types:    input.Types,
	}

	created, err := m.InsertOne(ctx, category)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "category insert failed", err)
	}
	return &created, nil
}

// Update applies a partial category update.
func (m *CategoriesManager) Update(ctx context.Context, publicID int64, input *dto.CategoryUpdateInput) (*models.CmdbCategory, error) {
	if _, err := m.Get(ctx, publicID); err != nil {
		return nil, err
	}

	set := map[string]interface{}{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.Label != "" {
		set["label"] = input.Label
	}
	if input.Meta != nil {
		set["meta"] = *input.Meta
	}
	if input.ParentID != nil {
		if *input.ParentID > 0 {
			if *input.ParentID == publicID {
				return nil, common.WrapManagerError(common.ErrManagerUpdate, "category cannot be its own parent", nil)
			}
			if _, err := m.Get(ctx, *input.ParentID); err != nil {
				return nil, err
			}
		}
		set["parent"] = *input.ParentID
	}
	if input.Types != nil {
		set["types"] = input.Types
	}

	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("category %d update failed", publicID), err)
	}
	return &updated, nil
}

// Delete removes a category and reparents its children to the root.
func (m *CategoriesManager) Delete(ctx context.Context, publicID int64) error {
	if _, err := m.Get(ctx, publicID); err != nil {
		return err
	}

	if err := m.DeleteOne(ctx, bson.M{"public_id": publicID}); err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, fmt.Sprintf("category %d delete failed", publicID), err)
	}

	if _, err := m.UpdateMany(ctx, bson.M{"parent": publicID},
		&basesvc.UpdateData{Set: map[string]interface{}{"parent": int64(0)}}, nil); err != nil {
		return common.WrapManagerError(common.ErrManagerUpdate, "child reparenting failed", err)
	}
	return nil
}

// Tree assembles the full category tree ordered by meta.order.
func (m *CategoriesManager) Tree(ctx context.Context) ([]*CategoryNode, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "meta.order", Value: 1}, {Key: "public_id", Value: 1}})
	categories, err := m.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, "category listing failed", err)
	}

	nodes := map[int64]*CategoryNode{}
	for i := range categories {
		nodes[categories[i].PublicID] = &CategoryNode{Category: categories[i]}
	}

	roots := []*CategoryNode{}
	for i := range categories {
		node := nodes[categories[i].PublicID]
		if parent, ok := nodes[categories[i].ParentID]; ok && categories[i].ParentID != categories[i].PublicID {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots, nil
}
