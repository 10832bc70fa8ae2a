package searchsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	cmdbmodels "meta_cmdb/internal/api/cmdb/models"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/mongoquery"
)

// QuickSearchResult is the preview badge payload.
type QuickSearchResult struct {
	Active   int64 `json:"active" bson:"active"`
	Inactive int64 `json:"inactive" bson:"inactive"`
	Total    int64 `json:"total" bson:"total"`
}

// TypeGroup is one per-type bucket of a search result.
type TypeGroup struct {
	TypeID int64 `json:"type_id" bson:"_id"`
	Count  int64 `json:"count" bson:"count"`
}

// SearchResult is the full search response envelope.
type SearchResult struct {
	Results []cmdbmodels.CmdbObject `json:"results"`
	Groups  []TypeGroup             `json:"groups"`
	Total   int64                   `json:"total"`
}

// SearchManager runs the search pipelines against the object
// collection.
type SearchManager struct {
	objects    *mongo.Collection
	categories *cmdbsvc.CategoriesManager
	quick      QuickSearchPipelineBuilder
	search     SearchPipelineBuilder
}

// NewSearchManager wires the manager from the collection registry.
func NewSearchManager(categories *cmdbsvc.CategoriesManager) (*SearchManager, error) {
	objectsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbObjects)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbObjects, common.ErrNotFound)
	}

	base := mongoquery.NewBaseQueryBuilder(global.MongoDB_ColNames.CmdbTypes, global.MongoDB_ColNames.Users)
	return &SearchManager{
		objects:    objectsCol,
		categories: categories,
		quick:      QuickSearchPipelineBuilder{Base: base},
		search: SearchPipelineBuilder{
			Base:             base,
			ObjectCollection: global.MongoDB_ColNames.CmdbObjects,
		},
	}, nil
}

// Quick returns the active/inactive/total counts for a term. A term
// matching nothing yields all zeros.
func (m *SearchManager) Quick(ctx context.Context, term string, groupID int64, permission string) (*QuickSearchResult, error) {
	pipeline := m.quick.Build(term, groupID, permission)
	cursor, err := m.objects.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, "quick search failed", err)
	}
	defer cursor.Close(ctx)

	results := []QuickSearchResult{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, "quick search decoding failed", err)
	}
	if len(results) == 0 {
		return &QuickSearchResult{}, nil
	}
	return &results[0], nil
}

// Search runs the full faceted search.
func (m *SearchManager) Search(ctx context.Context, params SearchParams, groupID int64, permission string) (*SearchResult, error) {
	var categoryTypes []int64
	if params.CategoryID > 0 {
		category, err := m.categories.Get(ctx, params.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryTypes = category.Types
		if len(categoryTypes) == 0 {
			// A category without types can match nothing.
			return &SearchResult{Results: []cmdbmodels.CmdbObject{}, Groups: []TypeGroup{}}, nil
		}
	}

	pipeline := m.search.Build(params, categoryTypes, groupID, permission)
	cursor, err := m.objects.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, "search failed", err)
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Results []cmdbmodels.CmdbObject `bson:"results"`
		Groups  []TypeGroup             `bson:"groups"`
		Total   []struct {
			Total int64 `bson:"total"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, "search decoding failed", err)
	}

	result := &SearchResult{Results: []cmdbmodels.CmdbObject{}, Groups: []TypeGroup{}}
	if len(facets) == 0 {
		return result, nil
	}
	if facets[0].Results != nil {
		result.Results = facets[0].Results
	}
	if facets[0].Groups != nil {
		result.Groups = facets[0].Groups
	}
	if len(facets[0].Total) > 0 {
		result.Total = facets[0].Total[0].Total
	}
	return result, nil
}

// GroupByTypes counts visible objects per type without a term filter,
// used by the category overview.
func (m *SearchManager) GroupByTypes(ctx context.Context, groupID int64, permission string) ([]TypeGroup, error) {
	cursor, err := m.objects.Aggregate(ctx, m.search.BuildGroups(groupID, permission))
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, "type grouping failed", err)
	}
	defer cursor.Close(ctx)

	groups := []TypeGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, "type grouping decoding failed", err)
	}
	return groups, nil
}
