package reportsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "meta_cmdb/internal/api/base/service"
	cmdbmodels "meta_cmdb/internal/api/cmdb/models"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
	dto "meta_cmdb/internal/api/reports/dto"
	models "meta_cmdb/internal/api/reports/models"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
)

// RunResult is the outcome of one report execution. Degraded marks runs
// whose rule tree failed to compile and fell back to the type gate.
type RunResult struct {
	Report   *models.CmdbReport      `json:"report"`
	Results  []cmdbmodels.CmdbObject `json:"results"`
	Total    int64                   `json:"total"`
	Degraded bool                    `json:"degraded,omitempty"`
}

// ReportsManager owns saved report definitions (cmdb_reports) and runs
// them against the object collection.
type ReportsManager struct {
	*basesvc.BaseServiceMongoImpl[models.CmdbReport]
	counter *basesvc.CounterService
	types   *cmdbsvc.TypesManager
	objects *mongo.Collection
}

// NewReportsManager wires the manager from the collection registry.
func NewReportsManager(types *cmdbsvc.TypesManager) (*ReportsManager, error) {
	reportsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Reports)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.Reports, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}
	objectsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbObjects)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbObjects, common.ErrNotFound)
	}

	return &ReportsManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.CmdbReport](reportsCol),
		counter:              basesvc.NewCounterService(countersCol),
		types:                types,
		objects:              objectsCol,
	}, nil
}

// Get returns one report by public id.
func (m *ReportsManager) Get(ctx context.Context, publicID int64) (*models.CmdbReport, error) {
	report, err := m.FindOneByPublicId(ctx, publicID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerGet, fmt.Sprintf("report %d not found", publicID), err)
	}
	return &report, nil
}

// Create validates the bound type and stores the report.
func (m *ReportsManager) Create(ctx context.Context, input *dto.ReportCreateInput) (*models.CmdbReport, error) {
	if _, err := m.types.Get(ctx, input.TypeID); err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert,
			fmt.Sprintf("report references unknown type %d", input.TypeID), err)
	}

	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.Reports)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, "public id allocation failed", err)
	}

	report := models.CmdbReport{
		PublicID:       publicID,
		Name:           input.Name,
		TypeID:         input.TypeID,
		SelectedFields: input.SelectedFields,
		Conditions:     input.Conditions,
		CreatedAt:      time.Now().UnixMilli(),
		UpdatedAt:      time.Now().UnixMilli(),
	}
	created, err := m.InsertOne(ctx, report)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerInsert, fmt.Sprintf("report %q insert failed", input.Name), err)
	}
	return &created, nil
}

// Update applies a partial update. Predefined reports are read-only.
func (m *ReportsManager) Update(ctx context.Context, publicID int64, input *dto.ReportUpdateInput) (*models.CmdbReport, error) {
	current, err := m.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if current.Predefined {
		return nil, common.WrapManagerError(common.ErrManagerUpdate,
			fmt.Sprintf("report %d is predefined and read-only", publicID), nil)
	}

	set := map[string]interface{}{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.SelectedFields != nil {
		set["selected_fields"] = input.SelectedFields
	}
	if input.Conditions != nil {
		set["conditions"] = input.Conditions
	}

	updated, err := m.UpdateOne(ctx, bson.M{"public_id": publicID}, &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerUpdate, fmt.Sprintf("report %d update failed", publicID), err)
	}
	return &updated, nil
}

// Delete removes a report. Predefined reports are rejected.
func (m *ReportsManager) Delete(ctx context.Context, publicID int64) error {
	current, err := m.Get(ctx, publicID)
	if err != nil {
		return err
	}
	if current.Predefined {
		return common.WrapManagerError(common.ErrManagerDelete,
			fmt.Sprintf("report %d is predefined and read-only", publicID), nil)
	}

	if err := m.DeleteOne(ctx, bson.M{"public_id": publicID}); err != nil {
		return common.WrapManagerError(common.ErrManagerDelete, fmt.Sprintf("report %d delete failed", publicID), err)
	}
	return nil
}

// Run compiles the report's rule tree and executes it against the
// object collection.
func (m *ReportsManager) Run(ctx context.Context, publicID int64) (*RunResult, error) {
	report, err := m.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	reportType, err := m.types.Get(ctx, report.TypeID)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration,
			fmt.Sprintf("report %d references missing type %d", publicID, report.TypeID), err)
	}

	builder := NewMongoDBQueryBuilder(reportType)
	query := builder.Build(report.Conditions)

	pipeline := []bson.D{{{Key: "$match", Value: query}}}
	cursor, err := m.objects.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, fmt.Sprintf("report %d execution failed", publicID), err)
	}
	defer cursor.Close(ctx)

	results := []cmdbmodels.CmdbObject{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.WrapManagerError(common.ErrManagerIteration, fmt.Sprintf("report %d result decoding failed", publicID), err)
	}

	return &RunResult{
		Report:   report,
		Results:  results,
		Total:    int64(len(results)),
		Degraded: builder.Degraded(),
	}, nil
}
