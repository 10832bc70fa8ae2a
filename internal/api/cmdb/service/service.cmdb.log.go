// Package cmdbsvc - LogsManager writes and serves the object audit
// trail (cmdb_object_logs). CREATE and EDIT entries come from the
// data-change event bus; DELETE entries are written by ObjectsManager
// directly because delete events carry no document.
package cmdbsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	basesvc "meta_cmdb/internal/api/base/service"
	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/api/cmdb/render"
	"meta_cmdb/internal/api/events"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/logger"
)

// LogsManager owns the audit collection.
type LogsManager struct {
	*basesvc.BaseServiceMongoImpl[models.CmdbObjectLog]
	counter  *basesvc.CounterService
	renderer *render.CmdbRender
	types    render.TypeFetcher
}

// NewLogsManager wires the manager from the collection registry.
func NewLogsManager() (*LogsManager, error) {
	logsCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbObjectLogs)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbObjectLogs, common.ErrNotFound)
	}
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return nil, fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}

	return &LogsManager{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.CmdbObjectLog](logsCol),
		counter:              basesvc.NewCounterService(countersCol),
	}, nil
}

// WithRenderer gives the manager a renderer for the log snapshots.
// Without one, entries fall back to the raw field list.
func (m *LogsManager) WithRenderer(renderer *render.CmdbRender, types render.TypeFetcher) {
	m.renderer = renderer
	m.types = types
}

// Attach subscribes the manager to object change events. Call once
// during startup.
func (m *LogsManager) Attach() {
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		if e.CollectionName != global.MongoDB_ColNames.CmdbObjects {
			return
		}

		var action string
		switch e.Operation {
		case events.OpInsert:
			action = models.LogActionCreate
		case events.OpUpdate, events.OpUpsert:
			action = models.LogActionEdit
		default:
			return
		}

		obj, ok := e.Document.(models.CmdbObject)
		if !ok {
			return
		}

		// The subscriber runs detached from the request; the request
		// context may already be done.
		if err := m.writeLog(context.Background(), &obj, action, logAuthor(action, &obj), ""); err != nil {
			logger.GetAppLogger().WithError(err).Warnf("audit log for object %d failed", obj.PublicID)
		}
	})
}

// logAuthor picks the user an entry is attributed to: the creator for
// CREATE entries, the last editor for everything else.
func logAuthor(action string, obj *models.CmdbObject) int64 {
	if action == models.LogActionCreate {
		return obj.AuthorID
	}
	return obj.EditorID
}

// WriteDeleteLog records a DELETE entry from the just-removed object.
func (m *LogsManager) WriteDeleteLog(ctx context.Context, obj *models.CmdbObject, authorID int64) error {
	return m.writeLog(ctx, obj, models.LogActionDelete, authorID, "")
}

// snapshot renders the object for the log entry so the trail stays
// readable after later schema changes. When the renderer is absent or
// the type cannot be loaded (deleted type on a DELETE entry), the raw
// field list is stored instead.
func (m *LogsManager) snapshot(ctx context.Context, obj *models.CmdbObject) interface{} {
	if m.renderer == nil || m.types == nil {
		return obj.Fields
	}
	objectType, err := m.types.FetchType(ctx, obj.TypeID)
	if err != nil {
		logger.GetAppLogger().WithError(err).Debugf("log snapshot for object %d falls back to raw fields", obj.PublicID)
		return obj.Fields
	}
	return m.renderer.RenderWithType(ctx, obj, objectType)
}

func (m *LogsManager) writeLog(ctx context.Context, obj *models.CmdbObject, action string, authorID int64, comment string) error {
	publicID, err := m.counter.NextPublicID(ctx, global.MongoDB_ColNames.CmdbObjectLogs)
	if err != nil {
		return err
	}

	entry := models.CmdbObjectLog{
		PublicID:    publicID,
		ObjectID:    obj.PublicID,
		TypeID:      obj.TypeID,
		Action:      action,
		Comment:     comment,
		AuthorID:    authorID,
		LogTime:     time.Now().UTC(),
		Version:     obj.Version,
		RenderState: m.snapshot(ctx, obj),
	}

	if _, err := m.InsertOne(ctx, entry); err != nil {
		return common.WrapManagerError(common.ErrManagerInsert, "audit log insert failed", err)
	}
	return nil
}

// ForObject lists the audit entries of one object, newest first.
func (m *LogsManager) ForObject(ctx context.Context, objectID int64, limit int64) ([]models.CmdbObjectLog, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := mongoopts.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "log_time", Value: -1}})
	return m.Find(ctx, bson.M{"object_id": objectID}, opts)
}
