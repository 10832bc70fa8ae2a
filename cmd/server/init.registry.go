package main

import (
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"meta_cmdb/config"
	"meta_cmdb/internal/api/cmdb/render"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
	"meta_cmdb/internal/global"
)

// InitRegistry registers every collection in the shared registry and
// attaches the audit log subscriber. Must run after InitGlobal.
func InitRegistry() {
	if err := InitCollections(global.MongoDB_Session, global.MongoDB_ServerConfig); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")

	// The audit trail listens on the data-change bus for object
	// inserts and updates. It gets its own renderer so entries carry a
	// render snapshot instead of the raw field list.
	logs, err := cmdbsvc.NewLogsManager()
	if err != nil {
		logrus.Fatalf("Failed to initialize logs manager: %v", err)
	}
	types, err := cmdbsvc.NewTypesManager()
	if err != nil {
		logrus.Fatalf("Failed to initialize types manager: %v", err)
	}
	objects, err := cmdbsvc.NewObjectsManager(types, logs)
	if err != nil {
		logrus.Fatalf("Failed to initialize objects manager: %v", err)
	}
	maxDepth := render.DefaultMaxDepth
	if global.MongoDB_ServerConfig.RenderMaxDepth > 0 {
		maxDepth = global.MongoDB_ServerConfig.RenderMaxDepth
	}
	logs.WithRenderer(render.NewCmdbRender(objects, types, maxDepth), types)
	logs.Attach()
	logrus.Info("Attached audit log subscriber")
}

// InitCollections registers the MongoDB collections the managers pull
// from the registry.
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)
	colNames := []string{
		global.MongoDB_ColNames.CmdbTypes,
		global.MongoDB_ColNames.CmdbObjects,
		global.MongoDB_ColNames.CmdbCounters,
		global.MongoDB_ColNames.CmdbCategories,
		global.MongoDB_ColNames.CmdbSectionTemplates,
		global.MongoDB_ColNames.CmdbObjectLogs,
		global.MongoDB_ColNames.Reports,
		global.MongoDB_ColNames.Users,
		global.MongoDB_ColNames.Groups,
	}

	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}

		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Errorf("Collection %s already registered", name)
		}
	}

	return nil
}
