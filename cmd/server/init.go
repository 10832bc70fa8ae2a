package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"meta_cmdb/config"
	authmodels "meta_cmdb/internal/api/auth/models"
	cmdbmodels "meta_cmdb/internal/api/cmdb/models"
	reportmodels "meta_cmdb/internal/api/reports/models"
	"meta_cmdb/internal/database"
	"meta_cmdb/internal/global"
)

// InitGlobal assigns the global state in dependency order: collection
// names first, then validator, config and the database connection.
func InitGlobal() {
	initColNames()
	initValidator()
	initConfig()
	initDatabase_MongoDB()
}

func initColNames() {
	global.MongoDB_ColNames.CmdbTypes = "cmdb_types"
	global.MongoDB_ColNames.CmdbObjects = "cmdb_objects"
	global.MongoDB_ColNames.CmdbCounters = "cmdb_counters"
	global.MongoDB_ColNames.CmdbCategories = "cmdb_categories"
	global.MongoDB_ColNames.CmdbSectionTemplates = "cmdb_section_templates"
	global.MongoDB_ColNames.CmdbObjectLogs = "cmdb_object_logs"
	global.MongoDB_ColNames.Reports = "reports"
	global.MongoDB_ColNames.Users = "users"
	global.MongoDB_ColNames.Groups = "groups"

	logrus.Info("Initialized collection names")
}

// initValidator registers the custom validators (no_xss, exists, ...).
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// initDatabase_MongoDB connects to MongoDB, makes sure the database
// and every collection exist, and builds the indexes declared on the
// model structs.
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)

	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CmdbTypes), cmdbmodels.CmdbType{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CmdbObjects), cmdbmodels.CmdbObject{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CmdbCategories), cmdbmodels.CmdbCategory{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CmdbSectionTemplates), cmdbmodels.CmdbSectionTemplate{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CmdbObjectLogs), cmdbmodels.CmdbObjectLog{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Reports), reportmodels.CmdbReport{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Users), authmodels.User{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Groups), authmodels.Group{})

	// Indexes the struct tags cannot express (multikey field paths
	// inside object sections, text index for search).
	if err := database.CreateCmdbAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Errorf("Failed to create additional indexes: %v", err)
	}

	logrus.Info("Created indexes")
}
