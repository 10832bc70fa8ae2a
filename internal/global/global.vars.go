package global

import (
	"meta_cmdb/config"
	"meta_cmdb/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName holds the MongoDB collection names.
type MongoDB_CollectionName struct {
	CmdbTypes            string // type definitions (schemas)
	CmdbObjects          string // object instances
	CmdbCounters         string // per-collection public id counters
	CmdbCategories       string // type categories (tree)
	CmdbSectionTemplates string // reusable section templates
	CmdbObjectLogs       string // object change history
	Reports              string // saved report definitions
	Users                string
	Groups               string // user groups referenced by type ACLs
}

// Global state, assigned once during server init.
var Validate *validator.Validate
var MongoDB_Session *mongo.Client
var MongoDB_ServerConfig *config.Configuration
var MongoDB_ColNames MongoDB_CollectionName = *new(MongoDB_CollectionName)

// Registry for shared collection handles.
var RegistryCollections = registry.NewRegistry[*mongo.Collection]()
