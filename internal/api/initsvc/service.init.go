// Package initsvc seeds the default data a fresh installation needs:
// the system groups, the first admin account and the predefined
// section templates. Kept separate from the domain services to avoid
// import cycles.
package initsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	authdto "meta_cmdb/internal/api/auth/dto"
	authmodels "meta_cmdb/internal/api/auth/models"
	authsvc "meta_cmdb/internal/api/auth/service"
	basesvc "meta_cmdb/internal/api/base/service"
	cmdbmodels "meta_cmdb/internal/api/cmdb/models"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
	reportmodels "meta_cmdb/internal/api/reports/models"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/logger"
)

// DefaultAdminUserName is the seeded admin account name.
const DefaultAdminUserName = "admin"

// DefaultAdminPassword is the seeded admin password. It must be
// rotated after the first login.
const DefaultAdminPassword = "admin"

// InitService creates the seed documents through the regular managers
// so validation and public id allocation stay in one place.
type InitService struct {
	users     *authsvc.UsersManager
	groups    *authsvc.GroupsManager
	templates *cmdbsvc.SectionTemplatesManager
}

// NewInitService wires the seeding service.
func NewInitService() (*InitService, error) {
	groups, err := authsvc.NewGroupsManager()
	if err != nil {
		return nil, fmt.Errorf("create GroupsManager: %w", err)
	}
	users, err := authsvc.NewUsersManager(groups)
	if err != nil {
		return nil, fmt.Errorf("create UsersManager: %w", err)
	}
	templates, err := cmdbsvc.NewSectionTemplatesManager()
	if err != nil {
		return nil, fmt.Errorf("create SectionTemplatesManager: %w", err)
	}

	return &InitService{
		users:     users,
		groups:    groups,
		templates: templates,
	}, nil
}

// counterCollections lists every collection whose public IDs come out
// of the counters collection.
func counterCollections() []string {
	return []string{
		global.MongoDB_ColNames.CmdbTypes,
		global.MongoDB_ColNames.CmdbObjects,
		global.MongoDB_ColNames.CmdbCategories,
		global.MongoDB_ColNames.CmdbSectionTemplates,
		global.MongoDB_ColNames.CmdbObjectLogs,
		global.MongoDB_ColNames.Reports,
		global.MongoDB_ColNames.Users,
		global.MongoDB_ColNames.Groups,
	}
}

// SyncCounters raises every public id counter to the highest public_id
// already stored in its collection. A restored dump may carry documents
// the counters collection does not know about; without the sync the
// next allocation would collide with an existing public id.
func (s *InitService) SyncCounters(ctx context.Context) error {
	countersCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CmdbCounters)
	if !exist {
		return fmt.Errorf("collection %s not registered: %w", global.MongoDB_ColNames.CmdbCounters, common.ErrNotFound)
	}
	counters := basesvc.NewCounterService(countersCol)

	for _, name := range counterCollections() {
		col, exist := global.RegistryCollections.Get(name)
		if !exist {
			return fmt.Errorf("collection %s not registered: %w", name, common.ErrNotFound)
		}

		var doc struct {
			PublicID int64 `bson:"public_id"`
		}
		opts := options.FindOne().SetSort(bson.D{{Key: "public_id", Value: -1}})
		err := col.FindOne(ctx, bson.M{}, opts).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read highest public id of %s: %w", name, common.ConvertMongoError(err))
		}

		if err := counters.EnsureAtLeast(ctx, name, doc.PublicID); err != nil {
			return fmt.Errorf("sync counter of %s: %w", name, err)
		}
	}
	return nil
}

// userGroupPermissions is everything a regular member may do: read the
// framework, work with objects and run reports.
func userGroupPermissions() []string {
	return []string{
		cmdbmodels.PermissionTypeView,
		cmdbmodels.PermissionCategoryView,
		cmdbmodels.PermissionSectionTemplateView,
		cmdbmodels.PermissionLogView,
		cmdbmodels.PermissionObjectView,
		cmdbmodels.PermissionObjectAdd,
		cmdbmodels.PermissionObjectEdit,
		cmdbmodels.PermissionObjectActivation,
		reportmodels.PermissionReportView,
		reportmodels.PermissionReportRun,
	}
}

// InitDefaultGroups seeds the admin and user system groups. Existing
// groups are left untouched so permission edits survive restarts.
func (s *InitService) InitDefaultGroups(ctx context.Context) error {
	seeds := []struct {
		name        string
		label       string
		permissions []string
	}{
		{authmodels.GroupNameAdmin, "Administrator", []string{authmodels.PermissionWildcard}},
		{authmodels.GroupNameUser, "User", userGroupPermissions()},
	}

	for _, seed := range seeds {
		_, err := s.groups.FindOne(ctx, bson.M{"name": seed.name}, nil)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("lookup group %q: %w", seed.name, err)
		}

		group, err := s.groups.Create(ctx, &authdto.GroupCreateInput{
			Name:        seed.name,
			Label:       seed.label,
			Permissions: seed.permissions,
		})
		if err != nil {
			return fmt.Errorf("seed group %q: %w", seed.name, err)
		}

		// Mark as system so the group cannot be deleted.
		if _, err := s.groups.UpdateById(ctx, group.ID, bson.M{"$set": bson.M{"system": true}}); err != nil {
			return fmt.Errorf("mark group %q as system: %w", seed.name, err)
		}

		logger.GetAppLogger().WithFields(logrus.Fields{
			"group":    seed.name,
			"group_id": group.PublicID,
		}).Info("seeded system group")
	}
	return nil
}

// InitAdminUser seeds the first admin account when no user exists yet.
func (s *InitService) InitAdminUser(ctx context.Context) error {
	count, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	adminGroup, err := s.groups.FindOne(ctx, bson.M{"name": authmodels.GroupNameAdmin}, nil)
	if err != nil {
		return fmt.Errorf("admin group missing, seed groups first: %w", err)
	}

	user, err := s.users.Create(ctx, &authdto.UserCreateInput{
		UserName: DefaultAdminUserName,
		Password: DefaultAdminPassword,
		GroupID:  adminGroup.PublicID,
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"user_id":   user.PublicID,
		"user_name": user.UserName,
	}).Warn("seeded default admin account, change its password")
	return nil
}

// InitSectionTemplates seeds the predefined global section templates.
func (s *InitService) InitSectionTemplates(ctx context.Context) error {
	now := time.Now().Unix()
	seeds := []cmdbmodels.CmdbSectionTemplate{
		{
			Name:       "general-information",
			Label:      "General Information",
			IsGlobal:   true,
			Predefined: true,
			Fields: []cmdbmodels.TypeField{
				{Name: "name", Label: "Name", Type: cmdbmodels.FieldTypeText, Required: true},
				{Name: "description", Label: "Description", Type: cmdbmodels.FieldTypeTextarea},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			Name:       "lifecycle",
			Label:      "Lifecycle",
			IsGlobal:   true,
			Predefined: true,
			Fields: []cmdbmodels.TypeField{
				{Name: "commissioned", Label: "Commissioned", Type: cmdbmodels.FieldTypeDate},
				{Name: "decommissioned", Label: "Decommissioned", Type: cmdbmodels.FieldTypeDate},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, seed := range seeds {
		_, err := s.templates.FindOne(ctx, bson.M{"name": seed.Name}, nil)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("lookup section template %q: %w", seed.Name, err)
		}

		if err := s.templates.Seed(ctx, seed); err != nil {
			return fmt.Errorf("seed section template %q: %w", seed.Name, err)
		}
		logger.GetAppLogger().WithFields(logrus.Fields{
			"template": seed.Name,
		}).Info("seeded predefined section template")
	}
	return nil
}
