package main

import (
	"context"

	"meta_cmdb/internal/api/initsvc"
	"meta_cmdb/internal/logger"
)

// InitDefaultData seeds what a fresh installation needs: the system
// groups, the first admin account and the predefined section
// templates. Every step is idempotent.
func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("Seeding default data...")

	initService, err := initsvc.NewInitService()
	if err != nil {
		log.Fatalf("Failed to initialize init service: %v", err)
	}

	ctx := context.Background()

	if err := initService.SyncCounters(ctx); err != nil {
		log.Fatalf("Failed to sync public id counters: %v", err)
	}
	log.Info("Public id counters synced")

	if err := initService.InitDefaultGroups(ctx); err != nil {
		log.Fatalf("Failed to initialize default groups: %v", err)
	}
	log.Info("Default groups initialized")

	if err := initService.InitAdminUser(ctx); err != nil {
		log.Fatalf("Failed to initialize admin user: %v", err)
	}

	if err := initService.InitSectionTemplates(ctx); err != nil {
		log.Warnf("Failed to initialize section templates: %v", err)
	} else {
		log.Info("Predefined section templates initialized")
	}

	log.Info("Default data seeding completed")
}
