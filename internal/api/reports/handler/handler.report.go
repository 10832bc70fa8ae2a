// Package reporthdl - HTTP handlers for saved reports.
package reporthdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "meta_cmdb/internal/api/base/handler"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
	dto "meta_cmdb/internal/api/reports/dto"
	models "meta_cmdb/internal/api/reports/models"
	reportsvc "meta_cmdb/internal/api/reports/service"
)

// ReportsHandler serves the report definition and execution API.
type ReportsHandler struct {
	*basehdl.BaseHandler[models.CmdbReport, dto.ReportCreateInput, dto.ReportUpdateInput]
	Reports *reportsvc.ReportsManager
}

// NewReportsHandler creates a ReportsHandler.
func NewReportsHandler() (*ReportsHandler, error) {
	types, err := cmdbsvc.NewTypesManager()
	if err != nil {
		return nil, fmt.Errorf("create TypesManager: %w", err)
	}
	manager, err := reportsvc.NewReportsManager(types)
	if err != nil {
		return nil, fmt.Errorf("create ReportsManager: %w", err)
	}
	return &ReportsHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CmdbReport, dto.ReportCreateInput, dto.ReportUpdateInput](manager.BaseServiceMongoImpl),
		Reports:     manager,
	}, nil
}

// HandleCreate handles POST /reports.
func (h *ReportsHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.ReportCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.Reports.Create(c.Context(), &input)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleGet handles GET /reports/:id.
func (h *ReportsHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		report, err := h.Reports.Get(c.Context(), publicID)
		h.HandleResponse(c, report, err)
		return nil
	})
}

// HandleUpdate handles PUT /reports/:id.
func (h *ReportsHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.ReportUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Reports.Update(c.Context(), publicID, &input)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete handles DELETE /reports/:id.
func (h *ReportsHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.Reports.Delete(c.Context(), publicID)
		h.HandleResponse(c, fiber.Map{"public_id": publicID}, err)
		return nil
	})
}

// HandleRun handles POST /reports/:id/run.
func (h *ReportsHandler) HandleRun(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.Reports.Run(c.Context(), publicID)
		h.HandleResponse(c, result, err)
		return nil
	})
}
