// Package searchhdl exposes the object search endpoints.
package searchhdl

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	basehdl "meta_cmdb/internal/api/base/handler"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
	searchsvc "meta_cmdb/internal/api/search/service"
	"meta_cmdb/internal/common"
)

type SearchHandler struct {
	search *searchsvc.SearchManager
}

func NewSearchHandler() (*SearchHandler, error) {
	categories, err := cmdbsvc.NewCategoriesManager()
	if err != nil {
		return nil, err
	}
	search, err := searchsvc.NewSearchManager(categories)
	if err != nil {
		return nil, err
	}
	return &SearchHandler{search: search}, nil
}

// HandleQuick serves GET /search/quick: the active/inactive/total
// preview counts for a term.
func (h *SearchHandler) HandleQuick(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		term := c.Query("searchValue")
		result, err := h.search.Quick(c.Context(), term, requestGroupID(c), requestPermission(c))
		respond(c, result, err)
		return nil
	})
}

// HandleSearch serves GET /search: the faceted search over objects.
func (h *SearchHandler) HandleSearch(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		params := searchsvc.SearchParams{
			Term:        c.Query("searchValue"),
			TypeIDs:     parseInt64List(c.Query("typeIDs")),
			Conjunctive: c.Query("conjunctive") == "true",
			CategoryID:  parseInt64(c.Query("categoryID")),
			PublicID:    parseInt64(c.Query("publicID")),
			Resolve:     c.Query("resolve") == "true",
			Limit:       parseInt64(c.Query("limit", "10")),
			Skip:        parseInt64(c.Query("skip")),
		}
		if params.Limit < 0 {
			params.Limit = 0
		}
		if params.Skip < 0 {
			params.Skip = 0
		}

		result, err := h.search.Search(c.Context(), params, requestGroupID(c), requestPermission(c))
		respond(c, result, err)
		return nil
	})
}

// HandleGroups serves GET /search/groups: visible object counts per
// type, used by the category overview.
func (h *SearchHandler) HandleGroups(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		groups, err := h.search.GroupByTypes(c.Context(), requestGroupID(c), requestPermission(c))
		respond(c, groups, err)
		return nil
	})
}

func parseInt64(raw string) int64 {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseInt64List(raw string) []int64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, value)
	}
	return ids
}

func requestGroupID(c fiber.Ctx) int64 {
	switch v := c.Locals("group_id").(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if groupID, err := strconv.ParseInt(v, 10, 64); err == nil {
			return groupID
		}
	}
	return 0
}

func requestPermission(c fiber.Ctx) string {
	if permission, ok := c.Locals("permission_name").(string); ok {
		return permission
	}
	return ""
}

func respond(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) {
			basehdl.JSONResponse(c, customErr.StatusCode, fiber.Map{
				"code":    customErr.Code.Code,
				"message": customErr.Message,
				"details": customErr.Details,
				"status":  "error",
			})
			return
		}
		basehdl.JSONResponse(c, common.StatusInternalServerError, fiber.Map{
			"code":    common.ErrCodeDatabase.Code,
			"message": err.Error(),
			"status":  "error",
		})
		return
	}

	basehdl.JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}
