package basehdl

// Package basehdl provides the generic CRUD handler layer on top of
// basesvc.BaseServiceMongo. Domain handlers embed BaseHandler and add
// their own routes.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	basesvc "meta_cmdb/internal/api/base/service"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
	"meta_cmdb/internal/mongoquery"
	"meta_cmdb/internal/utility"
)

// FilterOptions restricts what a client-supplied filter may contain.
type FilterOptions struct {
	DeniedFields     []string // fields rejected in filters, projections, and sorts
	AllowedOperators []string // mongo operators allowed in filter values
	MaxFields        int      // max number of top-level filter fields
}

// BaseHandler is the generic Fiber handler over one collection.
//
// Type parameters:
// - T: persistence model
// - CreateInput: DTO accepted on create
// - UpdateInput: DTO accepted on update
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService   basesvc.BaseServiceMongo[T]
	filterOptions FilterOptions
}

// NewBaseHandler creates a BaseHandler wired to the given service.
func NewBaseHandler[T any, CreateInput any, UpdateInput any](baseService basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{
		BaseService: baseService,
		filterOptions: FilterOptions{
			DeniedFields: []string{
				"password",
				"token",
				"secret",
				"hash",
			},
			AllowedOperators: []string{
				"$eq",
				"$ne",
				"$gt",
				"$gte",
				"$lt",
				"$lte",
				"$in",
				"$nin",
				"$exists",
				"$regex",
			},
			MaxFields: 10,
		},
	}
}

// ParseRequestBody decodes the JSON body into input. UseNumber keeps
// integer field values from degrading to float64.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgInvalidFormat, common.StatusBadRequest, err)
	}
	return nil
}

// ValidateInput runs struct-tag validation against the shared validator.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// ParsePublicID reads the :id route param as an integer public id.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParsePublicID(c fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	if raw == "" {
		return 0, common.NewError(common.ErrCodeValidationFormat, "missing id in url params", common.StatusBadRequest, nil)
	}
	publicID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || publicID <= 0 {
		return 0, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("id '%s' is not a positive integer public id", raw),
			common.StatusBadRequest,
			err,
		)
	}
	return publicID, nil
}

// ParseObjectID reads the :id route param as a MongoDB ObjectID.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseObjectID(c fiber.Ctx) (primitive.ObjectID, error) {
	raw := c.Params("id")
	if raw == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "missing id in url params", common.StatusBadRequest, nil)
	}
	if !primitive.IsValidObjectID(raw) {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("id '%s' is not a valid 24-character hex ObjectID", raw),
			common.StatusBadRequest,
			nil,
		)
	}
	return utility.String2ObjectID(raw), nil
}

// ProcessFilter parses, normalizes and validates the filter query param.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessFilter(c fiber.Ctx) (map[string]interface{}, error) {
	var filter map[string]interface{}

	filterStr := c.Query("filter", "{}")
	if err := json.Unmarshal([]byte(filterStr), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("filter is not valid JSON: %v (got: %s)", err, filterStr),
			common.StatusBadRequest,
			err,
		)
	}

	filter = h.normalizeFilter(filter)

	if err := h.validateFilter(filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// normalizeFilter converts hex ObjectID strings in *_id-suffixed fields
// into primitive.ObjectID so filters match stored documents.
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilter(filter map[string]interface{}) map[string]interface{} {
	if filter == nil {
		return filter
	}

	normalized := make(map[string]interface{}, len(filter))
	for field, value := range filter {
		fieldLower := strings.ToLower(field)
		isIDField := strings.HasSuffix(fieldLower, "id") && len(fieldLower) > 2
		normalized[field] = h.normalizeFilterValue(value, isIDField)
	}
	return normalized
}

func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilterValue(value interface{}, isIDField bool) interface{} {
	if value == nil {
		return value
	}

	// Extended JSON format: {"$oid": "..."}
	if mapValue, ok := value.(map[string]interface{}); ok {
		if oidValue, hasOid := mapValue["$oid"]; hasOid {
			if oidStr, ok := oidValue.(string); ok && primitive.IsValidObjectID(oidStr) {
				if objID, err := primitive.ObjectIDFromHex(oidStr); err == nil {
					return objID
				}
			}
			return value
		}

		normalizedMap := make(map[string]interface{}, len(mapValue))
		for key, val := range mapValue {
			normalizedMap[key] = h.normalizeFilterValue(val, isIDField)
		}
		return normalizedMap
	}

	if strValue, ok := value.(string); ok && isIDField {
		if primitive.IsValidObjectID(strValue) {
			if objID, err := primitive.ObjectIDFromHex(strValue); err == nil {
				return objID
			}
		}
		return strValue
	}

	if arrValue, ok := value.([]interface{}); ok {
		normalizedArr := make([]interface{}, len(arrValue))
		for i, item := range arrValue {
			normalizedArr[i] = h.normalizeFilterValue(item, isIDField)
		}
		return normalizedArr
	}

	return value
}

// validateFilter enforces the configured filter restrictions.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateFilter(filter map[string]interface{}) error {
	opts := h.filterOptions
	if opts.MaxFields == 0 {
		opts.MaxFields = 10
	}

	if len(filter) > opts.MaxFields {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("filter exceeds the allowed field count: max %d, got %d", opts.MaxFields, len(filter)),
			common.StatusBadRequest,
			nil,
		)
	}

	for field, value := range filter {
		if utility.Contains(opts.DeniedFields, field) {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("field '%s' is not allowed in filters", field),
				common.StatusBadRequest,
				nil,
			)
		}

		if mapValue, ok := value.(map[string]interface{}); ok {
			for op := range mapValue {
				if strings.HasPrefix(op, "$") && !utility.Contains(opts.AllowedOperators, op) {
					return common.NewError(
						common.ErrCodeValidationFormat,
						fmt.Sprintf("operator '%s' is not allowed, permitted operators: %v", op, opts.AllowedOperators),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}
	return nil
}

// ParseBuilderParameters reads the iteration query params into
// mongoquery.BuilderParameters: filter (JSON), limit, skip, sort, order
// ("asc"/"desc" or 1/-1). Defaults follow NewBuilderParameters.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseBuilderParameters(c fiber.Ctx) (mongoquery.BuilderParameters, error) {
	filter, err := h.ProcessFilter(c)
	if err != nil {
		return mongoquery.BuilderParameters{}, err
	}

	params := mongoquery.NewBuilderParameters(filter)

	if rawLimit := c.Query("limit", ""); rawLimit != "" {
		limit, err := strconv.ParseInt(rawLimit, 10, 64)
		if err != nil || limit < 0 {
			return mongoquery.BuilderParameters{}, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("limit '%s' must be a non-negative integer", rawLimit),
				common.StatusBadRequest,
				err,
			)
		}
		params.Limit = limit
	}

	if rawSkip := c.Query("skip", ""); rawSkip != "" {
		skip, err := strconv.ParseInt(rawSkip, 10, 64)
		if err != nil || skip < 0 {
			return mongoquery.BuilderParameters{}, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("skip '%s' must be a non-negative integer", rawSkip),
				common.StatusBadRequest,
				err,
			)
		}
		params.Skip = skip
	}

	if sort := c.Query("sort", ""); sort != "" {
		if utility.Contains(h.filterOptions.DeniedFields, sort) {
			return mongoquery.BuilderParameters{}, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("field '%s' is not allowed in sort", sort),
				common.StatusBadRequest,
				nil,
			)
		}
		params.Sort = sort
	}

	switch order := c.Query("order", ""); order {
	case "", "asc", "1":
		params.Order = 1
	case "desc", "-1":
		params.Order = -1
	default:
		return mongoquery.BuilderParameters{}, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("order '%s' must be asc or desc", order),
			common.StatusBadRequest,
			nil,
		)
	}

	return params, nil
}

// RequestGroupID returns the caller's group id as set by the auth
// middleware, or 0 when there is no authenticated group context.
func (h *BaseHandler[T, CreateInput, UpdateInput]) RequestGroupID(c fiber.Ctx) int64 {
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

// RequestUserID returns the caller's public user id from the auth
// middleware, or 0 when unauthenticated.
func (h *BaseHandler[T, CreateInput, UpdateInput]) RequestUserID(c fiber.Ctx) int64 {
	switch v := c.Locals("user_id").(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if userID, err := strconv.ParseInt(v, 10, 64); err == nil {
			return userID
		}
	}
	return 0
}

// RequestPermission returns the permission name the matched route
// requires, as recorded by the auth middleware.
func (h *BaseHandler[T, CreateInput, UpdateInput]) RequestPermission(c fiber.Ctx) string {
	if permission, ok := c.Locals("permission_name").(string); ok {
		return permission
	}
	return ""
}

// ParsePagination reads page and limit query params with defaults.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParsePagination(c fiber.Ctx) (int64, int64) {
	page := utility.P2Int64(c.Query("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit := utility.P2Int64(c.Query("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}

// processMongoOptions converts the options query param into driver
// options. isFindOne selects FindOneOptions over FindOptions.
func (h *BaseHandler[T, CreateInput, UpdateInput]) processMongoOptions(c fiber.Ctx, isFindOne bool) (interface{}, error) {
	var rawOptions map[string]interface{}

	optionsStr := c.Query("options", "{}")
	if err := json.Unmarshal([]byte(optionsStr), &rawOptions); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("options is not valid JSON: %v (got: %s)", err, optionsStr),
			common.StatusBadRequest,
			err,
		)
	}

	if err := h.validateMongoOptions(rawOptions); err != nil {
		return nil, err
	}

	parseSort := func(sortMap map[string]interface{}) bson.D {
		sortBson := bson.D{}
		for field, value := range sortMap {
			var sortValue int
			switch v := value.(type) {
			case float64:
				sortValue = int(v)
			case int:
				sortValue = v
			default:
				continue
			}
			if sortValue != 1 && sortValue != -1 {
				continue
			}
			sortBson = append(sortBson, bson.E{Key: field, Value: sortValue})
		}
		return sortBson
	}

	if isFindOne {
		opts := mongoopts.FindOne()
		if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
			opts.SetProjection(projection)
		}
		if sort, ok := rawOptions["sort"].(map[string]interface{}); ok {
			opts.SetSort(parseSort(sort))
		}
		return opts, nil
	}

	opts := mongoopts.Find()
	if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
		opts.SetProjection(projection)
	}
	if sort, ok := rawOptions["sort"].(map[string]interface{}); ok {
		opts.SetSort(parseSort(sort))
	}
	if limit, ok := rawOptions["limit"].(float64); ok {
		opts.SetLimit(int64(limit))
	}
	if skip, ok := rawOptions["skip"].(float64); ok {
		opts.SetSkip(int64(skip))
	}
	return opts, nil
}

// validateMongoOptions rejects unsupported or unsafe option values.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateMongoOptions(options map[string]interface{}) error {
	allowedOptions := map[string]bool{
		"projection": true,
		"sort":       true,
		"limit":      true,
		"skip":       true,
	}

	for key := range options {
		if !allowedOptions[key] {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("option '%s' is not supported, allowed options: projection, sort, limit, skip", key),
				common.StatusBadRequest,
				nil,
			)
		}
	}

	if projection, ok := options["projection"].(map[string]interface{}); ok {
		for field := range projection {
			if utility.Contains(h.filterOptions.DeniedFields, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("field '%s' is not allowed in projection", field),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if sort, ok := options["sort"].(map[string]interface{}); ok {
		for field, value := range sort {
			if utility.Contains(h.filterOptions.DeniedFields, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("field '%s' is not allowed in sort", field),
					common.StatusBadRequest,
					nil,
				)
			}
			if v, ok := value.(float64); !ok || (v != 1 && v != -1) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("sort value for '%s' must be 1 or -1, got: %v", field, value),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if limit, ok := options["limit"].(float64); ok {
		if limit <= 0 {
			return common.NewError(common.ErrCodeValidationFormat, "limit must be greater than 0", common.StatusBadRequest, nil)
		}
		if limit > 1000 {
			return common.NewError(common.ErrCodeValidationFormat, "limit may not exceed 1000", common.StatusBadRequest, nil)
		}
	}

	if skip, ok := options["skip"].(float64); ok && skip < 0 {
		return common.NewError(common.ErrCodeValidationFormat, "skip may not be negative", common.StatusBadRequest, nil)
	}

	return nil
}
