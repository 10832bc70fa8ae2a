package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/logger"
)

// ObjectFetcher loads a CmdbObject by public id. Satisfied by
// cmdbsvc.ObjectsManager; kept narrow so tests can inject fakes.
type ObjectFetcher interface {
	FetchObject(ctx context.Context, publicID int64) (*models.CmdbObject, error)
}

// TypeFetcher loads a CmdbType by public id. Satisfied by
// cmdbsvc.TypesManager.
type TypeFetcher interface {
	FetchType(ctx context.Context, publicID int64) (*models.CmdbType, error)
}

// DefaultMaxDepth bounds reference resolution when no depth is
// configured.
const DefaultMaxDepth = 3

// CmdbRender resolves one object against its type. Reference fields are
// resolved recursively with two bounds: a depth budget, and a visited
// set keyed by public id so an object is rendered at most once per
// render tree. A reference hitting either bound stays a raw id.
type CmdbRender struct {
	objects  ObjectFetcher
	types    TypeFetcher
	maxDepth int
}

// NewCmdbRender builds a renderer. maxDepth <= 0 falls back to
// DefaultMaxDepth.
func NewCmdbRender(objects ObjectFetcher, types TypeFetcher, maxDepth int) *CmdbRender {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &CmdbRender{objects: objects, types: types, maxDepth: maxDepth}
}

// Render fetches the object's type and produces its RenderResult.
func (r *CmdbRender) Render(ctx context.Context, object *models.CmdbObject) (*RenderResult, error) {
	objectType, err := r.types.FetchType(ctx, object.TypeID)
	if err != nil {
		return nil, err
	}
	visited := map[int64]bool{object.PublicID: true}
	return r.render(ctx, object, objectType, r.maxDepth, visited), nil
}

// RenderWithType renders against an already-loaded type, skipping the
// type lookup. Used by the log snapshot path where the type is at hand.
func (r *CmdbRender) RenderWithType(ctx context.Context, object *models.CmdbObject, objectType *models.CmdbType) *RenderResult {
	visited := map[int64]bool{object.PublicID: true}
	return r.render(ctx, object, objectType, r.maxDepth, visited)
}

func (r *CmdbRender) render(ctx context.Context, object *models.CmdbObject, objectType *models.CmdbType, depth int, visited map[int64]bool) *RenderResult {
	result := &RenderResult{
		ObjectInformation: ObjectInformation{
			ObjectID:     object.PublicID,
			Active:       object.Active,
			Version:      object.Version,
			AuthorID:     object.AuthorID,
			EditorID:     object.EditorID,
			CreationTime: object.CreationTime,
			LastEditTime: object.LastEditTime,
		},
		TypeInformation: TypeInformation{
			TypeID:   objectType.PublicID,
			TypeName: objectType.Name,
			Label:    objectType.Label,
			Icon:     objectType.RenderMeta.Icon,
			Active:   objectType.Active,
		},
		Fields:            []RenderedField{},
		Sections:          objectType.RenderMeta.Sections,
		MultiDataSections: object.MultiDataSections,
	}

	mdsFields := objectType.MultiDataFieldNames()
	for _, fieldDef := range objectType.Fields {
		if mdsFields[fieldDef.Name] {
			// Multi-data values live under multi_data_sections and are
			// returned there unresolved.
			continue
		}
		rendered, ok := r.renderField(ctx, object, fieldDef, depth, visited)
		if !ok {
			continue
		}
		result.Fields = append(result.Fields, rendered)
	}

	result.Summaries, result.SummaryLine = r.renderSummary(object, objectType)
	result.Externals = renderExternals(object, objectType)

	return result
}

// renderField resolves one field. The second return is false when the
// field must be omitted from the result (unfetchable reference).
func (r *CmdbRender) renderField(ctx context.Context, object *models.CmdbObject, fieldDef models.TypeField, depth int, visited map[int64]bool) (RenderedField, bool) {
	value, _ := object.GetValue(fieldDef.Name)
	rendered := RenderedField{
		Name:  fieldDef.Name,
		Label: fieldDef.Label,
		Type:  fieldDef.Type,
		Value: value,
	}

	switch fieldDef.Type {
	case models.FieldTypeRef, models.FieldTypeLocation:
		refID, ok := toInt64(value)
		if !ok || refID <= 0 {
			return rendered, true
		}
		rendered.Reference = refID
		if depth <= 0 || visited[refID] {
			// Out of budget or already in this render tree: keep the
			// raw id.
			rendered.Value = refID
			return rendered, true
		}
		referenced, err := r.objects.FetchObject(ctx, refID)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"object_id": object.PublicID,
				"field":     fieldDef.Name,
				"reference": refID,
			}).WithError(err).Warn("Referenced object could not be fetched, field skipped")
			return rendered, false
		}
		referencedType, err := r.types.FetchType(ctx, referenced.TypeID)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"object_id": object.PublicID,
				"field":     fieldDef.Name,
				"reference": refID,
			}).WithError(err).Warn("Referenced object's type could not be fetched, field skipped")
			return rendered, false
		}
		visited[refID] = true
		rendered.Value = r.render(ctx, referenced, referencedType, depth-1, visited)
		return rendered, true

	case models.FieldTypeRefSectionField:
		rendered.Value = flattenRefSectionValue(value)
		return rendered, true

	case models.FieldTypeDate:
		rendered.Value = formatDate(value)
		return rendered, true
	}

	return rendered, true
}

func (r *CmdbRender) renderSummary(object *models.CmdbObject, objectType *models.CmdbType) ([]RenderedField, string) {
	summaries := []RenderedField{}
	parts := []string{}
	for _, name := range objectType.RenderMeta.Summary.Fields {
		fieldDef, ok := objectType.GetField(name)
		if !ok {
			continue
		}
		value, _ := object.GetValue(name)
		summaries = append(summaries, RenderedField{
			Name:  fieldDef.Name,
			Label: fieldDef.Label,
			Type:  fieldDef.Type,
			Value: value,
		})
		parts = append(parts, stringify(value))
	}
	return summaries, strings.Join(parts, " | ")
}

// renderExternals substitutes each {} placeholder in an external link's
// href with its field values in order. A missing or empty field drops
// the whole link.
func renderExternals(object *models.CmdbObject, objectType *models.CmdbType) []RenderedExternal {
	externals := []RenderedExternal{}
	for _, ext := range objectType.RenderMeta.Externals {
		href := ext.Href
		complete := true
		for _, name := range ext.Fields {
			value, ok := object.GetValue(name)
			text := stringify(value)
			if !ok || text == "" {
				complete = false
				break
			}
			href = strings.Replace(href, "{}", text, 1)
		}
		if !complete {
			continue
		}
		externals = append(externals, RenderedExternal{
			Name:  ext.Name,
			Label: ext.Label,
			Icon:  ext.Icon,
			Href:  href,
		})
	}
	return externals
}

// flattenRefSectionValue turns the pre-computed reference payload of a
// ref-section-field ({references: {fields: [{name,value},...]}}) into
// {fields: {name: value}}. Values of any other shape pass through.
func flattenRefSectionValue(value interface{}) interface{} {
	outer, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	references, ok := outer["references"].(map[string]interface{})
	if !ok {
		return value
	}
	rawFields, ok := references["fields"].([]interface{})
	if !ok {
		return value
	}
	flat := map[string]interface{}{}
	for _, raw := range rawFields {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, ok := entry["name"].(string)
		if !ok {
			continue
		}
		flat[name] = entry["value"]
	}
	return map[string]interface{}{"fields": flat}
}

func formatDate(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.Format("2006-01-02")
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format("2006-01-02")
	}
	return value
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func stringify(value interface{}) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	}
	return fmt.Sprintf("%v", value)
}
