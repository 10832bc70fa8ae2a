// Package reportsvc - saved reports and the rule-tree compiler.
package reportsvc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	cmdbmodels "meta_cmdb/internal/api/cmdb/models"
	models "meta_cmdb/internal/api/reports/models"
	"meta_cmdb/internal/logger"
)

// MongoDBQueryBuilder compiles a rule tree into a MongoDB match
// expression scoped to one CmdbType. The constructor precomputes the
// type's field classes so leaf compilation can pick value coercion and
// the right storage path (flat fields vs multi-data sections).
//
// The compiled expression always AND-gates type_id, regardless of the
// tree's own root condition, so a top-level "or" group can never match
// objects of another type.
type MongoDBQueryBuilder struct {
	typeID     int64
	dateFields map[string]bool
	refFields  map[string]bool
	mdsFields  map[string]bool
	degraded   bool
}

// NewMongoDBQueryBuilder indexes the type's fields once.
func NewMongoDBQueryBuilder(reportType *cmdbmodels.CmdbType) *MongoDBQueryBuilder {
	b := &MongoDBQueryBuilder{
		typeID:     reportType.PublicID,
		dateFields: map[string]bool{},
		refFields:  map[string]bool{},
		mdsFields:  reportType.MultiDataFieldNames(),
	}
	for _, field := range reportType.Fields {
		switch field.Type {
		case cmdbmodels.FieldTypeDate:
			b.dateFields[field.Name] = true
		case cmdbmodels.FieldTypeRef, cmdbmodels.FieldTypeRefSectionField, cmdbmodels.FieldTypeLocation:
			b.refFields[field.Name] = true
		}
	}
	return b
}

// Build compiles the tree. A nil tree matches every object of the type.
// Malformed trees (unknown conditions or operators) degrade to the
// type gate alone and raise the Degraded flag instead of failing the
// run.
func (b *MongoDBQueryBuilder) Build(root *models.RuleNode) (query bson.M) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"type_id": b.typeID,
				"reason":  fmt.Sprintf("%v", r),
			}).Warn("Rule tree compilation failed, report degraded to the type gate")
			b.degraded = true
			query = bson.M{"type_id": b.typeID}
		}
	}()

	if root == nil {
		return bson.M{"type_id": b.typeID}
	}
	return bson.M{"$and": []bson.M{
		b.compileGroup(root),
		{"type_id": b.typeID},
	}}
}

// Degraded reports whether the last Build fell back to the type gate.
func (b *MongoDBQueryBuilder) Degraded() bool {
	return b.degraded
}

func (b *MongoDBQueryBuilder) compileGroup(node *models.RuleNode) bson.M {
	var operator string
	switch node.Condition {
	case models.ConditionAnd:
		operator = "$and"
	case models.ConditionOr:
		operator = "$or"
	default:
		panic(fmt.Sprintf("unknown rule condition %q", node.Condition))
	}

	children := make([]bson.M, 0, len(node.Rules))
	for i := range node.Rules {
		child := &node.Rules[i]
		if child.IsGroup() {
			children = append(children, b.compileGroup(child))
		} else {
			children = append(children, b.compileLeaf(child))
		}
	}
	if len(children) == 0 {
		// {"$and": []} is not a valid match document.
		return bson.M{}
	}
	return bson.M{operator: children}
}

// compileLeaf builds the two-clause form the EAV layout requires: the
// object must carry a field with this name, and that field's value must
// satisfy the operator. Fields of multi-data sections are addressed
// through the section rows instead of the flat field list.
func (b *MongoDBQueryBuilder) compileLeaf(leaf *models.RuleNode) bson.M {
	namePath := "fields.name"
	valuePath := "fields.value"
	if b.mdsFields[leaf.Field] {
		namePath = "multi_data_sections.values.data.name"
		valuePath = "multi_data_sections.values.data.value"
	}

	// Absent fields and empty strings count as null.
	switch leaf.Operator {
	case models.OperatorIsNull:
		return bson.M{"$or": []bson.M{
			{namePath: bson.M{"$ne": leaf.Field}},
			{"$and": []bson.M{
				{namePath: leaf.Field},
				{valuePath: bson.M{"$in": []interface{}{nil, ""}}},
			}},
		}}
	case models.OperatorIsNotNull:
		return bson.M{"$and": []bson.M{
			{namePath: leaf.Field},
			{valuePath: bson.M{"$nin": []interface{}{nil, ""}}},
		}}
	}

	var expr bson.M
	switch leaf.Operator {
	case models.OperatorEqual:
		expr = bson.M{"$eq": b.coerce(leaf.Field, leaf.Value)}
	case models.OperatorNotEqual:
		expr = bson.M{"$ne": b.coerce(leaf.Field, leaf.Value)}
	case models.OperatorLessEqual:
		expr = bson.M{"$lte": b.coerce(leaf.Field, leaf.Value)}
	case models.OperatorGreaterEqual:
		expr = bson.M{"$gte": b.coerce(leaf.Field, leaf.Value)}
	case models.OperatorLess:
		expr = bson.M{"$lt": b.coerce(leaf.Field, leaf.Value)}
	case models.OperatorGreater:
		expr = bson.M{"$gt": b.coerce(leaf.Field, leaf.Value)}
	case models.OperatorIn:
		expr = bson.M{"$in": b.coerceList(leaf.Field, leaf.Value)}
	case models.OperatorNotIn:
		expr = bson.M{"$nin": b.coerceList(leaf.Field, leaf.Value)}
	case models.OperatorContains:
		expr = bson.M{"$regex": stringifyValue(leaf.Value)}
	case models.OperatorLike:
		expr = bson.M{"$regex": stringifyValue(leaf.Value), "$options": "i"}
	default:
		panic(fmt.Sprintf("unknown rule operator %q", leaf.Operator))
	}

	return bson.M{"$and": []bson.M{
		{namePath: leaf.Field},
		{valuePath: expr},
	}}
}

// coerce adjusts the comparison value to the field's declared type.
// Failed coercions are logged and the raw value is kept, so a bad value
// narrows one leaf instead of failing the report.
func (b *MongoDBQueryBuilder) coerce(field string, value interface{}) interface{} {
	if b.dateFields[field] {
		if raw, ok := value.(string); ok {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				logger.GetAppLogger().WithFields(logrus.Fields{
					"field": field,
					"value": raw,
				}).Warn("Date value does not parse as YYYY-MM-DD, compared as-is")
				return value
			}
			return parsed
		}
		return value
	}

	if b.refFields[field] {
		if refID, ok := coerceInt64(value); ok {
			return refID
		}
		logger.GetAppLogger().WithFields(logrus.Fields{
			"field": field,
			"value": fmt.Sprintf("%v", value),
		}).Warn("Reference value is not an integer id, compared as-is")
		return value
	}

	return value
}

func (b *MongoDBQueryBuilder) coerceList(field string, value interface{}) []interface{} {
	items, ok := value.([]interface{})
	if !ok {
		panic(fmt.Sprintf("operator in/not in requires a list value for field %q", field))
	}
	coerced := make([]interface{}, len(items))
	for i, item := range items {
		coerced[i] = b.coerce(field, item)
	}
	return coerced
}

func coerceInt64(value interface{}) (int64, bool) {
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

func stringifyValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
