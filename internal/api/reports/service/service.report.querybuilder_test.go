package reportsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	cmdbmodels "meta_cmdb/internal/api/cmdb/models"
	models "meta_cmdb/internal/api/reports/models"
)

func routerType() *cmdbmodels.CmdbType {
	return &cmdbmodels.CmdbType{
		PublicID: 1,
		Name:     "router",
		Active:   true,
		Fields: []cmdbmodels.TypeField{
			{Name: "ip", Type: cmdbmodels.FieldTypeText},
			{Name: "installed", Type: cmdbmodels.FieldTypeDate},
			{Name: "uplink", Type: cmdbmodels.FieldTypeRef},
			{Name: "port", Type: cmdbmodels.FieldTypeNumber},
		},
		RenderMeta: cmdbmodels.TypeRenderMeta{
			Sections: []cmdbmodels.TypeSection{
				{
					Type:   cmdbmodels.SectionTypeMultiData,
					Name:   "interfaces",
					Fields: []interface{}{"port"},
				},
			},
		},
	}
}

// typeGate extracts the type_id clause a compiled query must carry.
func typeGate(t *testing.T, query bson.M) bson.M {
	t.Helper()
	clauses, ok := query["$and"].([]bson.M)
	if !ok {
		// Degraded or empty-tree form.
		require.Equal(t, int64(1), query["type_id"])
		return query
	}
	gate := clauses[len(clauses)-1]
	require.Equal(t, int64(1), gate["type_id"])
	return gate
}

func TestBuildAlwaysGatesTypeID(t *testing.T) {
	leaf := models.RuleNode{Field: "ip", Operator: models.OperatorEqual, Value: "10.0.0.1"}

	trees := map[string]*models.RuleNode{
		"and group":           {Condition: models.ConditionAnd, Rules: []models.RuleNode{leaf}},
		"or group":            {Condition: models.ConditionOr, Rules: []models.RuleNode{leaf}},
		"single-leaf or":      {Condition: models.ConditionOr, Rules: []models.RuleNode{leaf}},
		"nested or inside or": {Condition: models.ConditionOr, Rules: []models.RuleNode{{Condition: models.ConditionOr, Rules: []models.RuleNode{leaf}}}},
		"nil tree":            nil,
	}

	for name, tree := range trees {
		t.Run(name, func(t *testing.T) {
			b := NewMongoDBQueryBuilder(routerType())
			query := b.Build(tree)
			typeGate(t, query)
			assert.False(t, b.Degraded())
		})
	}
}

func TestBuildEndToEndScenarioShape(t *testing.T) {
	// Type 1 with one text field ip; rule ip = 10.0.0.1 must compile to
	// the two-clause EAV form under the type gate.
	b := NewMongoDBQueryBuilder(routerType())
	query := b.Build(&models.RuleNode{
		Condition: models.ConditionAnd,
		Rules:     []models.RuleNode{{Field: "ip", Operator: models.OperatorEqual, Value: "10.0.0.1"}},
	})

	clauses := query["$and"].([]bson.M)
	require.Len(t, clauses, 2)
	assert.Equal(t, bson.M{"type_id": int64(1)}, clauses[1])

	group := clauses[0]["$and"].([]bson.M)
	require.Len(t, group, 1)
	leaf := group[0]["$and"].([]bson.M)
	assert.Equal(t, bson.M{"fields.name": "ip"}, leaf[0])
	assert.Equal(t, bson.M{"fields.value": bson.M{"$eq": "10.0.0.1"}}, leaf[1])
}

func TestBuildNullOperatorsTreatEmptyAndAbsentAlike(t *testing.T) {
	b := NewMongoDBQueryBuilder(routerType())
	query := b.Build(&models.RuleNode{
		Condition: models.ConditionAnd,
		Rules:     []models.RuleNode{{Field: "ip", Operator: models.OperatorIsNull}},
	})

	group := query["$and"].([]bson.M)[0]["$and"].([]bson.M)
	branches := group[0]["$or"].([]bson.M)
	require.Len(t, branches, 2)

	// Absent field branch.
	assert.Equal(t, bson.M{"fields.name": bson.M{"$ne": "ip"}}, branches[0])

	// Present-but-null-or-empty branch.
	present := branches[1]["$and"].([]bson.M)
	assert.Equal(t, bson.M{"fields.name": "ip"}, present[0])
	assert.Equal(t, bson.M{"fields.value": bson.M{"$in": []interface{}{nil, ""}}}, present[1])

	// is not null is the exact mirror.
	b2 := NewMongoDBQueryBuilder(routerType())
	notNull := b2.Build(&models.RuleNode{
		Condition: models.ConditionAnd,
		Rules:     []models.RuleNode{{Field: "ip", Operator: models.OperatorIsNotNull}},
	})
	leaf := notNull["$and"].([]bson.M)[0]["$and"].([]bson.M)[0]["$and"].([]bson.M)
	assert.Equal(t, bson.M{"fields.value": bson.M{"$nin": []interface{}{nil, ""}}}, leaf[1])
}

func TestBuildOperatorGrid(t *testing.T) {
	cases := []struct {
		operator string
		value    interface{}
		expected bson.M
	}{
		{models.OperatorEqual, "a", bson.M{"$eq": "a"}},
		{models.OperatorNotEqual, "a", bson.M{"$ne": "a"}},
		{models.OperatorLessEqual, 5, bson.M{"$lte": 5}},
		{models.OperatorGreaterEqual, 5, bson.M{"$gte": 5}},
		{models.OperatorLess, 5, bson.M{"$lt": 5}},
		{models.OperatorGreater, 5, bson.M{"$gt": 5}},
		{models.OperatorIn, []interface{}{"a", "b"}, bson.M{"$in": []interface{}{"a", "b"}}},
		{models.OperatorNotIn, []interface{}{"a"}, bson.M{"$nin": []interface{}{"a"}}},
		{models.OperatorContains, "10.0", bson.M{"$regex": "10.0"}},
		{models.OperatorLike, "edge", bson.M{"$regex": "edge", "$options": "i"}},
	}

	for _, tc := range cases {
		t.Run(tc.operator, func(t *testing.T) {
			b := NewMongoDBQueryBuilder(routerType())
			query := b.Build(&models.RuleNode{
				Condition: models.ConditionAnd,
				Rules:     []models.RuleNode{{Field: "ip", Operator: tc.operator, Value: tc.value}},
			})
			leaf := query["$and"].([]bson.M)[0]["$and"].([]bson.M)[0]["$and"].([]bson.M)
			assert.Equal(t, bson.M{"fields.value": tc.expected}, leaf[1])
		})
	}
}

func TestBuildCoercesDateAndRefValues(t *testing.T) {
	b := NewMongoDBQueryBuilder(routerType())
	query := b.Build(&models.RuleNode{
		Condition: models.ConditionAnd,
		Rules: []models.RuleNode{
			{Field: "installed", Operator: models.OperatorGreaterEqual, Value: "2026-01-15"},
			{Field: "uplink", Operator: models.OperatorEqual, Value: "42"},
		},
	})

	group := query["$and"].([]bson.M)[0]["$and"].([]bson.M)

	dateLeaf := group[0]["$and"].([]bson.M)
	expected := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, bson.M{"fields.value": bson.M{"$gte": expected}}, dateLeaf[1])

	refLeaf := group[1]["$and"].([]bson.M)
	assert.Equal(t, bson.M{"fields.value": bson.M{"$eq": int64(42)}}, refLeaf[1])
}

func TestBuildKeepsUnparseableValuesAsIs(t *testing.T) {
	b := NewMongoDBQueryBuilder(routerType())
	query := b.Build(&models.RuleNode{
		Condition: models.ConditionAnd,
		Rules: []models.RuleNode{
			{Field: "installed", Operator: models.OperatorEqual, Value: "not-a-date"},
			{Field: "uplink", Operator: models.OperatorEqual, Value: "core-switch"},
		},
	})

	group := query["$and"].([]bson.M)[0]["$and"].([]bson.M)
	assert.Equal(t, bson.M{"fields.value": bson.M{"$eq": "not-a-date"}}, group[0]["$and"].([]bson.M)[1])
	assert.Equal(t, bson.M{"fields.value": bson.M{"$eq": "core-switch"}}, group[1]["$and"].([]bson.M)[1])
	assert.False(t, b.Degraded())
}

func TestBuildTargetsMultiDataSectionPaths(t *testing.T) {
	b := NewMongoDBQueryBuilder(routerType())
	query := b.Build(&models.RuleNode{
		Condition: models.ConditionAnd,
		Rules:     []models.RuleNode{{Field: "port", Operator: models.OperatorEqual, Value: 443}},
	})

	leaf := query["$and"].([]bson.M)[0]["$and"].([]bson.M)[0]["$and"].([]bson.M)
	assert.Equal(t, bson.M{"multi_data_sections.values.data.name": "port"}, leaf[0])
	assert.Equal(t, bson.M{"multi_data_sections.values.data.value": bson.M{"$eq": 443}}, leaf[1])
}

func TestBuildDegradesToTypeGateOnMalformedTree(t *testing.T) {
	cases := map[string]*models.RuleNode{
		"unknown condition": {Condition: "xor", Rules: []models.RuleNode{{Field: "ip", Operator: models.OperatorEqual, Value: "x"}}},
		"unknown operator":  {Condition: models.ConditionAnd, Rules: []models.RuleNode{{Field: "ip", Operator: "between", Value: "x"}}},
		"non-list in":       {Condition: models.ConditionAnd, Rules: []models.RuleNode{{Field: "ip", Operator: models.OperatorIn, Value: "x"}}},
	}

	for name, tree := range cases {
		t.Run(name, func(t *testing.T) {
			b := NewMongoDBQueryBuilder(routerType())
			query := b.Build(tree)
			assert.Equal(t, bson.M{"type_id": int64(1)}, query)
			assert.True(t, b.Degraded())
		})
	}
}
