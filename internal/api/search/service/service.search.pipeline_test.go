package searchsvc

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"meta_cmdb/internal/mongoquery"
)

func testBase() *mongoquery.BaseQueryBuilder {
	return mongoquery.NewBaseQueryBuilder("cmdb_types", "users")
}

func stageName(stage bson.D) string {
	if len(stage) == 0 {
		return ""
	}
	return stage[0].Key
}

func stageNames(stages []bson.D) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = stageName(s)
	}
	return names
}

func assertStageOrder(t *testing.T, stages []bson.D, want []string) {
	t.Helper()
	got := stageNames(stages)
	if len(got) != len(want) {
		t.Fatalf("stage count = %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d = %s, want %s (pipeline %v)", i, got[i], want[i], got)
		}
	}
}

func TestQuickSearchPipelineShape(t *testing.T) {
	b := QuickSearchPipelineBuilder{Base: testBase()}
	stages := b.Build("router", 2, "base.framework.object.view")

	names := stageNames(stages)
	if names[0] != "$match" {
		t.Fatalf("first stage = %s, want $match", names[0])
	}
	if names[len(names)-1] != "$project" {
		t.Fatalf("last stage = %s, want $project", names[len(names)-1])
	}

	groups := 0
	for _, n := range names {
		if n == "$group" {
			groups++
		}
	}
	if groups != 2 {
		t.Fatalf("group stages = %d, want 2", groups)
	}

	project, ok := stages[len(stages)-1][0].Value.(bson.M)
	if !ok {
		t.Fatalf("project spec is %T, want bson.M", stages[len(stages)-1][0].Value)
	}
	for _, key := range []string{"active", "inactive", "total"} {
		if _, found := project[key]; !found {
			t.Fatalf("project spec missing %q: %v", key, project)
		}
	}
}

func TestQuickSearchSkipsACLWithoutPermission(t *testing.T) {
	b := QuickSearchPipelineBuilder{Base: testBase()}
	with := len(b.Build("router", 2, "base.framework.object.view"))
	without := len(b.Build("router", 2, ""))
	if without >= with {
		t.Fatalf("pipeline without permission has %d stages, with permission %d", without, with)
	}
}

func TestSearchPipelineEndsInFacet(t *testing.T) {
	b := SearchPipelineBuilder{Base: testBase(), ObjectCollection: "cmdb_objects"}
	stages := b.Build(SearchParams{Term: "router", Limit: 10}, nil, 2, "base.framework.object.view")

	last := stages[len(stages)-1]
	if stageName(last) != "$facet" {
		t.Fatalf("last stage = %s, want $facet", stageName(last))
	}
	facets, ok := last[0].Value.(map[string][]bson.D)
	if !ok {
		t.Fatalf("facet spec is %T", last[0].Value)
	}
	for _, key := range []string{"results", "groups", "total"} {
		if _, found := facets[key]; !found {
			t.Fatalf("facet missing %q side", key)
		}
	}

	assertStageOrder(t, facets["results"], []string{"$sort", "$skip", "$limit"})
	assertStageOrder(t, facets["groups"], []string{"$group", "$sort"})
	assertStageOrder(t, facets["total"], []string{"$count"})
}

func TestBuildGroupsFoldsByTypeID(t *testing.T) {
	b := SearchPipelineBuilder{Base: testBase(), ObjectCollection: "cmdb_objects"}
	stages := b.BuildGroups(2, "base.framework.object.view")

	names := stageNames(stages)
	if names[len(names)-2] != "$group" || names[len(names)-1] != "$sort" {
		t.Fatalf("pipeline tail = %v, want $group then $sort", names[len(names)-2:])
	}

	group := stages[len(stages)-2][0].Value.(bson.M)
	if group["_id"] != "$type_id" {
		t.Fatalf("group key = %v, want $type_id", group["_id"])
	}

	without := b.BuildGroups(2, "")
	if len(without) >= len(stages) {
		t.Fatalf("pipeline without permission has %d stages, with permission %d", len(without), len(stages))
	}
}

func TestSearchPipelineOmitsLimitWhenZero(t *testing.T) {
	b := SearchPipelineBuilder{Base: testBase(), ObjectCollection: "cmdb_objects"}
	stages := b.Build(SearchParams{Term: "router"}, nil, 2, "")

	last := stages[len(stages)-1]
	facets := last[0].Value.(map[string][]bson.D)
	assertStageOrder(t, facets["results"], []string{"$sort", "$skip"})
}

func TestSearchMatchesTermOrPublicID(t *testing.T) {
	b := SearchPipelineBuilder{Base: testBase(), ObjectCollection: "cmdb_objects"}
	stages := b.matchStages(SearchParams{Term: "42", PublicID: 42}, nil, 2, "")

	match, ok := stages[0][0].Value.(bson.M)
	if !ok || stageName(stages[0]) != "$match" {
		t.Fatalf("first stage = %v, want a $match", stages[0])
	}
	clauses, ok := match["$or"].([]bson.M)
	if !ok || len(clauses) != 2 {
		t.Fatalf("term+id match = %v, want two-clause $or", match)
	}
	if clauses[1]["public_id"] != int64(42) {
		t.Fatalf("public id clause = %v", clauses[1])
	}
}

func TestSearchTypeRestrictionModes(t *testing.T) {
	b := SearchPipelineBuilder{Base: testBase(), ObjectCollection: "cmdb_objects"}

	t.Run("disjunctive uses in", func(t *testing.T) {
		stages := b.matchStages(SearchParams{TypeIDs: []int64{1, 2}}, nil, 2, "")
		match := stages[0][0].Value.(bson.M)
		typeClause, ok := match["type_id"].(bson.M)
		if !ok {
			t.Fatalf("type restriction = %v, want type_id $in", match)
		}
		values := typeClause["$in"].([]interface{})
		if len(values) != 2 {
			t.Fatalf("$in values = %v", values)
		}
	})

	t.Run("conjunctive ands the clauses", func(t *testing.T) {
		stages := b.matchStages(SearchParams{TypeIDs: []int64{1, 2}, Conjunctive: true}, nil, 2, "")
		match := stages[0][0].Value.(bson.M)
		clauses, ok := match["$and"].([]bson.M)
		if !ok || len(clauses) != 2 {
			t.Fatalf("type restriction = %v, want two-clause $and", match)
		}
	})
}

func TestSearchCategoryNarrowsTypeIDs(t *testing.T) {
	b := SearchPipelineBuilder{Base: testBase(), ObjectCollection: "cmdb_objects"}
	stages := b.matchStages(SearchParams{TypeIDs: []int64{1, 2, 3}}, []int64{2, 3, 9}, 2, "")

	match := stages[0][0].Value.(bson.M)
	values := match["type_id"].(bson.M)["$in"].([]interface{})
	if len(values) != 2 || values[0] != int64(2) || values[1] != int64(3) {
		t.Fatalf("narrowed type ids = %v, want [2 3]", values)
	}
}

func TestSearchResolvePrependsReferenceInlining(t *testing.T) {
	b := SearchPipelineBuilder{Base: testBase(), ObjectCollection: "cmdb_objects"}
	stages := b.matchStages(SearchParams{Term: "router", Resolve: true}, nil, 2, "")

	assertStageOrder(t, stages[:4], []string{"$lookup", "$addFields", "$addFields", "$project"})
	if stageName(stages[4]) != "$match" {
		t.Fatalf("term match should follow the inlining stages, got %s", stageName(stages[4]))
	}
}

func TestReferenceInliningMergesFields(t *testing.T) {
	b := SearchReferencesPipelineBuilder{ObjectCollection: "cmdb_objects"}
	stages := b.Build()

	assertStageOrder(t, stages, []string{"$lookup", "$addFields", "$addFields", "$project"})

	merge := stages[2][0].Value.(bson.M)
	fields, ok := merge["fields"].(bson.M)
	if !ok {
		t.Fatalf("field merge spec = %v", merge)
	}
	if _, found := fields["$concatArrays"]; !found {
		t.Fatalf("field merge should concat own and referenced fields: %v", fields)
	}

	cleanup := stages[3][0].Value.(bson.M)
	if cleanup["references"] != 0 || cleanup["simple"] != 0 {
		t.Fatalf("cleanup projection should drop the scratch fields: %v", cleanup)
	}
}

func TestIntersectTypeIDs(t *testing.T) {
	t.Run("empty request keeps category types", func(t *testing.T) {
		got := intersectTypeIDs(nil, []int64{4, 5})
		if len(got) != 2 {
			t.Fatalf("got %v, want [4 5]", got)
		}
	})

	t.Run("disjoint sets yield empty", func(t *testing.T) {
		got := intersectTypeIDs([]int64{1}, []int64{4, 5})
		if len(got) != 0 {
			t.Fatalf("got %v, want empty", got)
		}
	})
}
