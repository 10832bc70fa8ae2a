package mongoquery

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func stageKinds(pipeline []bson.D) []string {
	kinds := make([]string, 0, len(pipeline))
	for _, stage := range pipeline {
		if len(stage) > 0 {
			kinds = append(kinds, stage[0].Key)
		}
	}
	return kinds
}

func assertKinds(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("stage count mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d: got %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestBuildStageOrderPlain(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{
		Criteria: bson.M{"active": true},
		Limit:    10,
		Skip:     5,
		Sort:     "public_id",
		Order:    1,
	}

	pipeline := b.Build(params, false, 0, "")
	assertKinds(t, stageKinds(pipeline), []string{"$match", "$sort", "$skip", "$limit"})
}

func TestBuildStageOrderObjectMode(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{
		Criteria: bson.M{"type_id": int64(1)},
		Limit:    20,
		Skip:     0,
		Sort:     "public_id",
		Order:    -1,
	}

	pipeline := b.Build(params, true, 7, "objects.read")
	assertKinds(t, stageKinds(pipeline), []string{
		"$match",
		"$lookup", "$unwind", "$match", // type join, orphan drop
		"$lookup", "$unwind", // author
		"$lookup", "$unwind", // editor
		"$sort",
		"$skip",
		"$match", // acl
		"$limit",
	})
}

func TestBuildDeterministic(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{
		Criteria: bson.M{"active": true},
		Limit:    10,
		Skip:     2,
		Sort:     "name",
		Order:    1,
	}

	first := stageKinds(b.Build(params, true, 3, "objects.read"))
	for i := 0; i < 5; i++ {
		assertKinds(t, stageKinds(b.Build(params, true, 3, "objects.read")), first)
	}
}

func TestBuildLimitZeroMeansUnlimited(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{Criteria: bson.M{}, Limit: 0, Skip: 0, Sort: "public_id", Order: 1}

	pipeline := b.Build(params, false, 0, "")
	for _, kind := range stageKinds(pipeline) {
		if kind == "$limit" {
			t.Fatal("limit 0 must not produce a $limit stage")
		}
	}
}

func TestBuildSkipAlwaysApplied(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{Criteria: bson.M{}, Skip: 0, Sort: "public_id", Order: 1}

	found := false
	for _, kind := range stageKinds(b.Build(params, false, 0, "")) {
		if kind == "$skip" {
			found = true
		}
	}
	if !found {
		t.Fatal("skip stage missing even though skip is always applied")
	}
}

func TestBuildSortByFieldValueUsesAddFields(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{Criteria: bson.M{}, Sort: "fields.hostname", Order: 1}

	pipeline := b.Build(params, false, 0, "")
	kinds := stageKinds(pipeline)
	assertKinds(t, kinds, []string{"$match", "$addFields", "$sort", "$skip"})

	addFields := pipeline[1][0].Value.(bson.M)
	if _, ok := addFields["order"]; !ok {
		t.Fatal("expected $addFields to compute the order sub-array")
	}
	sortDoc := pipeline[2][0].Value.(bson.D)
	if sortDoc[0].Key != "order.value" {
		t.Fatalf("expected sort on order.value, got %s", sortDoc[0].Key)
	}
}

func TestBuildCriteriaAsStageList(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	criteria := []bson.D{
		Match(bson.M{"active": true}),
		Match(bson.M{"type_id": int64(2)}),
	}
	params := BuilderParameters{Criteria: criteria, Sort: "public_id", Order: 1}

	pipeline := b.Build(params, false, 0, "")
	assertKinds(t, stageKinds(pipeline), []string{"$match", "$match", "$sort", "$skip"})
}

func TestBuildCountEndsWithCount(t *testing.T) {
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{Criteria: bson.M{"active": true}, Limit: 10, Skip: 5, Sort: "name", Order: 1}

	pipeline := b.BuildCount(params, true, 7, "objects.read")
	kinds := stageKinds(pipeline)
	if kinds[len(kinds)-1] != "$count" {
		t.Fatalf("count pipeline must end in $count, got %v", kinds)
	}
	for _, kind := range kinds {
		if kind == "$sort" || kind == "$skip" || kind == "$limit" {
			t.Fatalf("count pipeline must not paginate or sort, got %v", kinds)
		}
	}
}

func TestBuildCountKeepsObjectLookups(t *testing.T) {
	// Even with empty criteria the type join runs, so totals only count
	// objects with a resolvable type.
	b := NewBaseQueryBuilder("cmdb_types", "users")
	params := BuilderParameters{Criteria: bson.M{}, Sort: "public_id", Order: 1}

	kinds := stageKinds(b.BuildCount(params, true, 0, ""))
	lookups := 0
	for _, kind := range kinds {
		if kind == "$lookup" {
			lookups++
		}
	}
	if lookups != 3 {
		t.Fatalf("expected 3 lookups (type, author, editor), got %d in %v", lookups, kinds)
	}
}
