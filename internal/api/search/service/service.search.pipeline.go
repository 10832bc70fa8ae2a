// Package searchsvc - object search: quick counts preview, full search
// with reference inlining, and per-type faceting.
package searchsvc

import (
	"go.mongodb.org/mongo-driver/bson"

	"meta_cmdb/internal/mongoquery"
)

// SearchParams carries one search request. A zero value matches
// everything of every visible type.
type SearchParams struct {
	Term        string  // regex matched against field values
	TypeIDs     []int64 // restrict to these types (disjunction unless Conjunctive)
	Conjunctive bool
	CategoryID  int64 // restrict to the types of one category
	PublicID    int64 // exact public id shortcut, 0 disables
	Resolve     bool  // inline one level of references into the search surface
	Limit       int64
	Skip        int64
}

// QuickSearchPipelineBuilder produces the lightweight preview counts
// {active, inactive, total} for a search term.
type QuickSearchPipelineBuilder struct {
	Base *mongoquery.BaseQueryBuilder
}

// Build assembles the counts pipeline: regex match, type join, ACL,
// then a two-stage group folding the active/inactive buckets into a
// single document.
func (b *QuickSearchPipelineBuilder) Build(term string, groupID int64, permission string) []bson.D {
	stages := []bson.D{
		mongoquery.Match(mongoquery.Regex("fields.value", term, "i")),
	}
	stages = append(stages, b.Base.ObjectLookupStages()...)
	if permission != "" {
		stages = append(stages, mongoquery.AccessControlStages(groupID, permission)...)
	}

	sumWhere := func(active bool) bson.M {
		return bson.M{"$reduce": bson.M{
			"input":        "$levels",
			"initialValue": 0,
			"in": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$$this.active", active}},
				bson.M{"$add": bson.A{"$$value", "$$this.count"}},
				"$$value",
			}},
		}}
	}

	stages = append(stages,
		mongoquery.Group("$active", bson.M{"count": bson.M{"$sum": 1}}),
		mongoquery.Group(nil, bson.M{
			"levels": bson.M{"$push": bson.M{"active": "$_id", "count": "$count"}},
			"total":  bson.M{"$sum": "$count"},
		}),
		mongoquery.Project(bson.M{
			"_id":      0,
			"active":   sumWhere(true),
			"inactive": sumWhere(false),
			"total":    "$total",
		}),
	)
	return stages
}

// SearchReferencesPipelineBuilder inlines one level of reference
// indirection into the search surface: each object's referenced
// objects are joined back in and their fields merged into the field
// list, so a regex against field values also matches values living on
// a referenced object.
type SearchReferencesPipelineBuilder struct {
	ObjectCollection string
}

// Build returns the self-join and field-merge stages. They run before
// any value match.
func (b *SearchReferencesPipelineBuilder) Build() []bson.D {
	refLookup := mongoquery.LookupLet(
		b.ObjectCollection,
		bson.M{"refs": "$fields.value"},
		[]bson.D{
			mongoquery.Match(bson.M{"$expr": bson.M{"$in": bson.A{"$public_id", bson.M{"$ifNull": bson.A{"$$refs", bson.A{}}}}}}),
			mongoquery.Project(bson.M{"_id": 0, "public_id": 1, "fields": 1}),
		},
		"references",
	)

	return []bson.D{
		refLookup,
		mongoquery.AddFields(bson.M{"simple": bson.M{"$reduce": bson.M{
			"input":        "$references",
			"initialValue": bson.A{},
			"in":           bson.M{"$setUnion": bson.A{"$$value", "$$this.fields"}},
		}}}),
		mongoquery.AddFields(bson.M{"fields": bson.M{"$concatArrays": bson.A{
			bson.M{"$ifNull": bson.A{"$fields", bson.A{}}},
			bson.M{"$ifNull": bson.A{"$simple", bson.A{}}},
		}}}),
		mongoquery.Project(bson.M{"references": 0, "simple": 0}),
	}
}

// SearchPipelineBuilder composes the full search pipeline. Each search
// parameter contributes its stage independently.
type SearchPipelineBuilder struct {
	Base             *mongoquery.BaseQueryBuilder
	ObjectCollection string
}

// matchStages builds the filter part shared by the result and count
// sides: reference inlining, term/public-id match, type restriction,
// type join and ACL.
func (b *SearchPipelineBuilder) matchStages(params SearchParams, categoryTypes []int64, groupID int64, permission string) []bson.D {
	stages := []bson.D{}

	if params.Resolve {
		refs := SearchReferencesPipelineBuilder{ObjectCollection: b.ObjectCollection}
		stages = append(stages, refs.Build()...)
	}

	if params.Term != "" {
		termMatch := mongoquery.Regex("fields.value", params.Term, "i")
		if params.PublicID > 0 {
			stages = append(stages, mongoquery.Match(mongoquery.Or([]bson.M{
				termMatch,
				{"public_id": params.PublicID},
			})))
		} else {
			stages = append(stages, mongoquery.Match(termMatch))
		}
	} else if params.PublicID > 0 {
		stages = append(stages, mongoquery.Match(bson.M{"public_id": params.PublicID}))
	}

	typeIDs := params.TypeIDs
	if len(categoryTypes) > 0 {
		typeIDs = intersectTypeIDs(typeIDs, categoryTypes)
	}
	if len(typeIDs) > 0 {
		if params.Conjunctive {
			clauses := make([]bson.M, len(typeIDs))
			for i, id := range typeIDs {
				clauses[i] = mongoquery.TypeID(id)
			}
			stages = append(stages, mongoquery.Match(mongoquery.And(clauses)))
		} else {
			values := make([]interface{}, len(typeIDs))
			for i, id := range typeIDs {
				values[i] = id
			}
			stages = append(stages, mongoquery.Match(mongoquery.In("type_id", values)))
		}
	}

	stages = append(stages, b.Base.ObjectLookupStages()...)
	if permission != "" {
		stages = append(stages, mongoquery.AccessControlStages(groupID, permission)...)
	}
	return stages
}

// Build assembles the faceted search pipeline: the shared match stages
// followed by a $facet computing the result page, the per-type group
// counts and the total in one round-trip.
func (b *SearchPipelineBuilder) Build(params SearchParams, categoryTypes []int64, groupID int64, permission string) []bson.D {
	stages := b.matchStages(params, categoryTypes, groupID, permission)

	results := []bson.D{
		mongoquery.Sort("public_id", 1),
		mongoquery.Skip(params.Skip),
	}
	if params.Limit > 0 {
		results = append(results, mongoquery.Limit(params.Limit))
	}

	stages = append(stages, mongoquery.Facet(map[string][]bson.D{
		"results": results,
		"groups": {
			mongoquery.Group("$type_id", bson.M{"count": bson.M{"$sum": 1}}),
			mongoquery.Sort("count", -1),
		},
		"total": {
			mongoquery.Count("total"),
		},
	}))
	return stages
}

// BuildGroups assembles the standalone per-type count pipeline: no
// term filter, just the type join, the ACL and a count fold ordered by
// size.
func (b *SearchPipelineBuilder) BuildGroups(groupID int64, permission string) []bson.D {
	stages := b.Base.ObjectLookupStages()
	if permission != "" {
		stages = append(stages, mongoquery.AccessControlStages(groupID, permission)...)
	}
	return append(stages,
		mongoquery.Group("$type_id", bson.M{"count": bson.M{"$sum": 1}}),
		mongoquery.Sort("count", -1),
	)
}

// intersectTypeIDs narrows requested against the category's types. An
// empty request means the category types alone.
func intersectTypeIDs(requested, category []int64) []int64 {
	if len(requested) == 0 {
		return category
	}
	allowed := make(map[int64]bool, len(category))
	for _, id := range category {
		allowed[id] = true
	}
	out := []int64{}
	for _, id := range requested {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}
