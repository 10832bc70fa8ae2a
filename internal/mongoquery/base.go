package mongoquery

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BaseQueryBuilder composes full aggregation pipelines from
// BuilderParameters plus optional access control. In object mode it
// joins the owning type and the author/editor users into each document,
// dropping objects whose type no longer exists.
type BaseQueryBuilder struct {
	TypeCollection string // joined on type_id -> public_id in object mode
	UserCollection string // joined on author_id/editor_id -> public_id
}

// NewBaseQueryBuilder creates a builder joining against the given
// type and user collections.
func NewBaseQueryBuilder(typeCollection, userCollection string) *BaseQueryBuilder {
	return &BaseQueryBuilder{
		TypeCollection: typeCollection,
		UserCollection: userCollection,
	}
}

// criteriaStages normalizes the criteria into pipeline stages: a match
// document becomes a single $match, a stage list is used as-is.
func criteriaStages(criteria interface{}) []bson.D {
	switch c := criteria.(type) {
	case nil:
		return nil
	case bson.M:
		return []bson.D{Match(c)}
	case map[string]interface{}:
		return []bson.D{Match(bson.M(c))}
	case mongo.Pipeline:
		return []bson.D(c)
	case []bson.D:
		return c
	case []bson.M:
		stages := make([]bson.D, 0, len(c))
		for _, stage := range c {
			d := bson.D{}
			for k, v := range stage {
				d = append(d, bson.E{Key: k, Value: v})
			}
			stages = append(stages, d)
		}
		return stages
	default:
		return nil
	}
}

// objectLookupStages joins the owning type and the author/editor users.
// Author and editor are unwound with preserveNullAndEmptyArrays so
// objects survive a missing user; objects whose type was deleted are
// dropped by the $ne null match on the joined type, which is how orphan
// objects disappear from listings.
func (b *BaseQueryBuilder) objectLookupStages() []bson.D {
	return []bson.D{
		Lookup(b.TypeCollection, "type_id", "public_id", "type"),
		UnwindPreserve("$type"),
		Match(bson.M{"type": bson.M{"$ne": nil}}),
		Lookup(b.UserCollection, "author_id", "public_id", "author"),
		UnwindPreserve("$author"),
		Lookup(b.UserCollection, "editor_id", "public_id", "editor"),
		UnwindPreserve("$editor"),
	}
}

// ObjectLookupStages exposes the object-mode joins for pipelines that
// are assembled outside Build, such as the search builders.
func (b *BaseQueryBuilder) ObjectLookupStages() []bson.D {
	return b.objectLookupStages()
}

// sortStages applies the requested sort. Sorting by a value inside the
// fields array needs an $addFields computing the matching sub-array
// first, since a predicate-matched array element cannot be sorted on
// directly.
func sortStages(sort string, order int) []bson.D {
	if sort == "" {
		return nil
	}
	if order == 0 {
		order = 1
	}
	if strings.HasPrefix(sort, "fields.") {
		fieldName := strings.TrimPrefix(sort, "fields.")
		return []bson.D{
			AddFields(bson.M{"order": bson.M{"$filter": bson.M{
				"input": "$fields",
				"as":    "field",
				"cond":  bson.M{"$eq": bson.A{"$$field.name", fieldName}},
			}}}),
			Sort("order.value", order),
		}
	}
	return []bson.D{Sort(sort, order)}
}

// Build composes the full pipeline:
// criteria -> [object lookups] -> sort -> skip -> [acl] -> [limit].
// Skip is always applied; limit only when positive (0 means unlimited).
// ACL stages are spliced in when a permission is requested, failing
// closed for a malformed group.
func (b *BaseQueryBuilder) Build(params BuilderParameters, objectMode bool, groupID int64, permission string) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	pipeline = append(pipeline, criteriaStages(params.Criteria)...)

	if objectMode {
		pipeline = append(pipeline, b.objectLookupStages()...)
	}

	pipeline = append(pipeline, sortStages(params.Sort, params.Order)...)
	pipeline = append(pipeline, Skip(params.Skip))

	if permission != "" {
		if objectMode {
			pipeline = append(pipeline, AccessControlStages(groupID, permission)...)
		} else {
			pipeline = append(pipeline, TypeAccessControlStages(groupID, permission)...)
		}
	}

	if params.Limit > 0 {
		pipeline = append(pipeline, Limit(params.Limit))
	}

	return pipeline
}

// BuildCount composes the matching count pipeline, ending in
// {$count: "total"}. Sort and pagination are omitted; criteria, object
// lookups and ACL are kept so the total reflects exactly the documents
// Build would return before pagination.
func (b *BaseQueryBuilder) BuildCount(params BuilderParameters, objectMode bool, groupID int64, permission string) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	pipeline = append(pipeline, criteriaStages(params.Criteria)...)

	if objectMode {
		pipeline = append(pipeline, b.objectLookupStages()...)
	}

	if permission != "" {
		if objectMode {
			pipeline = append(pipeline, AccessControlStages(groupID, permission)...)
		} else {
			pipeline = append(pipeline, TypeAccessControlStages(groupID, permission)...)
		}
	}

	pipeline = append(pipeline, Count("total"))
	return pipeline
}
