// Package mongoquery builds MongoDB aggregation pipelines: single-stage
// factories, access-control fragments and the base pipeline composer
// used by every manager iteration.
package mongoquery

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Stage factories. Each returns one canonical aggregation stage document,
// pure data transforms with no error surface.

// Match builds a $match stage from a match expression.
func Match(expr bson.M) bson.D {
	return bson.D{{Key: "$match", Value: expr}}
}

// Project builds a $project stage.
func Project(spec bson.M) bson.D {
	return bson.D{{Key: "$project", Value: spec}}
}

// Lookup builds a $lookup stage joining another collection.
func Lookup(from, localField, foreignField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   localField,
		"foreignField": foreignField,
		"as":           as,
	}}}
}

// LookupLet builds a $lookup stage in pipeline form, binding variables
// from the outer document.
func LookupLet(from string, let bson.M, pipeline []bson.D, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":     from,
		"let":      let,
		"pipeline": pipeline,
		"as":       as,
	}}}
}

// Unwind builds a plain $unwind stage for the given path ("$field").
func Unwind(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: path}}
}

// UnwindPreserve builds an $unwind stage that keeps documents whose
// array is empty or missing.
func UnwindPreserve(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{
		"path":                       path,
		"preserveNullAndEmptyArrays": true,
	}}}
}

// Group builds a $group stage with the given _id expression and
// accumulator spec.
func Group(id interface{}, spec bson.M) bson.D {
	value := bson.M{"_id": id}
	for k, v := range spec {
		value[k] = v
	}
	return bson.D{{Key: "$group", Value: value}}
}

// Sort builds a $sort stage on one field. order is 1 or -1.
func Sort(field string, order int) bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: order}}}}
}

// Skip builds a $skip stage.
func Skip(n int64) bson.D {
	return bson.D{{Key: "$skip", Value: n}}
}

// Limit builds a $limit stage.
func Limit(n int64) bson.D {
	return bson.D{{Key: "$limit", Value: n}}
}

// Count builds a $count stage writing the total into the named field.
func Count(field string) bson.D {
	return bson.D{{Key: "$count", Value: field}}
}

// AddFields builds an $addFields stage.
func AddFields(spec bson.M) bson.D {
	return bson.D{{Key: "$addFields", Value: spec}}
}

// Facet builds a $facet stage from named sub-pipelines.
func Facet(pipelines map[string][]bson.D) bson.D {
	value := bson.M{}
	for name, pipeline := range pipelines {
		value[name] = pipeline
	}
	return bson.D{{Key: "$facet", Value: value}}
}

// Predicate combinators, used inside $match expressions.

// And combines expressions with $and.
func And(exprs []bson.M) bson.M {
	return bson.M{"$and": exprs}
}

// Or combines expressions with $or.
func Or(exprs []bson.M) bson.M {
	return bson.M{"$or": exprs}
}

// In matches documents whose field value is in the given list.
func In(field string, values []interface{}) bson.M {
	return bson.M{field: bson.M{"$in": values}}
}

// Regex matches the field against a regular expression with options.
func Regex(field, pattern, options string) bson.M {
	return bson.M{field: bson.M{"$regex": pattern, "$options": options}}
}

// Exists matches documents where the field is present (or absent).
func Exists(field string, exists bool) bson.M {
	return bson.M{field: bson.M{"$exists": exists}}
}

// TypeID matches documents belonging to one schema type.
func TypeID(typeID int64) bson.M {
	return bson.M{"type_id": typeID}
}

// MatchNothing is a match expression that no document satisfies, used
// as the fail-closed fallback for access-control fragments.
func MatchNothing() bson.M {
	return bson.M{"$expr": bson.M{"$eq": bson.A{1, 0}}}
}
