package mongoquery

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
)

// Access-control fragments. A type's ACL is stored as
// {activated: bool, groups: {includes: {"<group_id>": [permissions]}}}.
// When the ACL is not activated (or absent) access is granted by
// default; when activated, the requesting user's group must carry the
// requested permission. Every manager that iterates user-facing
// collections must append these stages — omitting them is a security
// defect.

// aclGrantExpr builds the grant predicate for an ACL document reachable
// under prefix ("acl" on types, "type.acl" on joined object pipelines).
func aclGrantExpr(prefix string, groupID int64, permission string) bson.M {
	group := strconv.FormatInt(groupID, 10)
	return Or([]bson.M{
		{prefix: bson.M{"$exists": false}},
		{prefix: nil},
		{prefix + ".activated": false},
		{prefix + ".groups.includes." + group: bson.M{"$all": bson.A{permission}}},
	})
}

// AccessControlStages returns the pipeline stages restricting an object
// pipeline to documents whose joined type grants the permission to the
// group. The object pipeline must have joined the type as "type" first.
// A non-positive group or empty permission fails closed: the returned
// stage matches nothing.
func AccessControlStages(groupID int64, permission string) []bson.D {
	if groupID <= 0 || permission == "" {
		return []bson.D{Match(MatchNothing())}
	}
	return []bson.D{Match(aclGrantExpr("type.acl", groupID, permission))}
}

// TypeAccessControlStages returns the stages restricting a pipeline over
// the types collection itself, where the ACL sits on the root document.
// Fails closed on malformed input like AccessControlStages.
func TypeAccessControlStages(groupID int64, permission string) []bson.D {
	if groupID <= 0 || permission == "" {
		return []bson.D{Match(MatchNothing())}
	}
	return []bson.D{Match(aclGrantExpr("acl", groupID, permission))}
}
