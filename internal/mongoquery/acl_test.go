package mongoquery

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestAccessControlFailsClosedOnBadGroup(t *testing.T) {
	cases := []struct {
		name       string
		groupID    int64
		permission string
	}{
		{"zero group", 0, "objects.read"},
		{"negative group", -4, "objects.read"},
		{"empty permission", 12, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stages := AccessControlStages(tc.groupID, tc.permission)
			if len(stages) != 1 {
				t.Fatalf("expected one stage, got %d", len(stages))
			}
			expr := stages[0][0].Value.(bson.M)
			if !reflect.DeepEqual(expr, MatchNothing()) {
				t.Fatalf("expected match-nothing expression, got %v", expr)
			}
		})
	}
}

func TestAccessControlGrantExpr(t *testing.T) {
	stages := AccessControlStages(3, "objects.read")
	if len(stages) != 1 {
		t.Fatalf("expected one stage, got %d", len(stages))
	}
	if stages[0][0].Key != "$match" {
		t.Fatalf("expected $match stage, got %s", stages[0][0].Key)
	}

	expr := stages[0][0].Value.(bson.M)
	branches, ok := expr["$or"].([]bson.M)
	if !ok {
		t.Fatalf("expected $or grant expression, got %v", expr)
	}

	// Default-allow branches for absent or deactivated ACLs, plus the
	// group permission check.
	foundGroupBranch := false
	for _, branch := range branches {
		if cond, ok := branch["type.acl.groups.includes.3"]; ok {
			foundGroupBranch = true
			all := cond.(bson.M)["$all"].(bson.A)
			if len(all) != 1 || all[0] != "objects.read" {
				t.Fatalf("group branch must require the permission, got %v", all)
			}
		}
	}
	if !foundGroupBranch {
		t.Fatal("grant expression missing the group permission branch")
	}
	if len(branches) != 4 {
		t.Fatalf("expected 4 grant branches, got %d", len(branches))
	}
}

func TestTypeAccessControlUsesRootAcl(t *testing.T) {
	stages := TypeAccessControlStages(9, "types.read")
	expr := stages[0][0].Value.(bson.M)
	branches := expr["$or"].([]bson.M)

	for _, branch := range branches {
		for key := range branch {
			if len(key) >= 5 && key[:5] == "type." {
				t.Fatalf("type pipeline must address the root acl, got key %s", key)
			}
		}
	}
}
