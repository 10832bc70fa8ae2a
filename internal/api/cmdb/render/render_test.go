package render

import (
	"context"
	"errors"
	"testing"

	models "meta_cmdb/internal/api/cmdb/models"
)

type fakeStore struct {
	objects map[int64]*models.CmdbObject
	types   map[int64]*models.CmdbType
	fetches int
}

func (s *fakeStore) FetchObject(_ context.Context, publicID int64) (*models.CmdbObject, error) {
	s.fetches++
	if obj, ok := s.objects[publicID]; ok {
		return obj, nil
	}
	return nil, errors.New("object not found")
}

func (s *fakeStore) FetchType(_ context.Context, publicID int64) (*models.CmdbType, error) {
	if t, ok := s.types[publicID]; ok {
		return t, nil
	}
	return nil, errors.New("type not found")
}

func serverType() *models.CmdbType {
	return &models.CmdbType{
		PublicID: 10,
		Name:     "server",
		Label:    "Server",
		Active:   true,
		Fields: []models.TypeField{
			{Name: "hostname", Label: "Hostname", Type: models.FieldTypeText},
			{Name: "peer", Label: "Peer", Type: models.FieldTypeRef},
		},
		RenderMeta: models.TypeRenderMeta{
			Summary: models.TypeSummary{Fields: []string{"hostname"}},
		},
	}
}

func serverObject(publicID int64, hostname string, peer int64) *models.CmdbObject {
	return &models.CmdbObject{
		PublicID: publicID,
		TypeID:   10,
		Active:   true,
		Fields: []models.ObjectField{
			{Name: "hostname", Value: hostname},
			{Name: "peer", Value: peer},
		},
	}
}

func fieldByName(t *testing.T, result *RenderResult, name string) RenderedField {
	t.Helper()
	for _, f := range result.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s missing from render result", name)
	return RenderedField{}
}

func TestRenderTerminatesOnReferenceCycle(t *testing.T) {
	store := &fakeStore{
		objects: map[int64]*models.CmdbObject{
			1: serverObject(1, "alpha", 2),
			2: serverObject(2, "beta", 1),
		},
		types: map[int64]*models.CmdbType{10: serverType()},
	}
	r := NewCmdbRender(store, store, 3)

	result, err := r.Render(context.Background(), store.objects[1])
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	peer := fieldByName(t, result, "peer")
	nested, ok := peer.Value.(*RenderResult)
	if !ok {
		t.Fatalf("expected nested render for peer, got %T", peer.Value)
	}
	if nested.ObjectInformation.ObjectID != 2 {
		t.Fatalf("expected peer object 2, got %d", nested.ObjectInformation.ObjectID)
	}

	// The back-reference to an already-rendered object stays a raw id.
	backRef := fieldByName(t, nested, "peer")
	if backRef.Value != int64(1) {
		t.Fatalf("expected raw back-reference id, got %v", backRef.Value)
	}
	if backRef.Reference != 1 {
		t.Fatalf("expected reference id 1, got %d", backRef.Reference)
	}
}

func TestRenderDepthBudgetLeavesRawID(t *testing.T) {
	store := &fakeStore{
		objects: map[int64]*models.CmdbObject{
			1: serverObject(1, "alpha", 2),
			2: serverObject(2, "beta", 3),
			3: serverObject(3, "gamma", 0),
		},
		types: map[int64]*models.CmdbType{10: serverType()},
	}
	r := NewCmdbRender(store, store, 1)

	result, err := r.Render(context.Background(), store.objects[1])
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	nested, ok := fieldByName(t, result, "peer").Value.(*RenderResult)
	if !ok {
		t.Fatal("first level must still be resolved at depth 1")
	}
	deep := fieldByName(t, nested, "peer")
	if deep.Value != int64(3) {
		t.Fatalf("expected raw id past the depth budget, got %v", deep.Value)
	}
}

func TestRenderEachObjectRenderedOncePerTree(t *testing.T) {
	// Two sibling fields pointing at the same target: the second hit of
	// the visited set keeps the raw id instead of re-fetching.
	twoRefType := serverType()
	twoRefType.Fields = append(twoRefType.Fields, models.TypeField{Name: "backup_peer", Type: models.FieldTypeRef})

	store := &fakeStore{
		objects: map[int64]*models.CmdbObject{
			1: {
				PublicID: 1, TypeID: 10, Active: true,
				Fields: []models.ObjectField{
					{Name: "hostname", Value: "alpha"},
					{Name: "peer", Value: int64(2)},
					{Name: "backup_peer", Value: int64(2)},
				},
			},
			2: serverObject(2, "beta", 0),
		},
		types: map[int64]*models.CmdbType{10: twoRefType},
	}
	r := NewCmdbRender(store, store, 3)

	result, err := r.Render(context.Background(), store.objects[1])
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if store.fetches != 1 {
		t.Fatalf("expected one fetch of the shared target, got %d", store.fetches)
	}
	if _, ok := fieldByName(t, result, "peer").Value.(*RenderResult); !ok {
		t.Fatal("first reference must be resolved")
	}
	if fieldByName(t, result, "backup_peer").Value != int64(2) {
		t.Fatal("second reference to the same object must keep the raw id")
	}
}

func TestRenderSkipsUnfetchableReference(t *testing.T) {
	store := &fakeStore{
		objects: map[int64]*models.CmdbObject{1: serverObject(1, "alpha", 99)},
		types:   map[int64]*models.CmdbType{10: serverType()},
	}
	r := NewCmdbRender(store, store, 3)

	result, err := r.Render(context.Background(), store.objects[1])
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, f := range result.Fields {
		if f.Name == "peer" {
			t.Fatal("unfetchable reference field must be omitted")
		}
	}
	if fieldByName(t, result, "hostname").Value != "alpha" {
		t.Fatal("remaining fields must still be rendered")
	}
}

func TestRenderSummaryLine(t *testing.T) {
	objectType := &models.CmdbType{
		PublicID: 20,
		Name:     "router",
		Active:   true,
		Fields: []models.TypeField{
			{Name: "hostname", Type: models.FieldTypeText},
			{Name: "ip", Type: models.FieldTypeText},
		},
		RenderMeta: models.TypeRenderMeta{
			Summary: models.TypeSummary{Fields: []string{"hostname", "ip"}},
		},
	}
	object := &models.CmdbObject{
		PublicID: 5, TypeID: 20, Active: true,
		Fields: []models.ObjectField{
			{Name: "hostname", Value: "edge-1"},
			{Name: "ip", Value: "10.0.0.1"},
		},
	}
	store := &fakeStore{types: map[int64]*models.CmdbType{20: objectType}}
	r := NewCmdbRender(store, store, 3)

	result, err := r.Render(context.Background(), object)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if result.SummaryLine != "edge-1 | 10.0.0.1" {
		t.Fatalf("unexpected summary line: %q", result.SummaryLine)
	}
	if len(result.Summaries) != 2 {
		t.Fatalf("expected 2 summary fields, got %d", len(result.Summaries))
	}
}

func TestRenderExternals(t *testing.T) {
	objectType := &models.CmdbType{
		PublicID: 20,
		Name:     "router",
		Active:   true,
		Fields: []models.TypeField{
			{Name: "hostname", Type: models.FieldTypeText},
			{Name: "serial", Type: models.FieldTypeText},
		},
		RenderMeta: models.TypeRenderMeta{
			Externals: []models.TypeExternal{
				{Name: "monitoring", Href: "https://mon.example.com/{}/status", Fields: []string{"hostname"}},
				{Name: "vendor", Href: "https://vendor.example.com/{}", Fields: []string{"serial"}},
			},
		},
	}
	object := &models.CmdbObject{
		PublicID: 5, TypeID: 20, Active: true,
		Fields: []models.ObjectField{
			{Name: "hostname", Value: "edge-1"},
			{Name: "serial", Value: ""},
		},
	}
	store := &fakeStore{types: map[int64]*models.CmdbType{20: objectType}}
	r := NewCmdbRender(store, store, 3)

	result, err := r.Render(context.Background(), object)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(result.Externals) != 1 {
		t.Fatalf("external with an empty field must be dropped, got %d links", len(result.Externals))
	}
	if result.Externals[0].Href != "https://mon.example.com/edge-1/status" {
		t.Fatalf("unexpected href: %s", result.Externals[0].Href)
	}
}

func TestFlattenRefSectionValue(t *testing.T) {
	value := map[string]interface{}{
		"references": map[string]interface{}{
			"fields": []interface{}{
				map[string]interface{}{"name": "vlan", "value": 42},
				map[string]interface{}{"name": "zone", "value": "dmz"},
			},
		},
	}

	flat, ok := flattenRefSectionValue(value).(map[string]interface{})
	if !ok {
		t.Fatal("expected flattened map")
	}
	fields := flat["fields"].(map[string]interface{})
	if fields["vlan"] != 42 || fields["zone"] != "dmz" {
		t.Fatalf("unexpected flattened fields: %v", fields)
	}

	// Shapes without a reference payload pass through untouched.
	if flattenRefSectionValue("plain") != "plain" {
		t.Fatal("non-map values must pass through")
	}
}

func TestRenderListSkipsObjectsWithMissingType(t *testing.T) {
	store := &fakeStore{
		objects: map[int64]*models.CmdbObject{1: serverObject(1, "alpha", 0)},
		types:   map[int64]*models.CmdbType{10: serverType()},
	}
	r := NewCmdbRender(store, store, 3)

	orphan := &models.CmdbObject{PublicID: 2, TypeID: 999, Active: true}
	results := r.RenderList(context.Background(), []models.CmdbObject{*store.objects[1], *orphan})

	if len(results) != 1 {
		t.Fatalf("expected the orphan to be skipped, got %d results", len(results))
	}
	if results[0].ObjectInformation.ObjectID != 1 {
		t.Fatalf("unexpected surviving object: %d", results[0].ObjectInformation.ObjectID)
	}
}
