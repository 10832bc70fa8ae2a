package cmdbsvc

import (
	"context"
	"errors"
	"testing"

	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/api/cmdb/render"
)

type fakeTypeStore struct {
	types map[int64]*models.CmdbType
}

func (s *fakeTypeStore) FetchType(_ context.Context, publicID int64) (*models.CmdbType, error) {
	if t, ok := s.types[publicID]; ok {
		return t, nil
	}
	return nil, errors.New("type not found")
}

type fakeObjectStore struct{}

func (s *fakeObjectStore) FetchObject(_ context.Context, _ int64) (*models.CmdbObject, error) {
	return nil, errors.New("object not found")
}

func switchType() *models.CmdbType {
	return &models.CmdbType{
		PublicID: 7,
		Name:     "switch",
		Label:    "Switch",
		Active:   true,
		Fields: []models.TypeField{
			{Name: "hostname", Label: "Hostname", Type: models.FieldTypeText},
		},
	}
}

func switchObject() *models.CmdbObject {
	return &models.CmdbObject{
		PublicID: 42,
		TypeID:   7,
		AuthorID: 11,
		EditorID: 22,
		Active:   true,
		Fields: []models.ObjectField{
			{Name: "hostname", Value: "sw-01"},
		},
	}
}

func TestLogAuthorAttribution(t *testing.T) {
	obj := switchObject()

	t.Run("create entries name the creator", func(t *testing.T) {
		if got := logAuthor(models.LogActionCreate, obj); got != obj.AuthorID {
			t.Fatalf("logAuthor(create) = %d, want author %d", got, obj.AuthorID)
		}
	})

	t.Run("edit entries name the last editor", func(t *testing.T) {
		if got := logAuthor(models.LogActionEdit, obj); got != obj.EditorID {
			t.Fatalf("logAuthor(edit) = %d, want editor %d", got, obj.EditorID)
		}
	})

	t.Run("delete entries name the last editor", func(t *testing.T) {
		if got := logAuthor(models.LogActionDelete, obj); got != obj.EditorID {
			t.Fatalf("logAuthor(delete) = %d, want editor %d", got, obj.EditorID)
		}
	})
}

func TestLogSnapshot(t *testing.T) {
	obj := switchObject()

	t.Run("renders against the loaded type", func(t *testing.T) {
		types := &fakeTypeStore{types: map[int64]*models.CmdbType{7: switchType()}}
		m := &LogsManager{}
		m.WithRenderer(render.NewCmdbRender(&fakeObjectStore{}, types, 3), types)

		result, ok := m.snapshot(context.Background(), obj).(*render.RenderResult)
		if !ok {
			t.Fatalf("snapshot is %T, want *render.RenderResult", m.snapshot(context.Background(), obj))
		}
		if result.ObjectInformation.ObjectID != obj.PublicID {
			t.Fatalf("snapshot object id = %d, want %d", result.ObjectInformation.ObjectID, obj.PublicID)
		}
		if len(result.Fields) != 1 || result.Fields[0].Name != "hostname" {
			t.Fatalf("snapshot fields = %+v, want the rendered hostname field", result.Fields)
		}
	})

	t.Run("falls back to raw fields without a renderer", func(t *testing.T) {
		m := &LogsManager{}
		fields, ok := m.snapshot(context.Background(), obj).([]models.ObjectField)
		if !ok || len(fields) != 1 {
			t.Fatalf("snapshot without renderer = %+v, want the raw field list", m.snapshot(context.Background(), obj))
		}
	})

	t.Run("falls back to raw fields when the type is gone", func(t *testing.T) {
		types := &fakeTypeStore{types: map[int64]*models.CmdbType{}}
		m := &LogsManager{}
		m.WithRenderer(render.NewCmdbRender(&fakeObjectStore{}, types, 3), types)

		fields, ok := m.snapshot(context.Background(), obj).([]models.ObjectField)
		if !ok || len(fields) != 1 {
			t.Fatalf("snapshot with missing type = %+v, want the raw field list", m.snapshot(context.Background(), obj))
		}
	})
}
