package agent

import (
	"context"

	"github.com/aduval/foyer/internal/format"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/resolve"
	"github.com/aduval/foyer/internal/store"
)

// registerCatalogTools registers the CRUD tools for the simple named kinds
// (zone, category, animal, person) plus projects and equipment.
func (r *Registry) registerCatalogTools() {
	kinds := []struct {
		singular, plural string
		store            *store.NamedStore
	}{
		{"zone", "zones", r.deps.Zones},
		{"category", "categories", r.deps.Categories},
		{"animal", "animals", r.deps.Animals},
		{"person", "people", r.deps.People},
	}
	for _, k := range kinds {
		r.registerNamedKind(k.singular, k.plural, k.store)
	}
	r.registerProjectTools()
	r.registerEquipmentTools()
}

func (r *Registry) registerNamedKind(singular, plural string, s *store.NamedStore) {
	r.register(&Tool{
		Name:        "create_" + singular,
		Description: "Create a " + singular + " in the household.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "description": "Name of the " + singular, "maxLength": 100},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := s.Create(hid, argString(args, "name"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/"+plural)
			return map[string]any{singular: map[string]any{"id": e.ID, "name": e.Name}}, nil
		},
	})

	r.register(&Tool{
		Name:        "update_" + singular,
		Description: "Rename a " + singular + ", found by id or by current_name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":           map[string]any{"type": "integer", "description": "Id of the " + singular},
				"current_name": map[string]any{"type": "string", "description": "Current name, when the id is unknown"},
				"name":         map[string]any{"type": "string", "description": "New name", "maxLength": 100},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := resolve.One(namedSource(s, singular, hid), argInt64Ptr(args, "id"), argString(args, "current_name"))
			if err != nil {
				return nil, err
			}
			updated, err := s.Update(hid, e.ID, argString(args, "name"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/"+plural)
			return map[string]any{singular: map[string]any{"id": updated.ID, "name": updated.Name, "previous_name": e.Name}}, nil
		},
	})

	r.register(&Tool{
		Name:        "delete_" + singular,
		Description: "Delete a " + singular + ", found by id or name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "description": "Id of the " + singular},
				"name": map[string]any{"type": "string", "description": "Name, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := resolve.One(namedSource(s, singular, hid), argInt64Ptr(args, "id"), argString(args, "name"))
			if err != nil {
				return nil, err
			}
			if err := s.Delete(hid, e.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/"+plural)
			return map[string]any{"deleted": e.Name}, nil
		},
	})

	r.register(&Tool{
		Name:        "list_" + plural,
		Description: "List the household's " + plural + ".",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			all, err := s.List(hid)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, 0, len(all))
			for _, e := range all {
				out = append(out, map[string]any{"id": e.ID, "name": e.Name})
			}
			return map[string]any{plural: out, "count": len(out)}, nil
		},
	})
}

func (r *Registry) registerProjectTools() {
	r.register(&Tool{
		Name:        "create_project",
		Description: "Create a household project.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":        map[string]any{"type": "string", "description": "Project name", "maxLength": 100},
				"description": map[string]any{"type": "string", "description": "What the project is about"},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			p, err := r.deps.Projects.Create(hid, argString(args, "name"), argString(args, "description"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/projects")
			r.illustrate(hid, "project", p.ID, p.Name)
			return map[string]any{"project": projectPayload(p)}, nil
		},
	})

	r.register(&Tool{
		Name:        "update_project",
		Description: "Update a project, found by id or by current_name. Only the provided fields change.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":           map[string]any{"type": "integer", "description": "Project id"},
				"current_name": map[string]any{"type": "string", "description": "Current name, when the id is unknown"},
				"name":         map[string]any{"type": "string", "description": "New name", "maxLength": 100},
				"description":  map[string]any{"type": "string", "description": "New description"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			p, err := r.resolveProject(hid, argInt64Ptr(args, "id"), argString(args, "current_name"))
			if err != nil {
				return nil, err
			}
			name, desc := p.Name, p.Description
			if v := argStringPtr(args, "name"); v != nil {
				name = *v
			}
			if v := argStringPtr(args, "description"); v != nil {
				desc = *v
			}
			updated, err := r.deps.Projects.Update(hid, p.ID, name, desc)
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/projects")
			return map[string]any{"project": projectPayload(updated)}, nil
		},
	})

	r.register(&Tool{
		Name:        "delete_project",
		Description: "Delete a project, found by id or name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "description": "Project id"},
				"name": map[string]any{"type": "string", "description": "Project name, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			p, err := r.resolveProject(hid, argInt64Ptr(args, "id"), argString(args, "name"))
			if err != nil {
				return nil, err
			}
			if err := r.deps.Projects.Delete(hid, p.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/projects")
			return map[string]any{"deleted": p.Name}, nil
		},
	})

	r.register(&Tool{
		Name:        "list_projects",
		Description: "List the household's projects.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			all, err := r.deps.Projects.List(hid)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, 0, len(all))
			for i := range all {
				out = append(out, projectPayload(&all[i]))
			}
			return map[string]any{"projects": out, "count": len(out)}, nil
		},
	})
}

func (r *Registry) registerEquipmentTools() {
	r.register(&Tool{
		Name:        "create_equipment",
		Description: "Register a piece of household equipment (boiler, mower, appliance).",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":           map[string]any{"type": "string", "description": "Equipment name", "maxLength": 100},
				"purchase_date":  map[string]any{"type": "string", "description": "Purchase date, YYYY-MM-DD"},
				"install_date":   map[string]any{"type": "string", "description": "Install date, YYYY-MM-DD"},
				"lifespan_years": map[string]any{"type": "integer", "description": "Expected lifespan in years"},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := r.deps.Equipment.Create(hid, argString(args, "name"),
				argStringPtr(args, "purchase_date"), argStringPtr(args, "install_date"), argIntPtr(args, "lifespan_years"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/equipment")
			r.illustrate(hid, "equipment", e.ID, e.Name)
			return map[string]any{"equipment": equipmentPayload(e)}, nil
		},
	})

	r.register(&Tool{
		Name:        "update_equipment",
		Description: "Update a piece of equipment, found by id or by current_name. Only the provided fields change.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":             map[string]any{"type": "integer", "description": "Equipment id"},
				"current_name":   map[string]any{"type": "string", "description": "Current name, when the id is unknown"},
				"name":           map[string]any{"type": "string", "description": "New name", "maxLength": 100},
				"purchase_date":  map[string]any{"type": "string", "description": "Purchase date, YYYY-MM-DD"},
				"install_date":   map[string]any{"type": "string", "description": "Install date, YYYY-MM-DD"},
				"lifespan_years": map[string]any{"type": "integer", "description": "Expected lifespan in years"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := r.resolveEquipment(hid, argInt64Ptr(args, "id"), argString(args, "current_name"))
			if err != nil {
				return nil, err
			}
			name := e.Name
			if v := argStringPtr(args, "name"); v != nil {
				name = *v
			}
			purchase, install, lifespan := e.PurchaseDate, e.InstallDate, e.LifespanYears
			if v := argStringPtr(args, "purchase_date"); v != nil {
				purchase = v
			}
			if v := argStringPtr(args, "install_date"); v != nil {
				install = v
			}
			if v := argIntPtr(args, "lifespan_years"); v != nil {
				lifespan = v
			}
			updated, err := r.deps.Equipment.Update(hid, e.ID, name, purchase, install, lifespan)
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/equipment")
			return map[string]any{"equipment": equipmentPayload(updated)}, nil
		},
	})

	r.register(&Tool{
		Name:        "delete_equipment",
		Description: "Delete a piece of equipment, found by id or name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "description": "Equipment id"},
				"name": map[string]any{"type": "string", "description": "Equipment name, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := r.resolveEquipment(hid, argInt64Ptr(args, "id"), argString(args, "name"))
			if err != nil {
				return nil, err
			}
			if err := r.deps.Equipment.Delete(hid, e.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/equipment")
			return map[string]any{"deleted": e.Name}, nil
		},
	})

	r.register(&Tool{
		Name:        "list_equipment",
		Description: "List the household's equipment.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			all, err := r.deps.Equipment.List(hid)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, 0, len(all))
			for i := range all {
				out = append(out, equipmentPayload(&all[i]))
			}
			return map[string]any{"equipment": out, "count": len(out)}, nil
		},
	})
}

func projectPayload(p *model.Project) map[string]any {
	out := map[string]any{"id": p.ID, "name": p.Name}
	if p.Description != "" {
		out["description"] = p.Description
	}
	return out
}

func equipmentPayload(e *model.Equipment) map[string]any {
	out := map[string]any{"id": e.ID, "name": e.Name}
	if e.PurchaseDate != nil {
		out["purchase_date"] = *e.PurchaseDate
		out["purchase_date_text"] = format.Date(*e.PurchaseDate)
	}
	if e.InstallDate != nil {
		out["install_date"] = *e.InstallDate
		out["install_date_text"] = format.Date(*e.InstallDate)
	}
	if e.LifespanYears != nil {
		out["lifespan_years"] = *e.LifespanYears
	}
	return out
}
