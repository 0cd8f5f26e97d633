package agent

import (
	"context"

	"github.com/aduval/foyer/internal/format"
	"github.com/aduval/foyer/internal/model"
)

func (r *Registry) registerShoppingTools() {
	r.register(&Tool{
		Name:        "create_shopping_list",
		Description: "Create a shopping list.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "description": "List name", "maxLength": 100},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			l, err := r.deps.Shopping.CreateList(hid, argString(args, "name"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/shopping")
			return map[string]any{"list": map[string]any{"id": l.ID, "name": l.Name}}, nil
		},
	})

	r.register(&Tool{
		Name:        "update_shopping_list",
		Description: "Rename a shopping list, found by id or by current name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"list_id":      map[string]any{"type": "integer", "description": "List id"},
				"current_name": map[string]any{"type": "string", "description": "Current name, when the id is unknown"},
				"name":         map[string]any{"type": "string", "description": "New name", "maxLength": 100},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			l, err := r.resolveShoppingList(hid, argInt64Ptr(args, "list_id"), argString(args, "current_name"))
			if err != nil {
				return nil, err
			}
			updated, err := r.deps.Shopping.UpdateList(hid, l.ID, argString(args, "name"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/shopping")
			return map[string]any{"list": map[string]any{"id": updated.ID, "name": updated.Name}}, nil
		},
	})

	r.register(&Tool{
		Name:        "delete_shopping_list",
		Description: "Delete a shopping list and everything on it, found by id or name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"list_id": map[string]any{"type": "integer", "description": "List id"},
				"name":    map[string]any{"type": "string", "description": "List name, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			l, err := r.resolveShoppingList(hid, argInt64Ptr(args, "list_id"), argString(args, "name"))
			if err != nil {
				return nil, err
			}
			if err := r.deps.Shopping.DeleteList(hid, l.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/shopping")
			return map[string]any{"deleted": l.Name}, nil
		},
	})

	r.register(&Tool{
		Name:        "add_shopping_item",
		Description: "Add an item to a shopping list, found by list id or list name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"list_id": map[string]any{"type": "integer", "description": "List id"},
				"list":    map[string]any{"type": "string", "description": "List name, when the id is unknown"},
				"name":    map[string]any{"type": "string", "description": "Item name", "maxLength": 200},
				"estimated_cost_cents": map[string]any{
					"type":        "integer",
					"description": "Estimated cost in cents, e.g. 1250 for 12,50 €",
				},
			},
			"required": []string{"name"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			l, err := r.resolveShoppingList(hid, argInt64Ptr(args, "list_id"), argString(args, "list"))
			if err != nil {
				return nil, err
			}
			it, err := r.deps.Shopping.CreateItem(hid, l.ID, argString(args, "name"), argInt64Ptr(args, "estimated_cost_cents"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/shopping")
			return map[string]any{"item": shoppingItemPayload(it), "list": l.Name}, nil
		},
	})

	r.register(&Tool{
		Name:        "check_shopping_item",
		Description: "Mark a shopping item as bought (or unmark it), found by id or name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":        map[string]any{"type": "integer", "description": "Item id"},
				"name":      map[string]any{"type": "string", "description": "Item name, when the id is unknown"},
				"completed": map[string]any{"type": "boolean", "description": "True to mark bought, false to undo. Default true."},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			it, err := r.resolveShoppingItem(hid, argInt64Ptr(args, "id"), argString(args, "name"))
			if err != nil {
				return nil, err
			}
			completed := true
			if _, present := args["completed"]; present {
				completed = argBool(args, "completed")
			}
			updated, err := r.deps.Shopping.SetItemCompleted(hid, it.ID, completed)
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/shopping")
			return map[string]any{"item": shoppingItemPayload(updated)}, nil
		},
	})

	r.register(&Tool{
		Name:        "delete_shopping_item",
		Description: "Remove an item from its shopping list, found by id or name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "description": "Item id"},
				"name": map[string]any{"type": "string", "description": "Item name, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			it, err := r.resolveShoppingItem(hid, argInt64Ptr(args, "id"), argString(args, "name"))
			if err != nil {
				return nil, err
			}
			if err := r.deps.Shopping.DeleteItem(hid, it.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/shopping")
			return map[string]any{"deleted": it.Name}, nil
		},
	})

	r.register(&Tool{
		Name:        "list_shopping_items",
		Description: "List the items of a shopping list, found by list id or list name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"list_id": map[string]any{"type": "integer", "description": "List id"},
				"list":    map[string]any{"type": "string", "description": "List name, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			l, err := r.resolveShoppingList(hid, argInt64Ptr(args, "list_id"), argString(args, "list"))
			if err != nil {
				return nil, err
			}
			items, err := r.deps.Shopping.ListItems(hid, l.ID)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, 0, len(items))
			for i := range items {
				out = append(out, shoppingItemPayload(&items[i]))
			}
			return map[string]any{"list": l.Name, "items": out, "count": len(out)}, nil
		},
	})
}

func shoppingItemPayload(it *model.ShoppingItem) map[string]any {
	out := map[string]any{
		"id":        it.ID,
		"name":      it.Name,
		"completed": it.Completed,
	}
	if it.EstimatedCostCents != nil {
		out["estimated_cost_cents"] = *it.EstimatedCostCents
		out["estimated_cost_text"] = format.Euros(*it.EstimatedCostCents)
	}
	return out
}
