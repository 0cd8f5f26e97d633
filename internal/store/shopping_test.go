package store

import "testing"

func TestShoppingListsAndItems(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	shopping := NewShoppingStore(db)

	list, err := shopping.CreateList(hid, "Bricolage")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	cost := int64(4500)
	item, err := shopping.CreateItem(hid, list.ID, "Peinture blanche", &cost)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.EstimatedCostCents == nil || *item.EstimatedCostCents != 4500 {
		t.Errorf("estimated cost = %v", item.EstimatedCostCents)
	}
	if item.Completed {
		t.Error("new item already completed")
	}

	checked, err := shopping.SetItemCompleted(hid, item.ID, true)
	if err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if !checked.Completed {
		t.Error("item not completed")
	}

	items, err := shopping.ListItems(hid, list.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %d", len(items))
	}

	// Deleting the list cascades to its items.
	if err := shopping.DeleteList(hid, list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	got, err := shopping.GetItemByID(hid, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got != nil {
		t.Error("item survived list deletion")
	}
}

func TestShoppingItemScopeViaList(t *testing.T) {
	db := testDB(t)
	h1 := seedHousehold(t, db, "Maison")
	h2 := seedHousehold(t, db, "Chalet")
	shopping := NewShoppingStore(db)

	list, err := shopping.CreateList(h1, "Courses")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	item, err := shopping.CreateItem(h1, list.ID, "Lait", nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := shopping.GetItemByID(h2, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got != nil {
		t.Error("item visible from another household")
	}

	// Creating into a foreign list is refused.
	if _, err := shopping.CreateItem(h2, list.ID, "Beurre", nil); err == nil {
		t.Error("item created into a foreign list")
	}

	matches, err := shopping.FindItemsByNameContains(h2, "lait")
	if err != nil {
		t.Fatalf("find items: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("cross-household item matches = %d", len(matches))
	}
}

func TestShoppingListNameLookups(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	shopping := NewShoppingStore(db)

	for _, name := range []string{"Courses", "Courses Noël"} {
		if _, err := shopping.CreateList(hid, name); err != nil {
			t.Fatalf("create list %s: %v", name, err)
		}
	}

	exact, err := shopping.FindListsByNameExact(hid, "courses")
	if err != nil {
		t.Fatalf("find exact: %v", err)
	}
	if len(exact) != 1 || exact[0].Name != "Courses" {
		t.Errorf("exact = %+v", exact)
	}

	partial, err := shopping.FindListsByNameContains(hid, "courses")
	if err != nil {
		t.Fatalf("find contains: %v", err)
	}
	if len(partial) != 2 {
		t.Errorf("contains = %d matches, want 2", len(partial))
	}
}
