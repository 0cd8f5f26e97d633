package store

import "testing"

func TestNamedStoreCRUD(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	zones := NewZoneStore(db)

	garden, err := zones.Create(hid, "Jardin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if garden.Name != "Jardin" {
		t.Errorf("name = %s", garden.Name)
	}

	renamed, err := zones.Update(hid, garden.ID, "Jardin avant")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if renamed.Name != "Jardin avant" {
		t.Errorf("renamed = %s", renamed.Name)
	}

	all, err := zones.List(hid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("list = %d entries", len(all))
	}

	if err := zones.Delete(hid, garden.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := zones.GetByID(hid, garden.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("zone still present after delete")
	}
}

func TestNamedStoreNameLookups(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	zones := NewZoneStore(db)

	for _, name := range []string{"Garage", "Garage atelier", "Jardin"} {
		if _, err := zones.Create(hid, name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	exact, err := zones.FindByNameExact(hid, "garage")
	if err != nil {
		t.Fatalf("find exact: %v", err)
	}
	if len(exact) != 1 || exact[0].Name != "Garage" {
		t.Errorf("exact = %+v", exact)
	}

	partial, err := zones.FindByNameContains(hid, "gara")
	if err != nil {
		t.Fatalf("find contains: %v", err)
	}
	if len(partial) != 2 {
		t.Errorf("contains = %d matches, want 2", len(partial))
	}
}

func TestNamedStoreHouseholdScope(t *testing.T) {
	db := testDB(t)
	h1 := seedHousehold(t, db, "Maison")
	h2 := seedHousehold(t, db, "Chalet")
	animals := NewAnimalStore(db)

	cat, err := animals.Create(h1, "Félix")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := animals.GetByID(h2, cat.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("animal visible from another household")
	}

	matches, err := animals.FindByNameExact(h2, "Félix")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("cross-household matches = %d", len(matches))
	}
}

func TestNamedStoreContainsTreatsWildcardsLiterally(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	zones := NewZoneStore(db)

	for _, name := range []string{"Cave 100%", "Grenier", "Salle_de_bain", "Salle de bain"} {
		if _, err := zones.Create(hid, name); err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}

	matches, err := zones.FindByNameContains(hid, "100%")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Cave 100%" {
		t.Errorf("matches for %%: %+v", matches)
	}

	// An underscore must not act as a single-character wildcard.
	matches, err = zones.FindByNameContains(hid, "Salle_de")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Salle_de_bain" {
		t.Errorf("matches for _: %+v", matches)
	}
}
