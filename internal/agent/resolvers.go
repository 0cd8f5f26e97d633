package agent

import (
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/resolve"
	"github.com/aduval/foyer/internal/store"
)

// Sources for the entity resolver, one per kind, each pre-scoped to the
// caller's household.

func namedSource(s *store.NamedStore, kind string, hid int64) resolve.Source[model.NamedEntity] {
	return resolve.Source[model.NamedEntity]{
		Kind:           kind,
		ByID:           func(id int64) (*model.NamedEntity, error) { return s.GetByID(hid, id) },
		ByNameExact:    func(name string) ([]model.NamedEntity, error) { return s.FindByNameExact(hid, name) },
		ByNameContains: func(name string) ([]model.NamedEntity, error) { return s.FindByNameContains(hid, name) },
		ID:             func(e *model.NamedEntity) int64 { return e.ID },
	}
}

func (r *Registry) resolveZone(hid int64, id *int64, name string) (*model.NamedEntity, error) {
	return resolve.One(namedSource(r.deps.Zones, "zone", hid), id, name)
}

func (r *Registry) resolveCategory(hid int64, id *int64, name string) (*model.NamedEntity, error) {
	return resolve.One(namedSource(r.deps.Categories, "category", hid), id, name)
}

func (r *Registry) resolveAnimal(hid int64, id *int64, name string) (*model.NamedEntity, error) {
	return resolve.One(namedSource(r.deps.Animals, "animal", hid), id, name)
}

func (r *Registry) resolvePerson(hid int64, id *int64, name string) (*model.NamedEntity, error) {
	return resolve.One(namedSource(r.deps.People, "person", hid), id, name)
}

func (r *Registry) resolveProject(hid int64, id *int64, name string) (*model.Project, error) {
	s := r.deps.Projects
	return resolve.One(resolve.Source[model.Project]{
		Kind:           "project",
		ByID:           func(pid int64) (*model.Project, error) { return s.GetByID(hid, pid) },
		ByNameExact:    func(name string) ([]model.Project, error) { return s.FindByNameExact(hid, name) },
		ByNameContains: func(name string) ([]model.Project, error) { return s.FindByNameContains(hid, name) },
		ID:             func(p *model.Project) int64 { return p.ID },
	}, id, name)
}

func (r *Registry) resolveEquipment(hid int64, id *int64, name string) (*model.Equipment, error) {
	s := r.deps.Equipment
	return resolve.One(resolve.Source[model.Equipment]{
		Kind:           "equipment",
		ByID:           func(eid int64) (*model.Equipment, error) { return s.GetByID(hid, eid) },
		ByNameExact:    func(name string) ([]model.Equipment, error) { return s.FindByNameExact(hid, name) },
		ByNameContains: func(name string) ([]model.Equipment, error) { return s.FindByNameContains(hid, name) },
		ID:             func(e *model.Equipment) int64 { return e.ID },
	}, id, name)
}

func (r *Registry) resolveTask(hid int64, id *int64, title string) (*model.Task, error) {
	s := r.deps.Tasks
	return resolve.One(resolve.Source[model.Task]{
		Kind:           "task",
		ByID:           func(tid int64) (*model.Task, error) { return s.GetByID(hid, tid) },
		ByNameExact:    func(name string) ([]model.Task, error) { return s.FindByNameExact(hid, name) },
		ByNameContains: func(name string) ([]model.Task, error) { return s.FindByNameContains(hid, name) },
		ID:             func(t *model.Task) int64 { return t.ID },
	}, id, title)
}

func (r *Registry) resolveShoppingList(hid int64, id *int64, name string) (*model.ShoppingList, error) {
	s := r.deps.Shopping
	return resolve.One(resolve.Source[model.ShoppingList]{
		Kind:           "shopping list",
		ByID:           func(lid int64) (*model.ShoppingList, error) { return s.GetListByID(hid, lid) },
		ByNameExact:    func(name string) ([]model.ShoppingList, error) { return s.FindListsByNameExact(hid, name) },
		ByNameContains: func(name string) ([]model.ShoppingList, error) { return s.FindListsByNameContains(hid, name) },
		ID:             func(l *model.ShoppingList) int64 { return l.ID },
	}, id, name)
}

func (r *Registry) resolveShoppingItem(hid int64, id *int64, name string) (*model.ShoppingItem, error) {
	s := r.deps.Shopping
	return resolve.One(resolve.Source[model.ShoppingItem]{
		Kind:           "shopping item",
		ByID:           func(iid int64) (*model.ShoppingItem, error) { return s.GetItemByID(hid, iid) },
		ByNameExact:    func(name string) ([]model.ShoppingItem, error) { return s.FindItemsByNameExact(hid, name) },
		ByNameContains: func(name string) ([]model.ShoppingItem, error) { return s.FindItemsByNameContains(hid, name) },
		ID:             func(i *model.ShoppingItem) int64 { return i.ID },
	}, id, name)
}

func (r *Registry) resolveBudgetEntry(hid int64, id *int64, label string) (*model.BudgetEntry, error) {
	s := r.deps.Budget
	return resolve.One(resolve.Source[model.BudgetEntry]{
		Kind: "budget entry",
		ByID: func(eid int64) (*model.BudgetEntry, error) { return s.GetEntryByID(hid, eid) },
		ByNameExact: func(name string) ([]model.BudgetEntry, error) {
			return s.FindEntriesByLabelExact(hid, name)
		},
		ByNameContains: func(name string) ([]model.BudgetEntry, error) {
			return s.FindEntriesByLabelContains(hid, name)
		},
		ID: func(e *model.BudgetEntry) int64 { return e.ID },
	}, id, label)
}

func (r *Registry) resolveRecurringEntry(hid int64, id *int64, label string) (*model.BudgetRecurringEntry, error) {
	s := r.deps.Budget
	return resolve.One(resolve.Source[model.BudgetRecurringEntry]{
		Kind: "recurring entry",
		ByID: func(rid int64) (*model.BudgetRecurringEntry, error) { return s.GetRecurringByID(hid, rid) },
		ByNameExact: func(name string) ([]model.BudgetRecurringEntry, error) {
			return s.FindRecurringByLabelExact(hid, name)
		},
		ByNameContains: func(name string) ([]model.BudgetRecurringEntry, error) {
			return s.FindRecurringByLabelContains(hid, name)
		},
		ID: func(e *model.BudgetRecurringEntry) int64 { return e.ID },
	}, id, label)
}

func (r *Registry) resolveImportantDate(hid int64, id *int64, title string) (*model.ImportantDate, error) {
	s := r.deps.Dates
	return resolve.One(resolve.Source[model.ImportantDate]{
		Kind:           "important date",
		ByID:           func(did int64) (*model.ImportantDate, error) { return s.GetByID(hid, did) },
		ByNameExact:    func(name string) ([]model.ImportantDate, error) { return s.FindByTitleExact(hid, name) },
		ByNameContains: func(name string) ([]model.ImportantDate, error) { return s.FindByTitleContains(hid, name) },
		ID:             func(d *model.ImportantDate) int64 { return d.ID },
	}, id, title)
}
