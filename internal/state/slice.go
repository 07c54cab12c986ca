// Package state holds the in-memory application state: pure reducers for
// the auth, patient and incident slices and a Store that applies them.
package state

import (
	"github.com/jwalitptl/dentalcare/internal/model"
)

// Action is a state transition request. Reducers ignore actions that do
// not belong to their slice.
type Action interface {
	Type() string
}

// EntitySlice is the cached list of one entity kind.
type EntitySlice[T model.Entity] struct {
	Items    []T  `json:"items"`
	Loading  bool `json:"loading"`
	Selected *T   `json:"selected"`
}

// Entity slice actions. Each is parameterized by the entity it targets so
// that one dispatched action only ever reaches one slice.
type (
	SetLoading[T model.Entity]  struct{ Loading bool }
	SetAll[T model.Entity]      struct{ Items []T }
	Add[T model.Entity]         struct{ Item T }
	Update[T model.Entity]      struct{ Item T }
	Delete[T model.Entity]      struct{ ID string }
	SetSelected[T model.Entity] struct{ Item *T }
)

func (SetLoading[T]) Type() string  { return sliceName[T]() + "/setLoading" }
func (SetAll[T]) Type() string      { return sliceName[T]() + "/setAll" }
func (Add[T]) Type() string         { return sliceName[T]() + "/add" }
func (Update[T]) Type() string      { return sliceName[T]() + "/update" }
func (Delete[T]) Type() string      { return sliceName[T]() + "/delete" }
func (SetSelected[T]) Type() string { return sliceName[T]() + "/setSelected" }

func sliceName[T model.Entity]() string {
	var zero T
	switch any(zero).(type) {
	case model.Patient:
		return "patients"
	case model.Incident:
		return "incidents"
	case model.User:
		return "users"
	default:
		return "entities"
	}
}

// ReduceEntities returns the slice that results from applying a to s.
// It is total and never modifies s or any slice s refers to.
func ReduceEntities[T model.Entity](s EntitySlice[T], a Action) EntitySlice[T] {
	switch act := a.(type) {
	case SetLoading[T]:
		s.Loading = act.Loading
	case SetAll[T]:
		s.Items = append(make([]T, 0, len(act.Items)), act.Items...)
	case Add[T]:
		items := make([]T, 0, len(s.Items)+1)
		s.Items = append(append(items, s.Items...), act.Item)
	case Update[T]:
		for i := range s.Items {
			if s.Items[i].GetID() == act.Item.GetID() {
				items := append(make([]T, 0, len(s.Items)), s.Items...)
				items[i] = act.Item
				s.Items = items
				break
			}
		}
	case Delete[T]:
		items := make([]T, 0, len(s.Items))
		for _, it := range s.Items {
			if it.GetID() != act.ID {
				items = append(items, it)
			}
		}
		s.Items = items
	case SetSelected[T]:
		if act.Item == nil {
			s.Selected = nil
		} else {
			sel := *act.Item
			s.Selected = &sel
		}
	}
	return s
}
