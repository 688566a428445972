package domain

import (
	"fmt"
	"sort"
)

const (
	EntityTypeSwitch = "Switch"
	EntityTypeDoor   = "Door"

	PropertySwitchOn = "isOn"
	PropertyDoorOpen = "isOpen"
)

type Entity struct {
	ID         string
	Type       string
	Tag        string
	Position   Vec3
	Properties map[string]any
}

func (e *Entity) FloorPosition() Vec3 {
	return e.Position.Floor()
}

func (e *Entity) Bool(name string) (bool, error) {
	value, err := e.property(name)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%s.%s: %w", e.ID, name, ErrPropertyType)
	}
	return b, nil
}

func (e *Entity) Number(name string) (float64, error) {
	value, err := e.property(name)
	if err != nil {
		return 0, err
	}

	switch n := value.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%s.%s: %w", e.ID, name, ErrPropertyType)
	}
}

func (e *Entity) Text(name string) (string, error) {
	value, err := e.property(name)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s.%s: %w", e.ID, name, ErrPropertyType)
	}
	return s, nil
}

func (e *Entity) property(name string) (any, error) {
	value, ok := e.Properties[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", e.ID, name, ErrPropertyAbsent)
	}
	return value, nil
}

// WorldModel is what the agent perceived at one tick. It only knows about
// entities inside the agent's view distance.
type WorldModel struct {
	AgentID  string
	Position Vec3
	Velocity Vec3
	Health   int
	Score    int
	Mood     string
	Tick     int64
	Entities map[string]*Entity
}

func (w *WorldModel) FloorPosition() Vec3 {
	return w.Position.Floor()
}

// Entity returns the entity with the given id or ErrEntityNotObserved.
func (w *WorldModel) Entity(id string) (*Entity, error) {
	entity, ok := w.Entities[id]
	if !ok || entity == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrEntityNotObserved)
	}
	return entity, nil
}

func (w *WorldModel) Bool(entityID, property string) (bool, error) {
	entity, err := w.Entity(entityID)
	if err != nil {
		return false, err
	}
	return entity.Bool(property)
}

func (w *WorldModel) Number(entityID, property string) (float64, error) {
	entity, err := w.Entity(entityID)
	if err != nil {
		return 0, err
	}
	return entity.Number(property)
}

func (w *WorldModel) Text(entityID, property string) (string, error) {
	entity, err := w.Entity(entityID)
	if err != nil {
		return "", err
	}
	return entity.Text(property)
}

// EntitiesOfType returns the observed entities of one type, nearest to the agent first.
func (w *WorldModel) EntitiesOfType(entityType string) []*Entity {
	out := make([]*Entity, 0)
	for _, entity := range w.Entities {
		if entity != nil && entity.Type == entityType {
			out = append(out, entity)
		}
	}

	origin := w.FloorPosition()
	sort.Slice(out, func(i, j int) bool {
		di, dj := origin.Dist(out[i].FloorPosition()), origin.Dist(out[j].FloorPosition())
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
