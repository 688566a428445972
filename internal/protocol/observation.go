package protocol

import "github.com/bnema/labrecruits-gym/internal/domain"

type Observation struct {
	AgentID       string         `json:"agentID"`
	AgentPosition Vector         `json:"agentPosition"`
	Velocity      Vector         `json:"velocity"`
	Health        int            `json:"health"`
	Score         int            `json:"score"`
	Mood          string         `json:"mood"`
	GameTick      int64          `json:"gameTick"`
	Objs          []EntityRecord `json:"objs"`
}

type EntityRecord struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Tag        string         `json:"tag"`
	Position   Vector         `json:"position"`
	Properties map[string]any `json:"properties"`
}

func (o Observation) WorldModel() *domain.WorldModel {
	world := &domain.WorldModel{
		AgentID:  o.AgentID,
		Position: o.AgentPosition.Vec3(),
		Velocity: o.Velocity.Vec3(),
		Health:   o.Health,
		Score:    o.Score,
		Mood:     o.Mood,
		Tick:     o.GameTick,
		Entities: make(map[string]*domain.Entity, len(o.Objs)),
	}

	for _, obj := range o.Objs {
		if obj.ID == "" {
			continue
		}
		props := make(map[string]any, len(obj.Properties))
		for k, v := range obj.Properties {
			props[k] = v
		}
		world.Entities[obj.ID] = &domain.Entity{
			ID:         obj.ID,
			Type:       obj.Type,
			Tag:        obj.Tag,
			Position:   obj.Position.Vec3(),
			Properties: props,
		}
	}

	return world
}

// RawNavMesh is the triangle soup the simulator sends in answer to INIT.
type RawNavMesh struct {
	Vertices []Vector `json:"vertices"`
	Indices  []int    `json:"indices"`
}

func (m RawNavMesh) Graph() (*domain.NavGraph, error) {
	vertices := make([]domain.Vec3, 0, len(m.Vertices))
	for _, v := range m.Vertices {
		vertices = append(vertices, v.Vec3())
	}
	return domain.NewNavGraph(vertices, m.Indices)
}
