package simtest

import (
	"math"

	"github.com/bnema/labrecruits-gym/internal/protocol"
)

type Object struct {
	ID       string
	Type     string
	Position protocol.Vector
	On       bool
}

// World is a tiny level: one agent, some switches and doors, and the wiring
// between them. Switches only react when the agent stands within reach.
type World struct {
	AgentID  string
	Agent    protocol.Vector
	Objects  []*Object
	Links    map[string][]string
	Reach    float64
	NavMesh  protocol.RawNavMesh
	Tick     int64
	Interact func(targetID string)
}

// DefaultWorld has button0 wired to door0 and an unwired button1.
func DefaultWorld() *World {
	w := &World{
		AgentID: "agent0",
		Agent:   protocol.Vector{X: 1, Y: 0.5, Z: 1},
		Objects: []*Object{
			{ID: "button0", Type: "Switch", Position: protocol.Vector{X: 4, Y: 0.5, Z: 1}},
			{ID: "button1", Type: "Switch", Position: protocol.Vector{X: 1, Y: 0.5, Z: 5}},
			{ID: "door0", Type: "Door", Position: protocol.Vector{X: 8, Y: 0.5, Z: 1}},
		},
		Links: map[string][]string{"button0": {"door0"}},
		Reach: 1.5,
		NavMesh: protocol.RawNavMesh{
			Vertices: []protocol.Vector{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 0, Z: 10}, {X: 10, Z: 10}},
			Indices:  []int{0, 1, 2, 1, 3, 2},
		},
	}
	w.Interact = w.toggle
	return w
}

func (w *World) Object(id string) *Object {
	for _, obj := range w.Objects {
		if obj.ID == id {
			return obj
		}
	}
	return nil
}

// MoveAgent places the agent at the target, keeping its height.
func (w *World) MoveAgent(target protocol.Vector) {
	w.Agent = protocol.Vector{X: target.X, Y: w.Agent.Y, Z: target.Z}
}

func (w *World) toggle(targetID string) {
	sw := w.Object(targetID)
	if sw == nil || sw.Type != "Switch" || floorDist(w.Agent, sw.Position) > w.Reach {
		return
	}
	sw.On = !sw.On
	for _, doorID := range w.Links[targetID] {
		if door := w.Object(doorID); door != nil {
			door.On = !door.On
		}
	}
}

func (w *World) Observation(agentID string) protocol.Observation {
	if agentID == "" {
		agentID = w.AgentID
	}

	objs := make([]protocol.EntityRecord, 0, len(w.Objects))
	for _, obj := range w.Objects {
		props := map[string]any{}
		switch obj.Type {
		case "Switch":
			props["isOn"] = obj.On
		case "Door":
			props["isOpen"] = obj.On
		}
		objs = append(objs, protocol.EntityRecord{
			ID:         obj.ID,
			Type:       obj.Type,
			Tag:        obj.Type,
			Position:   obj.Position,
			Properties: props,
		})
	}

	return protocol.Observation{
		AgentID:       agentID,
		AgentPosition: w.Agent,
		Health:        100,
		Mood:          "Normal",
		GameTick:      w.Tick,
		Objs:          objs,
	}
}

func floorDist(a, b protocol.Vector) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}
