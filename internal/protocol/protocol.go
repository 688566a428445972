package protocol

import "github.com/bnema/labrecruits-gym/internal/domain"

type RequestType string

const (
	RequestDisconnect   RequestType = "DISCONNECT"
	RequestPause        RequestType = "PAUSE"
	RequestStart        RequestType = "START"
	RequestInit         RequestType = "INIT"
	RequestAgentCommand RequestType = "AGENTCOMMAND"
)

type AgentCommandType string

const (
	AgentDoNothing   AgentCommandType = "DONOTHING"
	AgentMoveTowards AgentCommandType = "MOVETOWARDS"
	AgentInteract    AgentCommandType = "INTERACT"
)

// ResponseKind is the payload type a request expects back. It never goes on the wire.
type ResponseKind int

const (
	ResponseAck ResponseKind = iota + 1
	ResponseObservation
	ResponseNavMesh
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseAck:
		return "ack"
	case ResponseObservation:
		return "observation"
	case ResponseNavMesh:
		return "navmesh"
	default:
		return "unknown"
	}
}

type Request struct {
	Cmd RequestType `json:"cmd"`
	Arg any         `json:"arg,omitempty"`

	expect ResponseKind
}

func (r Request) Expect() ResponseKind {
	return r.expect
}

func NewInitRequest(args InitArgs) Request {
	return Request{Cmd: RequestInit, Arg: args, expect: ResponseNavMesh}
}

func NewAgentRequest(cmd AgentCommand) Request {
	return Request{Cmd: RequestAgentCommand, Arg: cmd, expect: ResponseObservation}
}

// NewControlRequest builds START, PAUSE and DISCONNECT requests.
func NewControlRequest(cmd RequestType) Request {
	return Request{Cmd: cmd, expect: ResponseAck}
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func FromVec3(v domain.Vec3) Vector {
	return Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vector) Vec3() domain.Vec3 {
	return domain.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

type AgentCommand struct {
	Cmd      AgentCommandType `json:"cmd"`
	AgentID  string           `json:"agentId"`
	TargetID string           `json:"targetId"`
	Arg      any              `json:"arg,omitempty"`
}

// MoveArg is the (target, jump) pair carried by MOVETOWARDS.
type MoveArg struct {
	Target Vector `json:"fst"`
	Jump   bool   `json:"snd"`
}

type LinkPair struct {
	Switch string `json:"fst"`
	Door   string `json:"snd"`
}

// InitArgs is the session configuration as the simulator expects it. Host
// and port are connection details and are not sent.
type InitArgs struct {
	Seed           int        `json:"seed"`
	LevelPath      string     `json:"level_path"`
	LevelName      string     `json:"level_name"`
	AgentSpeed     float64    `json:"agent_speed"`
	NPCSpeed       float64    `json:"npc_speed"`
	FireSpread     float64    `json:"fire_spread"`
	JumpForce      float64    `json:"jump_force"`
	ViewDistance   float64    `json:"view_distance"`
	LightIntensity float64    `json:"light_intensity"`
	AddLinks       []LinkPair `json:"add_links"`
	RemoveLinks    []LinkPair `json:"remove_links"`
}

func NewInitArgs(cfg domain.SessionConfig) InitArgs {
	return InitArgs{
		Seed:           cfg.Seed,
		LevelPath:      cfg.LevelPath,
		LevelName:      cfg.LevelName,
		AgentSpeed:     cfg.AgentSpeed,
		NPCSpeed:       cfg.NPCSpeed,
		FireSpread:     cfg.FireSpread,
		JumpForce:      cfg.JumpForce,
		ViewDistance:   cfg.ViewDistance,
		LightIntensity: cfg.LightIntensity,
		AddLinks:       toLinkPairs(cfg.AddLinks),
		RemoveLinks:    toLinkPairs(cfg.RemoveLinks),
	}
}

func toLinkPairs(links []domain.Link) []LinkPair {
	pairs := make([]LinkPair, 0, len(links))
	for _, link := range links {
		pairs = append(pairs, LinkPair{Switch: link.Switch, Door: link.Door})
	}
	return pairs
}
