package application

import (
	"fmt"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/protocol"
)

type Operation string

const (
	OpLoadWorld  Operation = "load-world"
	OpObserve    Operation = "observe"
	OpMoveToward Operation = "move-toward"
	OpInteract   Operation = "interact"
	OpStart      Operation = "start"
	OpPause      Operation = "pause"
	OpDisconnect Operation = "disconnect"
)

// Command is an abstract action on the simulation.
type Command struct {
	Op       Operation
	AgentID  string
	TargetID string
	// From is the agent's current position, used to clamp moves.
	From domain.Vec3
	To   domain.Vec3
}

// Translator turns commands into wire requests. It holds no connection state.
type Translator struct {
	Session domain.SessionConfig
	MaxStep float64
}

func NewTranslator(session domain.SessionConfig) Translator {
	return Translator{Session: session, MaxStep: domain.MaxStep}
}

func (t Translator) Translate(cmd Command) (protocol.Request, error) {
	switch cmd.Op {
	case OpLoadWorld:
		return protocol.NewInitRequest(protocol.NewInitArgs(t.Session)), nil
	case OpObserve:
		return protocol.NewAgentRequest(protocol.AgentCommand{
			Cmd:      protocol.AgentDoNothing,
			AgentID:  cmd.AgentID,
			TargetID: cmd.AgentID,
		}), nil
	case OpMoveToward:
		target := ClampStep(cmd.From, cmd.To, t.maxStep())
		return protocol.NewAgentRequest(protocol.AgentCommand{
			Cmd:      protocol.AgentMoveTowards,
			AgentID:  cmd.AgentID,
			TargetID: cmd.AgentID,
			Arg:      protocol.MoveArg{Target: protocol.FromVec3(target), Jump: false},
		}), nil
	case OpInteract:
		return protocol.NewAgentRequest(protocol.AgentCommand{
			Cmd:      protocol.AgentInteract,
			AgentID:  cmd.AgentID,
			TargetID: cmd.TargetID,
		}), nil
	case OpStart:
		return protocol.NewControlRequest(protocol.RequestStart), nil
	case OpPause:
		return protocol.NewControlRequest(protocol.RequestPause), nil
	case OpDisconnect:
		return protocol.NewControlRequest(protocol.RequestDisconnect), nil
	default:
		return protocol.Request{}, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, cmd.Op)
	}
}

func (t Translator) maxStep() float64 {
	if t.MaxStep <= 0 {
		return domain.MaxStep
	}
	return t.MaxStep
}

// ClampStep returns target if it lies within maxStep of from, otherwise the
// point maxStep away from from in the direction of target.
func ClampStep(from, target domain.Vec3, maxStep float64) domain.Vec3 {
	delta := target.Sub(from)
	if delta.Length() <= maxStep {
		return target
	}
	return from.Add(delta.Normalized().Mul(maxStep))
}
