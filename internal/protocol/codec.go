package protocol

import (
	"bytes"
	"fmt"

	"github.com/bnema/labrecruits-gym/internal/domain"
	json "github.com/json-iterator/go"
)

// Response holds exactly one decoded payload, selected by Kind.
type Response struct {
	Kind        ResponseKind
	Ack         bool
	Observation *Observation
	NavMesh     *RawNavMesh
}

// Encode renders the request as one newline-terminated frame.
func Encode(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.Cmd, err)
	}
	return append(data, '\n'), nil
}

// Decode parses one frame as the payload kind the request asked for. A frame
// of another shape is a protocol violation. A null navmesh is returned as a
// nil NavMesh so the caller can report the failed load.
func Decode(kind ResponseKind, frame []byte) (Response, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return Response{}, fmt.Errorf("%w: empty %s response", domain.ErrProtocolViolation, kind)
	}

	resp := Response{Kind: kind}
	switch kind {
	case ResponseAck:
		if !bytes.Equal(frame, []byte("true")) && !bytes.Equal(frame, []byte("false")) {
			return Response{}, mismatch(kind, frame)
		}
		resp.Ack = frame[0] == 't'

	case ResponseObservation:
		if frame[0] != '{' {
			return Response{}, mismatch(kind, frame)
		}
		var obs Observation
		if err := json.Unmarshal(frame, &obs); err != nil {
			return Response{}, fmt.Errorf("%w: decode observation: %v", domain.ErrProtocolViolation, err)
		}
		if obs.AgentID == "" {
			return Response{}, mismatch(kind, frame)
		}
		resp.Observation = &obs

	case ResponseNavMesh:
		if bytes.Equal(frame, []byte("null")) {
			return resp, nil
		}
		if frame[0] != '{' {
			return Response{}, mismatch(kind, frame)
		}
		var mesh RawNavMesh
		if err := json.Unmarshal(frame, &mesh); err != nil {
			return Response{}, fmt.Errorf("%w: decode navmesh: %v", domain.ErrProtocolViolation, err)
		}
		if mesh.Vertices == nil {
			return Response{}, mismatch(kind, frame)
		}
		resp.NavMesh = &mesh

	default:
		return Response{}, fmt.Errorf("%w: request declares no response kind", domain.ErrProtocolViolation)
	}

	return resp, nil
}

func mismatch(kind ResponseKind, frame []byte) error {
	const maxEcho = 64
	if len(frame) > maxEcho {
		frame = append(frame[:maxEcho:maxEcho], "..."...)
	}
	return fmt.Errorf("%w: expected %s, got %s", domain.ErrProtocolViolation, kind, frame)
}
