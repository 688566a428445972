package protocol

import (
	"testing"

	"github.com/bnema/labrecruits-gym/internal/domain"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAgentRequest(t *testing.T) {
	t.Parallel()

	req := NewAgentRequest(AgentCommand{
		Cmd:      AgentMoveTowards,
		AgentID:  "agent0",
		TargetID: "agent0",
		Arg:      MoveArg{Target: Vector{X: 1, Y: 0, Z: 2}},
	})

	frame, err := Encode(req)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), frame[len(frame)-1])
	assert.JSONEq(t, `{
		"cmd": "AGENTCOMMAND",
		"arg": {
			"cmd": "MOVETOWARDS",
			"agentId": "agent0",
			"targetId": "agent0",
			"arg": {"fst": {"x": 1, "y": 0, "z": 2}, "snd": false}
		}
	}`, string(frame))
	assert.Equal(t, ResponseObservation, req.Expect())
}

func TestEncodeControlRequestOmitsArg(t *testing.T) {
	t.Parallel()

	frame, err := Encode(NewControlRequest(RequestDisconnect))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cmd":"DISCONNECT"}`, string(frame))
}

func TestInitArgsLeaveOutConnectionDetails(t *testing.T) {
	t.Parallel()

	cfg := domain.DefaultSessionConfig()
	cfg.LevelName = "lvl"
	cfg.LevelPath = "/levels/lvl.csv"
	cfg.AddLinks = []domain.Link{{Switch: "b0", Door: "d1"}}

	frame, err := Encode(NewInitRequest(NewInitArgs(cfg)))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(frame, &decoded))
	arg := decoded["arg"].(map[string]any)
	assert.NotContains(t, arg, "host")
	assert.NotContains(t, arg, "port")
	assert.Equal(t, "lvl", arg["level_name"])
	assert.InDelta(t, 0.13, arg["agent_speed"], 1e-9)
	assert.Equal(t, []any{map[string]any{"fst": "b0", "snd": "d1"}}, arg["add_links"])
	assert.Equal(t, []any{}, arg["remove_links"])
}

func TestDecodeMatchesExpectedKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    ResponseKind
		frame   string
		wantErr bool
		check   func(t *testing.T, resp Response)
	}{
		{
			name:  "ack true",
			kind:  ResponseAck,
			frame: "true\n",
			check: func(t *testing.T, resp Response) { assert.True(t, resp.Ack) },
		},
		{
			name:  "ack false",
			kind:  ResponseAck,
			frame: "false",
			check: func(t *testing.T, resp Response) { assert.False(t, resp.Ack) },
		},
		{
			name: "observation",
			kind: ResponseObservation,
			frame: `{"agentID":"agent0","agentPosition":{"x":1,"y":0.5,"z":2},"health":100,` +
				`"objs":[{"id":"door0","type":"Door","position":{"x":3,"y":0,"z":3},"properties":{"isOpen":false}}]}`,
			check: func(t *testing.T, resp Response) {
				require.NotNil(t, resp.Observation)
				world := resp.Observation.WorldModel()
				assert.Equal(t, domain.Vec3{X: 1, Y: 0.5, Z: 2}, world.Position)
				open, err := world.Bool("door0", domain.PropertyDoorOpen)
				require.NoError(t, err)
				assert.False(t, open)
			},
		},
		{
			name:  "navmesh",
			kind:  ResponseNavMesh,
			frame: `{"vertices":[{"x":0,"y":0,"z":0},{"x":1,"y":0,"z":0},{"x":0,"y":0,"z":1}],"indices":[0,1,2]}`,
			check: func(t *testing.T, resp Response) {
				require.NotNil(t, resp.NavMesh)
				graph, err := resp.NavMesh.Graph()
				require.NoError(t, err)
				assert.Equal(t, 3, graph.VertexCount())
			},
		},
		{
			name:  "null navmesh is not a decode error",
			kind:  ResponseNavMesh,
			frame: "null",
			check: func(t *testing.T, resp Response) { assert.Nil(t, resp.NavMesh) },
		},
		{name: "observation where ack expected", kind: ResponseAck, frame: `{"agentID":"agent0"}`, wantErr: true},
		{name: "ack where observation expected", kind: ResponseObservation, frame: "true", wantErr: true},
		{name: "navmesh where observation expected", kind: ResponseObservation, frame: `{"vertices":[],"indices":[]}`, wantErr: true},
		{name: "observation where navmesh expected", kind: ResponseNavMesh, frame: `{"agentID":"agent0"}`, wantErr: true},
		{name: "garbage", kind: ResponseObservation, frame: `{"agentID":`, wantErr: true},
		{name: "empty", kind: ResponseAck, frame: "  ", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := Decode(tt.kind, []byte(tt.frame))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrProtocolViolation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, resp.Kind)
			tt.check(t, resp)
		})
	}
}
