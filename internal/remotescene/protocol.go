package remotescene

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/riglab/internal/scene"
)

// Event names of the bridge protocol.
const (
	EventCall        = "scene:call"
	EventReplyPrefix = "scene:reply:"
)

// Operation names carried in Request.Op.
const (
	OpRoot               = "root"
	OpAddNode            = "addNode"
	OpDelete             = "delete"
	OpExists             = "exists"
	OpKind               = "kind"
	OpParent             = "parent"
	OpChildren           = "children"
	OpName               = "name"
	OpSetName            = "setName"
	OpFindByName         = "findByName"
	OpAddParam           = "addParam"
	OpParamDef           = "paramDef"
	OpParam              = "param"
	OpSetParam           = "setParam"
	OpSetExpression      = "setExpression"
	OpExpression         = "expression"
	OpAddConstraint      = "addConstraint"
	OpGlobalTransform    = "globalTransform"
	OpSetGlobalTransform = "setGlobalTransform"
	OpLocalTransform     = "localTransform"
	OpSetLocalTransform  = "setLocalTransform"
	OpApplyOp            = "applyOp"
	OpSetData            = "setData"
	OpData               = "data"
	OpRefresh            = "refresh"
)

// Request is the payload of a "scene:call" event.
type Request struct {
	ID   string         `json:"id"`
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
}

// Reply is the payload of a "scene:reply:<id>" event.
type Reply struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	// Code identifies a scene sentinel error so that errors.Is keeps
	// working across the wire.
	Code string `json:"code,omitempty"`
}

// ReplyEvent returns the event name the bridge answers a request on.
func ReplyEvent(id string) string { return EventReplyPrefix + id }

var errorCodes = map[string]error{
	"node_not_found":  scene.ErrNodeNotFound,
	"param_not_found": scene.ErrParamNotFound,
	"param_exists":    scene.ErrParamExists,
	"name_taken":      scene.ErrNameTaken,
	"invalid_name":    scene.ErrInvalidName,
	"unknown_op":      scene.ErrUnknownOp,
	"param_driven":    scene.ErrParamDriven,
}

// ErrBridge wraps errors reported by the bridge that carry no known code.
var ErrBridge = errors.New("remotescene: bridge error")

func codeOf(err error) string {
	for code, sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}

// Err converts a failed reply into an error.
func (r Reply) Err() error {
	if r.OK {
		return nil
	}
	if sentinel, ok := errorCodes[r.Code]; ok {
		return fmt.Errorf("%w: %s", sentinel, r.Error)
	}
	return fmt.Errorf("%w: %s", ErrBridge, r.Error)
}

func failure(err error) Reply {
	return Reply{Error: err.Error(), Code: codeOf(err)}
}

func success(result any) Reply {
	return Reply{OK: true, Result: result}
}

// Serve executes a request against g and returns the reply a bridge sends
// back.
func Serve(ctx context.Context, g scene.Graph, req Request) Reply {
	result, err := serve(ctx, g, req.Op, args(req.Args))
	if err != nil {
		return failure(err)
	}
	return success(result)
}

func serve(ctx context.Context, g scene.Graph, op string, a args) (any, error) {
	switch op {
	case OpRoot:
		return string(g.Root(ctx)), nil
	case OpFindByName:
		name, err := a.str("name")
		if err != nil {
			return nil, err
		}
		id, ok := g.FindByName(ctx, name)
		return map[string]any{"id": string(id), "found": ok}, nil
	case OpAddNode:
		parent, err := a.id("parent")
		if err != nil {
			return nil, err
		}
		kind, err := a.num("kind")
		if err != nil {
			return nil, err
		}
		id, err := g.AddNode(ctx, parent, scene.NodeKind(kind))
		return string(id), err
	case OpRefresh:
		return nil, g.Refresh(ctx)
	case OpApplyOp:
		name, err := a.str("op")
		if err != nil {
			return nil, err
		}
		opArgs, err := a.strs("args")
		if err != nil {
			return nil, err
		}
		return nil, g.ApplyOp(ctx, name, opArgs...)
	case OpAddConstraint:
		return serveConstraint(ctx, g, a)
	case OpAddParam, OpParamDef, OpParam, OpSetParam, OpSetExpression, OpExpression:
		return serveParam(ctx, g, op, a)
	}

	id, err := a.id("id")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch op {
	case OpDelete:
		return nil, g.Delete(ctx, id)
	case OpExists:
		return g.Exists(ctx, id), nil
	case OpKind:
		k, err := g.Kind(ctx, id)
		return float64(k), err
	case OpParent:
		p, err := g.Parent(ctx, id)
		return string(p), err
	case OpChildren:
		children, err := g.Children(ctx, id)
		return idsToWire(children), err
	case OpName:
		return g.Name(ctx, id)
	case OpSetName:
		name, err := a.str("name")
		if err != nil {
			return nil, err
		}
		return nil, g.SetName(ctx, id, name)
	case OpGlobalTransform, OpLocalTransform:
		get := g.GlobalTransform
		if op == OpLocalTransform {
			get = g.LocalTransform
		}
		m, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		return matrixToWire(m), nil
	case OpSetGlobalTransform, OpSetLocalTransform:
		m, err := matrixFromWire(a["matrix"])
		if err != nil {
			return nil, err
		}
		if op == OpSetLocalTransform {
			return nil, g.SetLocalTransform(ctx, id, m)
		}
		return nil, g.SetGlobalTransform(ctx, id, m)
	case OpSetData:
		key, err := a.str("key")
		if err != nil {
			return nil, err
		}
		raw, err := bytesFromWire(a["value"])
		if err != nil {
			return nil, err
		}
		return nil, g.SetData(ctx, id, key, raw)
	case OpData:
		key, err := a.str("key")
		if err != nil {
			return nil, err
		}
		raw, ok, err := g.Data(ctx, id, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return map[string]any{"found": false}, nil
		}
		return map[string]any{"found": true, "value": bytesToWire(raw)}, nil
	}
	return nil, fmt.Errorf("%w: %s", scene.ErrUnknownOp, op)
}

func serveConstraint(ctx context.Context, g scene.Graph, a args) (any, error) {
	node, err := a.id("node")
	if err != nil {
		return nil, err
	}
	target, err := a.id("target")
	if err != nil {
		return nil, err
	}
	kind, err := a.str("kind")
	if err != nil {
		return nil, err
	}
	compensate, err := a.boolean("compensate")
	if err != nil {
		return nil, err
	}
	id, err := g.AddConstraint(ctx, node, scene.ConstraintKind(kind), target, compensate)
	return string(id), err
}

func serveParam(ctx context.Context, g scene.Graph, op string, a args) (any, error) {
	if op == OpAddParam {
		node, err := a.id("node")
		if err != nil {
			return nil, err
		}
		group, err := a.str("group")
		if err != nil {
			return nil, err
		}
		name, err := a.str("name")
		if err != nil {
			return nil, err
		}
		def, err := defFromWire(a["def"])
		if err != nil {
			return nil, err
		}
		ref, err := g.AddParam(ctx, node, group, name, def)
		if err != nil {
			return nil, err
		}
		return refToWire(ref), nil
	}

	ref, err := refFromWire(a["ref"])
	if err != nil {
		return nil, err
	}
	switch op {
	case OpParamDef:
		def, err := g.ParamDef(ctx, ref)
		if err != nil {
			return nil, err
		}
		return defToWire(def)
	case OpParam:
		v, err := g.Param(ctx, ref)
		if err != nil {
			return nil, err
		}
		return valueToWire(v)
	case OpSetParam:
		v, err := valueFromWire(a["value"])
		if err != nil {
			return nil, err
		}
		return nil, g.SetParam(ctx, ref, v)
	case OpSetExpression:
		source, err := a.str("source")
		if err != nil {
			return nil, err
		}
		return nil, g.SetExpression(ctx, ref, source)
	default:
		source, ok, err := g.Expression(ctx, ref)
		if err != nil {
			return nil, err
		}
		return map[string]any{"source": source, "found": ok}, nil
	}
}
