package remotescene

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/riglab/internal/ctxlog"
	"github.com/vk/riglab/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// Caller performs one request/reply exchange with a bridge.
type Caller interface {
	Call(ctx context.Context, req Request) (Reply, error)
}

// Client is a scene.Graph whose calls are executed by a remote bridge.
// Calls are serialised: at most one request is in flight.
type Client struct {
	caller Caller
	mu     sync.Mutex
}

var _ scene.Graph = (*Client)(nil)

// NewClient creates a Client using the given caller.
func NewClient(caller Caller) *Client {
	return &Client{caller: caller}
}

func (c *Client) call(ctx context.Context, op string, a map[string]any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := Request{ID: uuid.NewString(), Op: op, Args: a}
	ctxlog.FromContext(ctx).Debug("Calling scene bridge.", "op", op, "id", req.ID)
	reply, err := c.caller.Call(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scene call %s: %w", op, err)
	}
	if err := reply.Err(); err != nil {
		return nil, fmt.Errorf("scene call %s: %w", op, err)
	}
	return reply.Result, nil
}

func (c *Client) callID(ctx context.Context, op string, a map[string]any) (scene.NodeID, error) {
	res, err := c.call(ctx, op, a)
	if err != nil {
		return "", err
	}
	s, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("scene call %s: expected a node id, got %T", op, res)
	}
	return scene.NodeID(s), nil
}

func (c *Client) callLookup(ctx context.Context, op string, a map[string]any, key string) (any, bool, error) {
	res, err := c.call(ctx, op, a)
	if err != nil {
		return nil, false, err
	}
	m, ok := res.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("scene call %s: expected an object, got %T", op, res)
	}
	found, _ := m["found"].(bool)
	return m[key], found, nil
}

func node(id scene.NodeID) map[string]any {
	return map[string]any{"id": string(id)}
}

// Root implements scene.Graph. A failed call is logged and yields an empty
// handle.
func (c *Client) Root(ctx context.Context) scene.NodeID {
	id, err := c.callID(ctx, OpRoot, nil)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Failed to resolve scene root.", "error", err)
	}
	return id
}

func (c *Client) AddNode(ctx context.Context, parent scene.NodeID, kind scene.NodeKind) (scene.NodeID, error) {
	return c.callID(ctx, OpAddNode, map[string]any{"parent": string(parent), "kind": float64(kind)})
}

func (c *Client) Delete(ctx context.Context, id scene.NodeID) error {
	_, err := c.call(ctx, OpDelete, node(id))
	return err
}

// Exists implements scene.Graph. A failed call reports false.
func (c *Client) Exists(ctx context.Context, id scene.NodeID) bool {
	res, err := c.call(ctx, OpExists, node(id))
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Existence check failed.", "id", id, "error", err)
		return false
	}
	ok, _ := res.(bool)
	return ok
}

func (c *Client) Kind(ctx context.Context, id scene.NodeID) (scene.NodeKind, error) {
	res, err := c.call(ctx, OpKind, node(id))
	if err != nil {
		return 0, err
	}
	f, ok := res.(float64)
	if !ok {
		return 0, fmt.Errorf("scene call %s: expected a number, got %T", OpKind, res)
	}
	return scene.NodeKind(f), nil
}

func (c *Client) Parent(ctx context.Context, id scene.NodeID) (scene.NodeID, error) {
	return c.callID(ctx, OpParent, node(id))
}

func (c *Client) Children(ctx context.Context, id scene.NodeID) ([]scene.NodeID, error) {
	res, err := c.call(ctx, OpChildren, node(id))
	if err != nil {
		return nil, err
	}
	return idsFromWire(res)
}

func (c *Client) Name(ctx context.Context, id scene.NodeID) (string, error) {
	res, err := c.callID(ctx, OpName, node(id))
	return string(res), err
}

func (c *Client) SetName(ctx context.Context, id scene.NodeID, name string) error {
	_, err := c.call(ctx, OpSetName, map[string]any{"id": string(id), "name": name})
	return err
}

// FindByName implements scene.Graph. A failed call reports not found.
func (c *Client) FindByName(ctx context.Context, name string) (scene.NodeID, bool) {
	res, found, err := c.callLookup(ctx, OpFindByName, map[string]any{"name": name}, "id")
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Name lookup failed.", "name", name, "error", err)
		return "", false
	}
	id, _ := res.(string)
	return scene.NodeID(id), found
}

func (c *Client) AddParam(ctx context.Context, n scene.NodeID, group, name string, def scene.ParamDef) (scene.ParamRef, error) {
	wire, err := defToWire(def)
	if err != nil {
		return scene.ParamRef{}, err
	}
	res, err := c.call(ctx, OpAddParam, map[string]any{"node": string(n), "group": group, "name": name, "def": wire})
	if err != nil {
		return scene.ParamRef{}, err
	}
	return refFromWire(res)
}

func (c *Client) ParamDef(ctx context.Context, ref scene.ParamRef) (scene.ParamDef, error) {
	res, err := c.call(ctx, OpParamDef, map[string]any{"ref": refToWire(ref)})
	if err != nil {
		return scene.ParamDef{}, err
	}
	return defFromWire(res)
}

func (c *Client) Param(ctx context.Context, ref scene.ParamRef) (cty.Value, error) {
	res, err := c.call(ctx, OpParam, map[string]any{"ref": refToWire(ref)})
	if err != nil {
		return cty.NilVal, err
	}
	return valueFromWire(res)
}

func (c *Client) SetParam(ctx context.Context, ref scene.ParamRef, value cty.Value) error {
	wire, err := valueToWire(value)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, OpSetParam, map[string]any{"ref": refToWire(ref), "value": wire})
	return err
}

func (c *Client) SetExpression(ctx context.Context, ref scene.ParamRef, source string) error {
	_, err := c.call(ctx, OpSetExpression, map[string]any{"ref": refToWire(ref), "source": source})
	return err
}

func (c *Client) Expression(ctx context.Context, ref scene.ParamRef) (string, bool, error) {
	res, found, err := c.callLookup(ctx, OpExpression, map[string]any{"ref": refToWire(ref)}, "source")
	if err != nil || !found {
		return "", false, err
	}
	source, _ := res.(string)
	return source, true, nil
}

func (c *Client) AddConstraint(ctx context.Context, n scene.NodeID, kind scene.ConstraintKind, target scene.NodeID, compensate bool) (scene.NodeID, error) {
	return c.callID(ctx, OpAddConstraint, map[string]any{
		"node":       string(n),
		"kind":       string(kind),
		"target":     string(target),
		"compensate": compensate,
	})
}

func (c *Client) transform(ctx context.Context, op string, id scene.NodeID) (scene.Matrix4, error) {
	res, err := c.call(ctx, op, node(id))
	if err != nil {
		return scene.Matrix4{}, err
	}
	return matrixFromWire(res)
}

func (c *Client) GlobalTransform(ctx context.Context, id scene.NodeID) (scene.Matrix4, error) {
	return c.transform(ctx, OpGlobalTransform, id)
}

func (c *Client) LocalTransform(ctx context.Context, id scene.NodeID) (scene.Matrix4, error) {
	return c.transform(ctx, OpLocalTransform, id)
}

func (c *Client) SetGlobalTransform(ctx context.Context, id scene.NodeID, m scene.Matrix4) error {
	_, err := c.call(ctx, OpSetGlobalTransform, map[string]any{"id": string(id), "matrix": matrixToWire(m)})
	return err
}

func (c *Client) SetLocalTransform(ctx context.Context, id scene.NodeID, m scene.Matrix4) error {
	_, err := c.call(ctx, OpSetLocalTransform, map[string]any{"id": string(id), "matrix": matrixToWire(m)})
	return err
}

func (c *Client) ApplyOp(ctx context.Context, op string, opArgs ...string) error {
	wire := make([]any, len(opArgs))
	for i, a := range opArgs {
		wire[i] = a
	}
	_, err := c.call(ctx, OpApplyOp, map[string]any{"op": op, "args": wire})
	return err
}

func (c *Client) SetData(ctx context.Context, id scene.NodeID, key string, value []byte) error {
	_, err := c.call(ctx, OpSetData, map[string]any{"id": string(id), "key": key, "value": bytesToWire(value)})
	return err
}

func (c *Client) Data(ctx context.Context, id scene.NodeID, key string) ([]byte, bool, error) {
	res, found, err := c.callLookup(ctx, OpData, map[string]any{"id": string(id), "key": key}, "value")
	if err != nil || !found {
		return nil, false, err
	}
	raw, err := bytesFromWire(res)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.call(ctx, OpRefresh, nil)
	return err
}
