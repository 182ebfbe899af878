package remotescene

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/riglab/internal/scene"
)

// Loopback is a Caller that serves requests in-process against a local
// graph. Requests and replies go through the same JSON encoding as on the
// socket.
type Loopback struct {
	Graph scene.Graph
	// Calls counts the requests served.
	Calls int
}

var _ Caller = (*Loopback)(nil)

// Call implements Caller.
func (l *Loopback) Call(ctx context.Context, req Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	l.Calls++

	raw, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("encoding request: %w", err)
	}
	var wire Request
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Reply{}, fmt.Errorf("decoding request: %w", err)
	}
	return decodeReply(Serve(ctx, l.Graph, wire))
}
