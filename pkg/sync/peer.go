// Package sync is a minimal basis for concurrent-edit tolerance: a
// websocket peer that exchanges ChangeSets as JSON and rebases pending
// local edits against whatever the remote peer sends back, the way a
// CodeMirror-style collab client would. It is not a session/auth/presence
// server — grounded on the teacher's pkg/transport/websocket.go
// dial/receive-loop shape and pkg/transport/handler.go's JSON message
// envelope, scoped down to this one concern.
package sync

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/coreseekdev/texere-core/pkg/change"
)

// wireMessage is the JSON envelope exchanged between peers, following the
// teacher's flat-struct-with-json-tags convention.
type wireMessage struct {
	ClientID string        `json:"clientId"`
	Changes  []change.Spec `json:"changes"`
	DocLen   int           `json:"docLen"` // sender's document length before Changes
}

// Peer is one end of a collaborative edit session. Construct it with Dial
// (client mode, connecting out) or Accept (server mode, wrapping an
// already-upgraded *websocket.Conn).
type Peer struct {
	mu       sync.Mutex
	conn     *websocket.Conn
	clientID string

	// pending is every local change pushed but not yet echoed back by the
	// remote peer, composed into one ChangeSet against the document as it
	// stood before any of them — nil when there is nothing outstanding.
	pending *change.ChangeSet
}

// Dial connects to a collaboration endpoint as a client.
func Dial(ctx context.Context, url, clientID string) (*Peer, error) {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Peer{conn: conn, clientID: clientID}, nil
}

// Accept wraps an already-upgraded server-side connection as a Peer.
func Accept(conn *websocket.Conn, clientID string) *Peer {
	return &Peer{conn: conn, clientID: clientID}
}

// Close closes the underlying connection.
func (p *Peer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.Close()
}

// Push sends a local edit to the remote peer. docLen is the length of the
// caller's document immediately before specs is applied — it must already
// account for any of this peer's own changes still pending confirmation.
func (p *Peer) Push(specs []change.Spec, docLen int) error {
	cs, err := change.Of(specs, docLen)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending == nil {
		p.pending = cs
	} else {
		composed, err := p.pending.Compose(cs)
		if err != nil {
			return err
		}
		p.pending = composed
	}

	return p.conn.WriteJSON(wireMessage{ClientID: p.clientID, Changes: specs, DocLen: docLen})
}

// Receive blocks for the next message from the remote peer. If it is this
// peer's own edit echoed back, Receive clears the confirmed pending
// changes and returns (nil, true, nil) — the caller applies nothing. If it
// is a genuine remote edit, Receive rebases it against any still-pending
// local edits (and rebases those pending edits against it in turn, so a
// later Push composes correctly) and returns the rebased ChangeSet, ready
// to Apply directly to the caller's current document.
func (p *Peer) Receive() (remote *change.ChangeSet, isEcho bool, err error) {
	var msg wireMessage
	if err := p.conn.ReadJSON(&msg); err != nil {
		return nil, false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if msg.ClientID == p.clientID {
		p.pending = nil
		return nil, true, nil
	}

	remote, err = change.Of(msg.Changes, msg.DocLen)
	if err != nil {
		return nil, false, err
	}

	if p.pending != nil {
		mappedRemote, err := remote.Map(p.pending.Desc(), false) // pending's insertions win ties
		if err != nil {
			return nil, false, err
		}
		newPending, err := p.pending.Map(remote.Desc(), true) // ...consistently, on both sides
		if err != nil {
			return nil, false, err
		}
		remote = mappedRemote
		p.pending = newPending
	}

	return remote, false, nil
}

// MarshalPending exposes the composed pending ChangeSet as JSON, for
// diagnostics; it returns null when nothing is outstanding.
func (p *Peer) MarshalPending() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(struct {
		Length    int `json:"length"`
		NewLength int `json:"newLength"`
	}{p.pending.Length(), p.pending.NewLength()})
}
