package model

import "github.com/goccy/go-json"

// NodeID identifies a track, stage or task inside the editor. A node is either
// persisted (it carries the server id) or a draft that only has a local token
// until the whole track is accepted by the server.
type NodeID struct {
	serverID string
	token    string
}

func Persisted(id string) NodeID {
	return NodeID{serverID: id}
}

func Draft(token string) NodeID {
	return NodeID{token: token}
}

func (n NodeID) IsDraft() bool {
	return n.serverID == ""
}

// ServerID returns the persisted id; ok is false for drafts.
func (n NodeID) ServerID() (string, bool) {
	return n.serverID, n.serverID != ""
}

func (n NodeID) String() string {
	if n.IsDraft() {
		return n.token
	}
	return n.serverID
}

func (n NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string `json:"id"`
		Draft bool   `json:"draft"`
	}{
		ID:    n.String(),
		Draft: n.IsDraft(),
	})
}
