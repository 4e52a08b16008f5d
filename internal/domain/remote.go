package domain

import "encoding/json"

// RemoteLink ties a local entity to its provider-side mirror.
// The zero value is unlinked.
type RemoteLink struct {
	id string
}

// LinkedTo returns a link bound to id. An empty id yields an unlinked value.
func LinkedTo(id string) RemoteLink {
	return RemoteLink{id: id}
}

// LinkFromNullable builds a link from a nullable database column.
func LinkFromNullable(id *string) RemoteLink {
	if id == nil {
		return RemoteLink{}
	}
	return RemoteLink{id: *id}
}

func (l RemoteLink) Linked() bool {
	return l.id != ""
}

func (l RemoteLink) ID() string {
	return l.id
}

// Nullable returns the id as a nullable column value.
func (l RemoteLink) Nullable() *string {
	if l.id == "" {
		return nil
	}
	id := l.id
	return &id
}

// Bind sets the remote id. A link can be bound only once.
func (l *RemoteLink) Bind(id string) error {
	if l.id != "" {
		return ErrAlreadyLinked
	}
	l.id = id
	return nil
}

func (l RemoteLink) MarshalJSON() ([]byte, error) {
	if l.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(l.id)
}

func (l *RemoteLink) UnmarshalJSON(b []byte) error {
	var id *string
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	*l = LinkFromNullable(id)
	return nil
}
