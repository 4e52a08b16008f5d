package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRemoteLinkBindOnce(t *testing.T) {
	var l RemoteLink
	if l.Linked() {
		t.Fatalf("zero link should be unlinked")
	}
	if err := l.Bind("prod_1"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := l.Bind("prod_2"); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
	if l.ID() != "prod_1" {
		t.Fatalf("expected prod_1, got %q", l.ID())
	}
}

func TestRemoteLinkNullable(t *testing.T) {
	if LinkFromNullable(nil).Linked() {
		t.Fatalf("nil column should be unlinked")
	}
	if LinkedTo("").Nullable() != nil {
		t.Fatalf("unlinked should map to NULL")
	}
	id := "sku_1"
	if got := LinkFromNullable(&id).Nullable(); got == nil || *got != "sku_1" {
		t.Fatalf("round trip through nullable failed: %v", got)
	}
}

func TestRemoteLinkJSON(t *testing.T) {
	item := CatalogItem{Name: "Tee"}
	raw, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := fields["remoteId"]; !ok || v != nil {
		t.Fatalf("expected remoteId null, got %v", fields["remoteId"])
	}

	var back CatalogItem
	if err := json.Unmarshal([]byte(`{"remoteId":"prod_9"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Remote.ID() != "prod_9" {
		t.Fatalf("expected prod_9, got %q", back.Remote.ID())
	}
}
