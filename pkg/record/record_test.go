package record

import (
	"context"
	"encoding/json"
	"testing"
)

func TestParseSex(t *testing.T) {
	tests := []struct {
		in   string
		want Sex
	}{
		{"male", Male},
		{"M", Male},
		{"sire", Male},
		{" female ", Female},
		{"f", Female},
		{"0.1", Female},
		{"", Unknown},
		{"hermaphrodite", Unknown},
	}
	for _, tt := range tests {
		if got := ParseSex(tt.in); got != tt.want {
			t.Errorf("ParseSex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordJSON(t *testing.T) {
	data := []byte(`{"id":"A","name":"Ada","sex":"F","dam_id":"B","attributes":{"morph":"pastel"}}`)
	var r Record[Attributes]
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Sex != Female {
		t.Errorf("Sex = %q, want female", r.Sex)
	}
	if r.SireID != "" {
		t.Errorf("SireID = %q, want empty", r.SireID)
	}
	if r.Payload["morph"] != "pastel" {
		t.Errorf("payload not forwarded: %v", r.Payload)
	}
}

func TestOtherParent(t *testing.T) {
	r := Record[struct{}]{ID: "D", DamID: "A", SireID: "E"}
	if got := r.OtherParent("A"); got != "E" {
		t.Errorf("OtherParent(A) = %q, want E", got)
	}
	if got := r.OtherParent("E"); got != "A" {
		t.Errorf("OtherParent(E) = %q, want A", got)
	}
	if got := r.OtherParent("X"); got != "" {
		t.Errorf("OtherParent(X) = %q, want empty", got)
	}
	if !r.HasParent("E") || r.HasParent("") {
		t.Error("HasParent mismatch")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[Attributes]()
	defer s.Close()

	s.Put("owner", Record[Attributes]{ID: "A", Name: "first"}, Record[Attributes]{ID: "B"})
	s.Put("owner", Record[Attributes]{ID: "A", Name: "second"})

	recs, err := s.List(ctx, "owner")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].ID != "A" || recs[0].Name != "second" {
		t.Errorf("replacement should keep position: %+v", recs[0])
	}

	recs[0].Name = "mutated"
	again, _ := s.List(ctx, "owner")
	if again[0].Name != "second" {
		t.Error("List should return a copy")
	}

	if empty, _ := s.List(ctx, "nobody"); len(empty) != 0 {
		t.Errorf("unknown owner should be empty, got %d", len(empty))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.List(cancelled, "owner"); err == nil {
		t.Error("List should honour cancellation")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	type traits struct {
		Morph string   `json:"morph"`
		Genes []string `json:"genes"`
	}
	data, err := EncodePayload(traits{Morph: "het", Genes: []string{"albino"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePayload[traits](data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Morph != "het" || len(got.Genes) != 1 {
		t.Errorf("got %+v", got)
	}
	zero, err := DecodePayload[traits](nil)
	if err != nil || zero.Morph != "" {
		t.Errorf("empty payload should decode to zero value: %+v, %v", zero, err)
	}
}
