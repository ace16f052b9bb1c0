package domain_test

import (
	"testing"

	"github.com/strandkit/strand/pkg/domain"
)

func TestGetByLoc(t *testing.T) {
	value := map[string]any{
		"choices": []any{
			map[string]any{"text": "first"},
			map[string]any{"text": "second"},
		},
		"usage": map[string]any{"total": 7},
	}

	tests := []struct {
		name    string
		loc     domain.Loc
		want    any
		wantErr bool
	}{
		{"Empty Loc Returns Value", nil, value, false},
		{"Map Key", domain.Loc{"usage", "total"}, 7, false},
		{"Array Index", domain.Loc{"choices", 0, "text"}, "first", false},
		{"Negative Index", domain.Loc{"choices", -1, "text"}, "second", false},
		{"Missing Key", domain.Loc{"missing"}, nil, true},
		{"Index Out Of Range", domain.Loc{"choices", 5}, nil, true},
		{"Key Into Array", domain.Loc{"choices", "text"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.GetByLoc(value, tt.loc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetByLoc() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !equalAny(got, tt.want) {
				t.Errorf("GetByLoc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPutByLoc(t *testing.T) {
	root := map[string]any{
		"items": []any{"a", "b"},
		"meta":  map[string]any{},
	}

	if err := domain.PutByLoc(root, domain.Loc{"items", 1}, "B"); err != nil {
		t.Fatalf("PutByLoc() error = %v", err)
	}
	if root["items"].([]any)[1] != "B" {
		t.Errorf("items = %v", root["items"])
	}

	if err := domain.PutByLoc(root, domain.Loc{"meta", "k"}, 1); err != nil {
		t.Fatalf("PutByLoc() error = %v", err)
	}
	if root["meta"].(map[string]any)["k"] != 1 {
		t.Errorf("meta = %v", root["meta"])
	}

	if err := domain.PutByLoc(root, nil, "x"); err == nil {
		t.Error("PutByLoc() accepted an empty loc")
	}
}

func equalAny(a, b any) bool {
	if am, ok := a.(map[string]any); ok {
		bm, ok := b.(map[string]any)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k := range am {
			if !equalAny(am[k], bm[k]) {
				return false
			}
		}
		return true
	}
	if as, ok := a.([]any); ok {
		bs, ok := b.([]any)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !equalAny(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
