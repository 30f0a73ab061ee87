package favourites

import (
	"slices"
	"testing"
)

func TestUnmarshalIndex(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Index
		wantErr bool
	}{
		{name: "empty object", data: `{}`, want: Index{}},
		{name: "single user", data: `{"a@x.com":[5]}`, want: Index{"a@x.com": {5}}},
		{
			name: "keeps order",
			data: `{"a@x.com":[3,1,2],"b@x.com":[7]}`,
			want: Index{"a@x.com": {3, 1, 2}, "b@x.com": {7}},
		},
		{name: "prunes empty lists", data: `{"a@x.com":[],"b@x.com":[1]}`, want: Index{"b@x.com": {1}}},
		{name: "drops duplicate ids", data: `{"a@x.com":[4,2,4,2]}`, want: Index{"a@x.com": {4, 2}}},
		{name: "invalid JSON", data: `{"a@x.com":[5`, wantErr: true},
		{name: "null document", data: `null`, wantErr: true},
		{name: "array document", data: `[1,2]`, wantErr: true},
		{name: "string ids", data: `{"a@x.com":["5"]}`, wantErr: true},
		{name: "fractional ids", data: `{"a@x.com":[1.5]}`, wantErr: true},
		{name: "non-array value", data: `{"a@x.com":5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalIndex([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got index %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for user, ids := range tt.want {
				if !slices.Equal(got[user], ids) {
					t.Errorf("user %s: got %v, want %v", user, got[user], ids)
				}
			}
		})
	}
}

func TestMarshalIndex(t *testing.T) {
	tests := []struct {
		name string
		idx  Index
		want string
	}{
		{name: "nil index", idx: nil, want: `{}`},
		{name: "empty index", idx: Index{}, want: `{}`},
		{name: "single user", idx: Index{"a@x.com": {5}}, want: `{"a@x.com":[5]}`},
		{name: "sorted keys", idx: Index{"z@x.com": {1}, "a@x.com": {2, 1}}, want: `{"a@x.com":[2,1],"z@x.com":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalIndex(tt.idx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIndexRoundTrip(t *testing.T) {
	idx := Index{
		"a@x.com": {5, 1, 9},
		"b@x.com": {2},
		"c@x.com": {100, 3},
	}

	data, err := MarshalIndex(idx)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalIndex(data)
	if err != nil {
		t.Fatal(err)
	}
	if !idx.Equivalent(back) {
		t.Errorf("round trip changed index: %v -> %v", idx, back)
	}
}

func TestIndexEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b Index
		want bool
	}{
		{name: "both empty", a: Index{}, b: Index{}, want: true},
		{name: "order ignored", a: Index{"u": {1, 2}}, b: Index{"u": {2, 1}}, want: true},
		{name: "different users", a: Index{"u": {1}}, b: Index{"v": {1}}, want: false},
		{name: "different ids", a: Index{"u": {1, 2}}, b: Index{"u": {1, 3}}, want: false},
		{name: "different sizes", a: Index{"u": {1}}, b: Index{"u": {1}, "v": {2}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equivalent(tt.b); got != tt.want {
				t.Errorf("Equivalent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndexClone(t *testing.T) {
	idx := Index{"u": {1, 2}}
	c := idx.Clone()
	c["u"][0] = 99
	c["v"] = []int{3}

	if idx["u"][0] != 1 {
		t.Error("clone shares list storage with original")
	}
	if _, ok := idx["v"]; ok {
		t.Error("clone shares map with original")
	}
}
