package source

import (
	"reflect"
	"testing"

	"github.com/kbukum/tabkit/record"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		header bool
		want   []record.Record
	}{
		{
			name:   "header rows",
			text:   "name,age,isStudent\nAlice,30,true\nBob,25,false",
			header: true,
			want: []record.Record{
				{"name": "Alice", "age": "30", "isStudent": "true"},
				{"name": "Bob", "age": "25", "isStudent": "false"},
			},
		},
		{
			name:   "positional keys",
			text:   "Alice,30\nBob,25",
			header: false,
			want: []record.Record{
				{"0": "Alice", "1": "30"},
				{"0": "Bob", "1": "25"},
			},
		},
		{
			name:   "ragged rows",
			text:   "a,b\n1\n1,2,3",
			header: true,
			want: []record.Record{
				{"a": "1"},
				{"a": "1", "b": "2", "2": "3"},
			},
		},
		{
			name:   "blank and duplicate headers",
			text:   "a,,a\n1,2,3",
			header: true,
			want:   []record.Record{{"a": "3", "1": "2"}},
		},
		{
			name:   "quoted fields and blank lines",
			text:   "tags,note\n\"x, y\",\"say \"\"hi\"\"\"\n\n  z  ,",
			header: true,
			want: []record.Record{
				{"tags": "x, y", "note": `say "hi"`},
				{"tags": "  z  ", "note": ""},
			},
		},
		{
			name:   "lazy quotes",
			text:   "a\nab\"c",
			header: true,
			want:   []record.Record{{"a": `ab"c`}},
		},
		{name: "empty", text: "", header: true, want: []record.Record{}},
		{name: "header only", text: "a,b\n", header: true, want: []record.Record{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(tt.text, tt.header)
			if err != nil {
				t.Fatalf("ParseCSV() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCSV() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCSV_Delimiter(t *testing.T) {
	got, err := ParseCSV("a;b\n1;2", true, WithComma(';'))
	if err != nil {
		t.Fatal(err)
	}
	want := []record.Record{{"a": "1", "b": "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCSV() = %v, want %v", got, want)
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []record.Record
		wantErr bool
	}{
		{
			name: "array",
			text: `[{"name":"Alice","age":30},{"name":"Bob","tags":["a","b"]}]`,
			want: []record.Record{
				{"name": "Alice", "age": float64(30)},
				{"name": "Bob", "tags": []any{"a", "b"}},
			},
		},
		{name: "single object", text: `{"id":1}`, want: []record.Record{{"id": float64(1)}}},
		{name: "null", text: `null`, want: []record.Record{}},
		{name: "scalar element", text: `[1,2]`, wantErr: true},
		{name: "scalar", text: `"x"`, wantErr: true},
		{name: "malformed", text: `[{"a":}]`, wantErr: true},
		{name: "empty", text: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	text := `
- name: Alice
  age: 30
  score: 9.5
  active: true
- name: Bob
  tags: [a, b]
`
	got, err := ParseYAML(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0]["age"] != int64(30) {
		t.Errorf("age = %#v, want int64(30)", got[0]["age"])
	}
	if got[0]["score"] != 9.5 || got[0]["active"] != true {
		t.Errorf("record = %v", got[0])
	}
	if !reflect.DeepEqual(got[1]["tags"], []any{"a", "b"}) {
		t.Errorf("tags = %#v", got[1]["tags"])
	}

	if _, err := ParseYAML("- 1\n- 2\n"); err == nil {
		t.Error("expected error for a sequence of scalars")
	}
	if got, err := ParseYAML("  \n"); err != nil || len(got) != 0 {
		t.Errorf("blank YAML = %v, %v", got, err)
	}
}

func TestNormalize(t *testing.T) {
	type person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	tests := []struct {
		name    string
		data    any
		want    []record.Record
		wantErr bool
	}{
		{"records", []record.Record{{"a": "1"}}, []record.Record{{"a": "1"}}, false},
		{"maps", []map[string]any{{"a": 1}}, []record.Record{{"a": 1}}, false},
		{"any slice", []any{map[string]any{"a": true}}, []record.Record{{"a": true}}, false},
		{"single object", map[string]any{"a": "x"}, []record.Record{{"a": "x"}}, false},
		{"structs", []person{{"Alice", 30}}, []record.Record{{"name": "Alice", "age": float64(30)}}, false},
		{"scalar", 42, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_CopiesInput(t *testing.T) {
	in := []record.Record{{"a": "1"}}
	out, _ := Normalize(in)
	out[0]["a"] = "changed"
	if in[0]["a"] != "1" {
		t.Error("Normalize must not alias caller records")
	}
}
