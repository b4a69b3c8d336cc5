package codec

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/jsonbind/errors"
)

type settings struct {
	Name    string
	Port    int
	Tags    []string
	Enabled bool   `json:"enabled"`
	Secret  string `json:"-"`
	Ratio   float64
	hidden  int
}

func TestStructEncode(t *testing.T) {
	c := New()
	tests := []struct {
		value settings
		name  string
		want  string
	}{
		{settings{}, "default", "{}"},
		{settings{Port: 80, Name: "x"}, "sorted", `{"Name":"x","Port":80}`},
		{settings{Name: "x", Port: 80}, "same order", `{"Name":"x","Port":80}`},
		{settings{Enabled: true}, "tag name", `{"enabled":true}`},
		{settings{Secret: "s", hidden: 3}, "skipped", "{}"},
		{settings{Ratio: 2.0}, "canonical float", `{"Ratio":2}`},
		{settings{Tags: []string{}}, "empty differs from nil", `{"Tags":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Encode(tt.value)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode(%+v) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestStructWriteDefaults(t *testing.T) {
	e := New().Enc().WithWriteDefaults()
	if err := e.Put(settings{}); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	want := `{"Name":"","Port":0,"Ratio":0,"Tags":null,"enabled":false}`
	if got := e.String(); got != want {
		t.Errorf("Put with write-defaults = %s, want %s", got, want)
	}
}

func TestStructDecode(t *testing.T) {
	c := New()
	got, err := Decode[settings](c, `{"enabled":true,"Name":"svc","Tags":["a","b"],"Port":8080,"Ratio":0.5}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := settings{Name: "svc", Port: 8080, Tags: []string{"a", "b"}, Enabled: true, Ratio: 0.5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %+v, want %+v", got, want)
	}

	text, err := c.Encode(got)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	again, err := Decode[settings](c, text)
	if err != nil {
		t.Fatalf("Decode(%s) error: %v", text, err)
	}
	if !reflect.DeepEqual(again, want) {
		t.Errorf("round trip = %+v, want %+v", again, want)
	}

	if _, err := Decode[settings](c, `{"Secret":"s"}`); err != nil {
		t.Errorf("Decode with a skipped member error: %v", err)
	}
}

type server struct {
	Host string
	Port int
}

func (s *server) Default() {
	s.Host = "localhost"
	s.Port = 8080
}

func TestStructDefaults(t *testing.T) {
	c := New()

	text, err := c.Encode(server{Host: "localhost", Port: 8080})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if text != "{}" {
		t.Errorf("Encode(default server) = %s, want {}", text)
	}

	text, err = c.Encode(server{Host: "localhost", Port: 9})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if text != `{"Port":9}` {
		t.Errorf("Encode(server) = %s, want {\"Port\":9}", text)
	}

	got, err := Decode[server](c, `{"Port":9}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got != (server{Host: "localhost", Port: 9}) {
		t.Errorf("Decode = %+v, want defaults kept for absent members", got)
	}

	zero, err := Decode[server](c, `{}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if zero != (server{Host: "localhost", Port: 8080}) {
		t.Errorf("Decode({}) = %+v, want the default template", zero)
	}

	text, err = c.Encode(server{})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if text != `{"Host":"","Port":0}` {
		t.Errorf("Encode(zero server) = %s", text)
	}
}

type account struct {
	Name string
}

type quota struct {
	Limits map[string]int
	Owner  *account
}

func (q *quota) Default() {
	q.Limits = map[string]int{"cpu": 1}
	q.Owner = &account{Name: "root"}
}

func TestStructDefaultsNotShared(t *testing.T) {
	c := New()

	first, err := Decode[quota](c, `{}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	first.Limits["mem"] = 2
	first.Owner.Name = "mallory"

	second, err := Decode[quota](c, `{}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !reflect.DeepEqual(second.Limits, map[string]int{"cpu": 1}) || second.Owner.Name != "root" {
		t.Errorf("Decode({}) after mutating an earlier result = %v %+v, want the defaults", second.Limits, *second.Owner)
	}

	text, err := c.Encode(quota{Limits: map[string]int{"cpu": 1}, Owner: &account{Name: "root"}})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if text != "{}" {
		t.Errorf("Encode(default quota) = %s, want {}", text)
	}
}

type Audit struct {
	By string
}

type zone struct {
	Region string
}

type hosted struct {
	*Audit
	*zone
	Name string
}

func TestStructEmbeddedPointer(t *testing.T) {
	c := New()

	tests := []struct {
		value hosted
		name  string
		want  string
	}{
		{hosted{Name: "a"}, "nil embedded pointers", `{"Name":"a"}`},
		{hosted{Audit: &Audit{By: "ops"}, zone: &zone{Region: "eu"}, Name: "a"}, "promoted", `{"By":"ops","Name":"a","Region":"eu"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Encode(tt.value)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode = %s, want %s", got, tt.want)
			}
		})
	}

	got, err := Decode[hosted](c, `{"By":"ops","Name":"a"}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.Audit == nil || got.By != "ops" || got.Name != "a" || got.zone != nil {
		t.Errorf("Decode = %+v, want Audit allocated", got)
	}

	_, err = Decode[hosted](c, `{"Region":"eu"}`)
	if !errors.IsKind(err, errors.KindFieldImmutable) {
		t.Errorf("Decode through nil unexported embedded pointer error = %v, want field_immutable", err)
	}
}

type base struct {
	ID   int
	Kind string `json:"kind"`
}

type Meta struct {
	Owner string
}

type derived struct {
	base
	Meta `json:"meta"`
	Name string
}

func TestStructEmbedded(t *testing.T) {
	c := New()
	in := derived{base: base{ID: 1, Kind: "k"}, Meta: Meta{Owner: "o"}, Name: "n"}

	text, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := `{"ID":1,"Name":"n","kind":"k","meta":{"Owner":"o"}}`
	if text != want {
		t.Errorf("Encode(derived) = %s, want %s", text, want)
	}

	got, err := Decode[derived](c, text)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got != in {
		t.Errorf("Decode = %+v, want %+v", got, in)
	}
}

func TestStrictMode(t *testing.T) {
	c := New()

	_, err := c.Dec().From(`{"unknown":1}`).Strict().Get(reflect.TypeFor[settings]())
	if !errors.IsKind(err, errors.KindUnknownField) {
		t.Fatalf("strict decode error = %v, want unknown_field", err)
	}

	d := c.Dec().From(`{"Name":"a","unknown":1,"other":{"x":[true]}}`)
	v, err := d.Get(reflect.TypeFor[settings]())
	if err != nil {
		t.Fatalf("lenient decode error: %v", err)
	}
	if v.(settings).Name != "a" {
		t.Errorf("lenient decode = %+v", v)
	}
	extra := d.Extra()
	if got := extra["codec.settings.unknown"]; got != int32(1) {
		t.Errorf("Extra()[codec.settings.unknown] = %#v, want 1", got)
	}
	want := orderedOf("x", []any{true})
	if got := extra["codec.settings.other"]; !reflect.DeepEqual(got, want) {
		t.Errorf("Extra()[codec.settings.other] = %#v, want %#v", got, want)
	}
}

type envelope struct {
	Kind  string
	Extra map[string]any `json:"__extra"`
}

func TestCatchAll(t *testing.T) {
	c := New()

	got, err := c.Dec().From(`{"Kind":"a","x":1,"y":"z"}`).Strict().Get(reflect.TypeFor[envelope]())
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	env := got.(envelope)
	if env.Kind != "a" {
		t.Errorf("Kind = %q, want a", env.Kind)
	}
	if want := map[string]any{"x": int32(1), "y": "z"}; !reflect.DeepEqual(env.Extra, want) {
		t.Errorf("Extra = %#v, want %#v", env.Extra, want)
	}

	text, err := c.Encode(env)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if text != `{"Kind":"a"}` {
		t.Errorf("Encode(envelope) = %s, want the catch-all left out", text)
	}

	other, err := Decode[envelope](c, `{"q":2}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(other.Extra) != 1 || len(env.Extra) != 2 {
		t.Errorf("catch-all maps shared between values: %v and %v", other.Extra, env.Extra)
	}
}

func TestMalformedInput(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		text string
	}{
		{"missing value", `{"Name":}`},
		{"missing value short", `{"a":}`},
		{"control character", "{\"Name\":\"a\x01b\"}"},
		{"raw newline in string", "{\"Name\":\"a\nb\"}"},
		{"trailing comma object", `{"Name":"x",}`},
		{"missing colon", `{"Name" "x"}`},
		{"unterminated object", `{"Name":"x"`},
		{"unterminated string", `{"Name":"x`},
		{"bad escape", `{"Name":"\x"}`},
		{"short unicode escape", `{"Name":"\u12"}`},
		{"bad literal", `{"Enabled":tru}`},
		{"leading zero", `{"Port":01}`},
		{"bare minus", `{"Port":-}`},
		{"dot without digits", `{"Port":1.}`},
		{"exponent without digits", `{"Port":1e}`},
		{"trailing garbage", `{} x`},
		{"empty input", ``},
		{"unquoted name", `{Name:"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[settings](c, tt.text)
			if !errors.IsKind(err, errors.KindMalformedInput) {
				t.Errorf("Decode(%q) error = %v, want malformed_input", tt.text, err)
			}
		})
	}

	if _, err := Decode[[]int](c, "[1,2,]"); !errors.IsKind(err, errors.KindMalformedInput) {
		t.Errorf("Decode([1,2,]) error = %v, want malformed_input", err)
	}
}

func TestTypeMismatch(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		text string
		path string
	}{
		{"string into int", `{"Port":"abc"}`, "Port"},
		{"object into int", `{"Port":{}}`, "Port"},
		{"number into slice", `{"Tags":1}`, "Tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[settings](c, tt.text)
			if !errors.IsKind(err, errors.KindTypeMismatch) {
				t.Fatalf("Decode(%s) error = %v, want type_mismatch", tt.text, err)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if got := errors.FormatPath(e.Path); got != tt.path {
				t.Errorf("error path = %q, want %q", got, tt.path)
			}
		})
	}
}

type inner struct {
	Values []int8
}

type outer struct {
	Items map[string]inner
}

func TestErrorBreadcrumbs(t *testing.T) {
	_, err := Decode[outer](New(), `{"Items":{"k":{"Values":[1,2,300]}}}`)
	if !errors.IsKind(err, errors.KindNumericOverflow) {
		t.Fatalf("error = %v, want numeric_overflow", err)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error %T is not *errors.Error", err)
	}
	if got := errors.FormatPath(e.Path); got != "Items.k.Values[2]" {
		t.Errorf("error path = %q, want Items.k.Values[2]", got)
	}
	if !strings.Contains(err.Error(), "Items.k.Values[2]") {
		t.Errorf("error message %q does not mention the path", err)
	}
}

type node struct {
	Name string
	Next *node
}

type pair struct {
	A, B *node
}

type tree struct {
	Label    string
	Children []tree
}

func TestCycleDetection(t *testing.T) {
	c := New()

	loop := &node{Name: "a"}
	loop.Next = loop
	if _, err := c.Encode(loop); !errors.IsKind(err, errors.KindCyclicReference) {
		t.Errorf("Encode(self-referencing pointer) error = %v, want cyclic_reference", err)
	}

	s := []any{nil}
	s[0] = s
	if _, err := c.Encode(s); !errors.IsKind(err, errors.KindCyclicReference) {
		t.Errorf("Encode(self-containing slice) error = %v, want cyclic_reference", err)
	}

	m := map[string]any{}
	m["self"] = m
	if _, err := c.Encode(m); !errors.IsKind(err, errors.KindCyclicReference) {
		t.Errorf("Encode(self-containing map) error = %v, want cyclic_reference", err)
	}

	shared := &node{Name: "s"}
	text, err := c.Encode(pair{A: shared, B: shared})
	if err != nil {
		t.Fatalf("Encode(shared pointer) error: %v", err)
	}
	if text != `{"A":{"Name":"s"},"B":{"Name":"s"}}` {
		t.Errorf("Encode(shared pointer) = %s", text)
	}
}

func TestRecursiveTypes(t *testing.T) {
	c := New()
	in := tree{Label: "root", Children: []tree{{Label: "a"}, {Label: "b", Children: []tree{{Label: "c"}}}}}

	text, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := `{"Children":[{"Label":"a"},{"Children":[{"Label":"c"}],"Label":"b"}],"Label":"root"}`
	if text != want {
		t.Errorf("Encode(tree) = %s, want %s", text, want)
	}

	got, err := Decode[tree](c, text)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Decode = %+v, want %+v", got, in)
	}

	list, err := Decode[*node](c, `{"Name":"a","Next":{"Name":"b","Next":null}}`)
	if err != nil {
		t.Fatalf("Decode[*node] error: %v", err)
	}
	if list.Name != "a" || list.Next == nil || list.Next.Name != "b" || list.Next.Next != nil {
		t.Errorf("Decode[*node] = %+v", list)
	}
}
