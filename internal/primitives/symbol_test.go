package primitives

import (
	"errors"
	"strings"
	"testing"
)

func TestNewSymbolValidate(t *testing.T) {
	tests := []struct {
		name        string
		glyph       rune
		opts        []SymbolOption
		wantErr     bool
		errContains string
	}{
		{name: "bare glyph", glyph: 'F'},
		{name: "named with params", glyph: 'p', opts: []SymbolOption{WithName("person"), WithParams(Param{"age", IntArg})}},
		{name: "name equal to glyph", glyph: 'x', opts: []SymbolOption{WithName("x")}},
		{name: "reserved paren", glyph: '(', wantErr: true, errContains: "reserved"},
		{name: "reserved comma", glyph: ',', wantErr: true, errContains: "reserved"},
		{name: "whitespace", glyph: ' ', wantErr: true, errContains: "reserved"},
		{name: "empty name", glyph: 'a', opts: []SymbolOption{WithName("")}, wantErr: true, errContains: "empty name"},
		{name: "one-char name", glyph: 'a', opts: []SymbolOption{WithName("b")}, wantErr: true, errContains: "longer than one"},
		{name: "duplicate param", glyph: 'a', opts: []SymbolOption{WithParams(Param{"x", IntArg}, Param{"x", FloatArg})}, wantErr: true, errContains: "duplicate parameter"},
		{name: "bad param name", glyph: 'a', opts: []SymbolOption{WithParams(Param{"1x", IntArg})}, wantErr: true, errContains: "invalid parameter name"},
		{name: "bad param type", glyph: 'a', opts: []SymbolOption{WithParams(Param{"x", ArgType(9)})}, wantErr: true, errContains: "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSymbol(tt.glyph, tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSymbol() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("error %v is not ErrValidation", err)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err, tt.errContains)
				}
			}
		})
	}
}

func TestSymbolAccessors(t *testing.T) {
	s, err := NewSymbol('a', WithName("symbol1"), WithParams(Param{"budget", IntArg}, Param{"distance", FloatArg}))
	if err != nil {
		t.Fatal(err)
	}
	if s.Glyph() != 'a' || s.Name() != "symbol1" || s.Arity() != 2 {
		t.Errorf("accessors = %q %q %d", s.Glyph(), s.Name(), s.Arity())
	}
	params := s.Params()
	params[0].Name = "mutated"
	if p, _ := s.Param("budget"); p.Type != IntArg {
		t.Error("Params() exposed internal slice")
	}
	other, _ := NewSymbol('a', WithName("different"))
	if !s.Equal(other) {
		t.Error("symbols with the same glyph must be equal")
	}
	if want := `symbol[name="symbol1", glyph="a", params=(budget:int, distance:float)]`; s.String() != want {
		t.Errorf("String() = %s", s)
	}
}

func TestSymbolPattern(t *testing.T) {
	s, _ := NewSymbol('a', WithParams(Param{"budget", IntArg}, Param{"distance", FloatArg}))
	re := s.Pattern()
	m := re.FindStringSubmatch("a( 10, 2.5)rest")
	if m == nil {
		t.Fatalf("pattern %s did not match", re)
	}
	if m[re.SubexpIndex("budget")] != "10" || m[re.SubexpIndex("distance")] != "2.5" {
		t.Errorf("groups = %v", m)
	}
	if re.MatchString("b(1,2)") {
		t.Error("pattern matched another glyph")
	}

	bare, _ := NewSymbol('+')
	if !bare.Pattern().MatchString("+F") {
		t.Errorf("pattern %s did not match", bare.Pattern())
	}
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		in      string
		want    Param
		wantErr bool
	}{
		{in: "age:int", want: Param{"age", IntArg}},
		{in: "height: float", want: Param{"height", FloatArg}},
		{in: "status:str", want: Param{"status", TextArg}},
		{in: "len", want: Param{"len", FloatArg}},
		{in: "x:complex", wantErr: true},
		{in: ":int", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseParam(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParam() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseParam() = %v, want %v", got, tt.want)
			}
		})
	}
}
