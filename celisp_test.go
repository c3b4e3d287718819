package celisp

import "testing"

func TestSpanExtend(t *testing.T) {
	a := Span{Position{1, 3, 2}, Position{1, 5, 4}}
	b := Span{Position{1, 1, 0}, Position{1, 4, 3}}
	c := a.Extend(b)
	if c.From() != b.From() || c.To() != a.To() {
		t.Errorf("expected extended span (1:1…1:5), is %s", c)
	}
	if c.Len() != 4 {
		t.Errorf("expected span length 4, is %d", c.Len())
	}
	if !(Span{}).IsNull() {
		t.Errorf("expected zero span to be null")
	}
	if (Span{}).Extend(a) != a {
		t.Errorf("expected null span to extend to the other span")
	}
}

func TestSpanString(t *testing.T) {
	s := Span{Position{2, 1, 10}, Position{2, 7, 16}}
	if s.String() != "(2:1…2:7)" {
		t.Errorf("unexpected span rendering %q", s.String())
	}
}
