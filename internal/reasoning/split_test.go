package reasoning

import "testing"

func TestSplit(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		wantTitle string
		wantBody  string
	}{
		{name: "title and body", in: "**Thinking**\nHello", wantTitle: "Thinking", wantBody: "Hello"},
		{name: "no bold", in: "no bold here"},
		{name: "title only", in: "**Empty**", wantTitle: "Empty"},
		{name: "trailing whitespace after title", in: "  **Empty**  \n ", wantTitle: "Empty"},
		{name: "unterminated", in: "**Open title\nbody"},
		{name: "blank title keeps body", in: "****\nbody text", wantBody: "body text"},
		{name: "blank span skipped for title", in: "** ** then **Real** rest", wantTitle: "Real", wantBody: "then **Real** rest"},
		{name: "first match wins", in: "**A **B** C**", wantTitle: "A", wantBody: "B** C**"},
		{name: "leading text", in: "intro **Plan** do it", wantTitle: "Plan", wantBody: "do it"},
		{name: "title trimmed", in: "**  Spaced  **\n\n  body", wantTitle: "Spaced", wantBody: "body"},
		{name: "unicode space before body", in: "**T**\u00a0\u2003body", wantTitle: "T", wantBody: "body"},
		{name: "multibyte", in: "**思考中**\n内容", wantTitle: "思考中", wantBody: "内容"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, body := Split(tc.in)
			if title != tc.wantTitle {
				t.Fatalf("title = %q, want %q", title, tc.wantTitle)
			}
			if body != tc.wantBody {
				t.Fatalf("body = %q, want %q", body, tc.wantBody)
			}
		})
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	in := "**Plan**\nstep one\nstep two"
	t1, b1 := Split(in)
	t2, b2 := Split(in)
	if t1 != t2 || b1 != b2 {
		t.Fatalf("split not deterministic: (%q,%q) vs (%q,%q)", t1, b1, t2, b2)
	}
}
