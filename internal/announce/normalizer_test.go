package announce

import "testing"

func TestFeedItem(t *testing.T) {
	z := New()

	tests := []struct {
		name    string
		speaker string
		body    string
		want    string
	}{
		{"plain", "alice", "hello", "alice说：hello"},
		{"long name truncated to ten runes", "VeryLongUserName123", "hello", "VeryLongUs说：hello"},
		{"cjk name", "一二三四五六七八九十十一", "好", "一二三四五六七八九十说：好"},
		{"missing name", "", "hi", "未知用户说：hi"},
		{"missing body", "bob", "", "bob说：无内容"},
		{"missing both", "", "", "未知用户说：无内容"},
		{"placeholder in body stays literal", "eve", "{name}", "eve说：{name}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := z.FeedItem(tt.speaker, tt.body); got != tt.want {
				t.Fatalf("FeedItem(%q, %q) = %q, want %q", tt.speaker, tt.body, got, tt.want)
			}
		})
	}
}

func TestFeedItemBodyNeverTruncated(t *testing.T) {
	z := New(WithMaxNameLength(3))
	body := "this body is much longer than three runes and must survive intact"
	want := "abc说：" + body
	if got := z.FeedItem("abcdef", body); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFeedItemOptions(t *testing.T) {
	z := New(
		WithTemplate("{name} says: {body}"),
		WithFallbacks("someone", "nothing"),
		WithMaxNameLength(0),
	)
	if got := z.FeedItem("", ""); got != "someone says: nothing" {
		t.Fatalf("got %q", got)
	}
	if got := z.FeedItem("VeryLongUserName123", "x"); got != "VeryLongUserName123 says: x" {
		t.Fatalf("truncation should be disabled, got %q", got)
	}
}

func TestBanner(t *testing.T) {
	z := New()
	if got := z.Banner("  欢迎 进入直播间 \n"); got != "欢迎 进入直播间" {
		t.Fatalf("got %q", got)
	}
	if got := z.Banner(" \t "); got != "" {
		t.Fatalf("whitespace-only banner should be empty, got %q", got)
	}
}

func TestTruncateName(t *testing.T) {
	if got := TruncateName("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := TruncateName("abcdefghijk", 10); len([]rune(got)) != 10 {
		t.Fatalf("expected exactly 10 runes, got %q", got)
	}
}
