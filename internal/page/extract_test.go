package page

import (
	"testing"
	"time"
)

func TestStatValue(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12,345", 12345},
		{"1.234", 1234},
		{" 7 ", 7},
		{"", 0},
		{"-", 0},
		{"1.234.567", 1234567},
		{"12.3k", 0},
		{"abc", 0},
		{"-5", 0},
		{"0", 0},
	}
	for _, tt := range tests {
		if got := StatValue(tt.in); got != tt.want {
			t.Errorf("StatValue(%q): want %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestPlayerIDFromHref(t *testing.T) {
	tests := []struct {
		href, want string
	}{
		{"/profile/987-Foo", "987"},
		{"/profile/987-foo%20bar/matches", "987"},
		{"/match/123", ""},
		{"", ""},
		{"/profile/abc-Foo", ""},
	}
	for _, tt := range tests {
		if got := PlayerIDFromHref(tt.href); got != tt.want {
			t.Errorf("PlayerIDFromHref(%q): want %q, got %q", tt.href, tt.want, got)
		}
	}
}

func TestProfileFromURL(t *testing.T) {
	name, id, ok := ProfileFromURL("https://paladins.guru/profile/123456-PlayerName/matches")
	if !ok || name != "PlayerName" || id != "123456" {
		t.Errorf("want (PlayerName, 123456, true), got (%q, %q, %v)", name, id, ok)
	}

	name, _, ok = ProfileFromURL("https://paladins.guru/profile/42-some%20one?page=2")
	if !ok || name != "some one" {
		t.Errorf("escaped name: want %q, got %q (ok=%v)", "some one", name, ok)
	}

	if _, _, ok := ProfileFromURL("https://paladins.guru/match/1"); ok {
		t.Error("match URL should not parse as a profile")
	}
}

func TestMatchIDAndNumber(t *testing.T) {
	if got := MatchIDFromURL("https://paladins.guru/match/1234567"); got != "1234567" {
		t.Errorf("MatchIDFromURL: want 1234567, got %q", got)
	}
	if got := MatchNumber("https://paladins.guru/match/1234567"); got != 1234567 {
		t.Errorf("MatchNumber: want 1234567, got %d", got)
	}
	if got := MatchNumber("https://paladins.guru/match/abc"); got != 0 {
		t.Errorf("MatchNumber non-numeric: want 0, got %d", got)
	}
}

func TestIsMatchHref(t *testing.T) {
	tests := map[string]bool{
		"/match/123":         true,
		"/match/123/details": false,
		"/profile/1-x":       false,
		"https://x/match/1":  false,
	}
	for href, want := range tests {
		if got := IsMatchHref(href); got != want {
			t.Errorf("IsMatchHref(%q): want %v, got %v", href, want, got)
		}
	}
}

func TestProfileMatchesURL(t *testing.T) {
	got := ProfileMatchesURL("https://paladins.guru", "123", "Big Name", 1)
	if want := "https://paladins.guru/profile/123-big%20name/matches"; got != want {
		t.Errorf("page 1: want %q, got %q", want, got)
	}
	got = ProfileMatchesURL("https://paladins.guru/", "123", "x", 3)
	if want := "https://paladins.guru/profile/123-x/matches?page=3"; got != want {
		t.Errorf("page 3: want %q, got %q", want, got)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5 minutes ago", 5 * time.Minute},
		{"an hour ago", time.Hour},
		{"2 days ago", 48 * time.Hour},
		{"3 weeks ago", 21 * 24 * time.Hour},
		{"a month ago", 30 * 24 * time.Hour},
		{"2 years ago", 730 * 24 * time.Hour},
		{"30 seconds ago", 30 * time.Second},
	}
	for _, tt := range tests {
		got := RelativeTime(tt.in, now)
		if got == nil {
			t.Errorf("RelativeTime(%q): want a time, got nil", tt.in)
			continue
		}
		if d := now.Sub(*got); d != tt.want {
			t.Errorf("RelativeTime(%q): want now-%v, got now-%v", tt.in, tt.want, d)
		}
	}

	for _, in := range []string{"", "just now", "yesterday", "5 fortnights ago"} {
		if got := RelativeTime(in, now); got != nil {
			t.Errorf("RelativeTime(%q): want nil, got %v", in, got)
		}
	}
}

func TestISOTime(t *testing.T) {
	got := ISOTime("2024-03-01T12:00:00Z")
	if got == nil || !got.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("ISOTime: unexpected %v", got)
	}
	if ISOTime("garbage") != nil {
		t.Error("ISOTime(garbage): want nil")
	}
}
