package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSession_Valid(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{"nil session", nil, false},
		{"empty token", &Session{ExpiresAt: now.Add(time.Hour)}, false},
		{"not expired", &Session{CredentialToken: "a=b", ExpiresAt: now.Add(time.Hour)}, true},
		{"expires exactly now", &Session{CredentialToken: "a=b", ExpiresAt: now}, true},
		{"expired", &Session{CredentialToken: "a=b", ExpiresAt: now.Add(-time.Second)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationVerdict_String(t *testing.T) {
	tests := []struct {
		verdict ValidationVerdict
		want    string
	}{
		{VerdictInvalid, "invalid"},
		{VerdictLikelyArchive, "likely-archive"},
		{VerdictLikelyInterstitial, "likely-interstitial"},
		{ValidationVerdict(42), "invalid"},
	}
	for _, tt := range tests {
		if got := tt.verdict.String(); got != tt.want {
			t.Errorf("ValidationVerdict(%d).String() = %q, want %q", tt.verdict, got, tt.want)
		}
	}
}

func TestDefaultCountdownPolicy(t *testing.T) {
	p := DefaultCountdownPolicy()
	want := []time.Duration{0, 8 * time.Second, 13 * time.Second, 18 * time.Second}
	if len(p.Delays) != len(want) {
		t.Fatalf("Expected %d delays, got %d", len(want), len(p.Delays))
	}
	for i := range want {
		if p.Delays[i] != want[i] {
			t.Errorf("Delays[%d] = %v, want %v", i, p.Delays[i], want[i])
		}
	}
	if p.SecondaryDelay != 12*time.Second {
		t.Errorf("SecondaryDelay = %v, want 12s", p.SecondaryDelay)
	}
}

func TestSubtitlesResponse_JSON(t *testing.T) {
	empty, err := json.Marshal(EmptySubtitles())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(empty) != `{"subtitles":[]}` {
		t.Errorf("Expected empty array encoding, got %s", empty)
	}

	resp := NewSubtitlesResponse(&SubtitleArtifact{ID: "direct_1", URL: "http://host/subtitles/a.srt", Lang: "cze", Filename: "a.srt"})
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"subtitles":[{"id":"direct_1","url":"http://host/subtitles/a.srt","lang":"cze"}]}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	if got := NewSubtitlesResponse(nil); len(got.Subtitles) != 0 || got.Subtitles == nil {
		t.Errorf("Expected non-nil empty slice for nil artifact, got %#v", got.Subtitles)
	}
}
