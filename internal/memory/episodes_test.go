package memory

import (
	"testing"
	"time"

	"github.com/lamina-ai/recall-go/internal/models"
)

func turnAt(name, text string, at time.Time, fromAgent bool) models.Turn {
	return models.Turn{
		ParticipantID:   name,
		ParticipantName: name,
		Text:            text,
		ChannelID:       "ch1",
		Timestamp:       at,
		FromAgent:       fromAgent,
	}
}

func TestPartitionEpisodes(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		turns     []models.Turn
		gap       time.Duration
		wantSizes []int
	}{
		{
			name:      "empty input",
			turns:     nil,
			gap:       30 * time.Minute,
			wantSizes: nil,
		},
		{
			name: "single episode within gap",
			turns: []models.Turn{
				turnAt("alice", "hi", base, false),
				turnAt("agent", "hi alice", base.Add(10*time.Second), true),
				turnAt("alice", "bye", base.Add(30*time.Second), false),
				turnAt("agent", "bye", base.Add(40*time.Second), true),
			},
			gap:       30 * time.Minute,
			wantSizes: []int{4},
		},
		{
			name: "gap splits episodes",
			turns: []models.Turn{
				turnAt("alice", "morning", base, false),
				turnAt("alice", "afternoon", base.Add(40*time.Minute), false),
			},
			gap:       30 * time.Minute,
			wantSizes: []int{1, 1},
		},
		{
			name: "gap exactly at threshold stays together",
			turns: []models.Turn{
				turnAt("alice", "a", base, false),
				turnAt("alice", "b", base.Add(30*time.Minute), false),
			},
			gap:       30 * time.Minute,
			wantSizes: []int{2},
		},
		{
			name: "multiple splits",
			turns: []models.Turn{
				turnAt("alice", "a", base, false),
				turnAt("agent", "b", base.Add(time.Minute), true),
				turnAt("alice", "c", base.Add(2*time.Hour), false),
				turnAt("alice", "d", base.Add(5*time.Hour), false),
			},
			gap:       30 * time.Minute,
			wantSizes: []int{2, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			episodes := PartitionEpisodes(tt.turns, tt.gap)
			if len(episodes) != len(tt.wantSizes) {
				t.Fatalf("episodes = %d, want %d", len(episodes), len(tt.wantSizes))
			}
			for i, want := range tt.wantSizes {
				if len(episodes[i].Turns) != want {
					t.Errorf("episode %d has %d turns, want %d", i, len(episodes[i].Turns), want)
				}
			}
		})
	}
}

func TestPartitionEpisodesIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	turns := []models.Turn{
		turnAt("alice", "a", base, false),
		turnAt("agent", "b", base.Add(time.Minute), true),
		turnAt("alice", "c", base.Add(45*time.Minute), false),
	}

	first := PartitionEpisodes(turns, 30*time.Minute)
	second := PartitionEpisodes(turns, 30*time.Minute)

	if len(first) != len(second) {
		t.Fatalf("partition not stable: %d vs %d episodes", len(first), len(second))
	}
	for i := range first {
		if len(first[i].Turns) != len(second[i].Turns) {
			t.Errorf("episode %d differs between runs", i)
		}
	}
}

func TestExchangePairs(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		turns []models.Turn
		want  int
	}{
		{
			name: "two clean pairs",
			turns: []models.Turn{
				turnAt("alice", "hi", base, false),
				turnAt("agent", "hi alice", base.Add(time.Second), true),
				turnAt("alice", "bye", base.Add(2*time.Second), false),
				turnAt("agent", "bye", base.Add(3*time.Second), true),
			},
			want: 2,
		},
		{
			name: "unanswered participant turns skipped",
			turns: []models.Turn{
				turnAt("alice", "one", base, false),
				turnAt("alice", "two", base.Add(time.Second), false),
				turnAt("agent", "reply to two", base.Add(2*time.Second), true),
			},
			want: 1,
		},
		{
			name: "leading agent turn skipped",
			turns: []models.Turn{
				turnAt("agent", "unprompted", base, true),
				turnAt("alice", "hm", base.Add(time.Second), false),
			},
			want: 0,
		},
		{
			name: "consecutive agent turns pair only once",
			turns: []models.Turn{
				turnAt("alice", "q", base, false),
				turnAt("agent", "a1", base.Add(time.Second), true),
				turnAt("agent", "a2", base.Add(2*time.Second), true),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := exchangePairs(models.Episode{Turns: tt.turns})
			if len(pairs) != tt.want {
				t.Errorf("pairs = %d, want %d", len(pairs), tt.want)
			}
			for _, pair := range pairs {
				if pair[0].FromAgent || !pair[1].FromAgent {
					t.Errorf("malformed pair: %+v", pair)
				}
			}
		})
	}
}

func TestEpisodeTranscript(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	episode := models.Episode{Turns: []models.Turn{
		turnAt("alice", "hi", base, false),
		turnAt("agent", "hello", base.Add(time.Second), true),
	}}

	want := "alice: hi\nagent: hello"
	if got := episode.Transcript(); got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}
