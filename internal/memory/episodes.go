// Package memory ties the tiers together: the consolidation pipeline
// that moves turns from the short-term buffer into the archive and fact
// stores, and the context assembler that reads all tiers back out.
package memory

import (
	"time"

	"github.com/lamina-ai/recall-go/internal/models"
)

// DefaultEpisodeGap separates episodes when consecutive turns are
// further apart than this.
const DefaultEpisodeGap = 30 * time.Minute

// PartitionEpisodes splits a turn sequence into episodes on the
// timestamp-gap rule: a new episode starts whenever the gap between
// consecutive turns exceeds the threshold. Order within episodes is
// preserved; the partition is deterministic for a given input.
func PartitionEpisodes(turns []models.Turn, gap time.Duration) []models.Episode {
	if len(turns) == 0 {
		return nil
	}
	if gap <= 0 {
		gap = DefaultEpisodeGap
	}

	episodes := []models.Episode{{Turns: []models.Turn{turns[0]}}}
	for _, turn := range turns[1:] {
		current := &episodes[len(episodes)-1]
		last := current.Turns[len(current.Turns)-1]

		if turn.Timestamp.Sub(last.Timestamp) > gap {
			episodes = append(episodes, models.Episode{Turns: []models.Turn{turn}})
			continue
		}
		current.Turns = append(current.Turns, turn)
	}
	return episodes
}

// exchangePairs returns the adjacent participant→agent pairs in an
// episode. Turns that don't form a clean pair (two participant turns in
// a row, an agent turn with no preceding participant turn) are skipped.
func exchangePairs(episode models.Episode) [][2]models.Turn {
	var pairs [][2]models.Turn
	for i := 0; i+1 < len(episode.Turns); i++ {
		first, second := episode.Turns[i], episode.Turns[i+1]
		if !first.FromAgent && second.FromAgent {
			pairs = append(pairs, [2]models.Turn{first, second})
			i++ // consume the agent turn
		}
	}
	return pairs
}
