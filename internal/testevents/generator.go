package testevents

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sportsevents/internal/domain/model"
)

var (
	teams     = []string{"Arsenal", "Benfica", "Celtic", "Dortmund", "Everton", "Feyenoord", "Galatasaray", "Hajduk"}
	goalTypes = []string{"header", "penalty", "free_kick", "open_play", "own_goal"}
	positions = []string{"GK", "DF", "MF", "FW"}
	surnames  = []string{"Silva", "Kane", "Muller", "Rossi", "Dubois", "Novak", "Jensen", "Santos"}
	cardKinds = []string{"yellow", "red"}
)

// Generator builds plausible match events. It is not safe for concurrent use.
type Generator struct {
	rng   *rand.Rand
	start time.Time
}

// NewGenerator returns a generator whose output depends only on seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		start: time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
	}
}

// Generate returns perMatch events for each of matches matches. Events of a
// match have strictly increasing timestamps, one kick-off day per match.
func (g *Generator) Generate(matches, perMatch int) []model.Event {
	events := make([]model.Event, 0, matches*perMatch)
	for m := 0; m < matches; m++ {
		matchID := "MATCH-" + uuid.NewString()[:8]
		home, away := g.pair()
		kickoff := g.start.AddDate(0, 0, m)

		minute := 0
		for i := 0; i < perMatch; i++ {
			minute += 1 + g.rng.IntN(6)
			team, opponent := home, away
			if g.rng.IntN(2) == 1 {
				team, opponent = away, home
			}
			e := model.Event{
				MatchID:   matchID,
				Timestamp: model.FormatTimestamp(kickoff.Add(time.Duration(minute)*time.Minute + time.Duration(i)*time.Second)),
				Team:      team,
				Opponent:  opponent,
			}
			if g.rng.IntN(3) == 0 {
				e.EventType = "card"
				e.Details = model.Details{
					"card":   cardKinds[g.rng.IntN(len(cardKinds))],
					"minute": float64(minute),
					"player": g.player(),
				}
			} else {
				e.EventType = model.EventTypeGoal
				e.Details = model.Details{
					"goal_type": goalTypes[g.rng.IntN(len(goalTypes))],
					"minute":    float64(minute),
					"player":    g.player(),
				}
			}
			events = append(events, e)
		}
	}
	return events
}

func (g *Generator) pair() (string, string) {
	i := g.rng.IntN(len(teams))
	j := (i + 1 + g.rng.IntN(len(teams)-1)) % len(teams)
	return teams[i], teams[j]
}

func (g *Generator) player() map[string]any {
	return map[string]any{
		"name":     fmt.Sprintf("%c. %s", 'A'+rune(g.rng.IntN(26)), surnames[g.rng.IntN(len(surnames))]),
		"number":   float64(1 + g.rng.IntN(99)),
		"position": positions[g.rng.IntN(len(positions))],
	}
}
