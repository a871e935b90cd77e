package attendance

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/internal/user"
)

const maxConcurrentCreates = 8

// PlayerSource yields the active players a cascade run provisions for.
type PlayerSource interface {
	FindActivePlayers(limit int) ([]user.User, error)
}

// EventSource yields the upcoming events a new player is provisioned for.
type EventSource interface {
	FindUpcoming(from time.Time, limit int) ([]event.Event, error)
}

// RecordSink accepts provisioned records.
type RecordSink interface {
	Upsert(a *Attendance) (bool, error)
}

// Provisioner auto-creates attendance records when an event or a player comes
// into existence. Creates are upserts keyed on (event_id, player_id), so the
// two triggers firing for the same pair concurrently still yield exactly one
// record. Per-record failures are logged and never escalate to the caller:
// partial provisioning is an accepted outcome.
type Provisioner struct {
	records    RecordSink
	users      PlayerSource
	events     EventSource
	fetchLimit int
}

// NewProvisioner creates a provisioner. fetchLimit bounds how many players or
// events one cascade run covers.
func NewProvisioner(records RecordSink, users PlayerSource, events EventSource, fetchLimit int) *Provisioner {
	if fetchLimit <= 0 {
		fetchLimit = 1000
	}
	return &Provisioner{
		records:    records,
		users:      users,
		events:     events,
		fetchLimit: fetchLimit,
	}
}

// ForEvent creates one pending record per active player for a freshly created
// event. Returns how many records were inserted; the error covers only the
// player fetch.
func (p *Provisioner) ForEvent(e *event.Event, actorID uint) (int, error) {
	players, err := p.users.FindActivePlayers(p.fetchLimit)
	if err != nil {
		return 0, err
	}

	if actorID == 0 {
		// No known actor (e.g. a system-side creation): attribute the
		// records to the event itself.
		actorID = e.ID
	}

	var created atomic.Int64
	workers := pool.New().WithMaxGoroutines(maxConcurrentCreates)
	for i := range players {
		player := players[i]
		workers.Go(func() {
			inserted, err := p.records.Upsert(&Attendance{
				EventID:     e.ID,
				PlayerID:    player.ID,
				Status:      StatusPending,
				UpdatedByID: actorID,
			})
			if err != nil {
				log.Printf("provision attendance event=%d player=%d: %v", e.ID, player.ID, err)
				return
			}
			if inserted {
				created.Add(1)
			}
		})
	}
	workers.Wait()

	return int(created.Load()), nil
}

// ForPlayer creates one pending record per upcoming event for a freshly
// created player. Inactive players and non-players are skipped.
func (p *Provisioner) ForPlayer(u *user.User, actorID uint) (int, error) {
	if u.Role != string(rbac.RolePlayer) || !u.Active {
		return 0, nil
	}

	upcoming, err := p.events.FindUpcoming(time.Now(), p.fetchLimit)
	if err != nil {
		return 0, err
	}

	if actorID == 0 {
		actorID = u.ID
	}

	var created atomic.Int64
	workers := pool.New().WithMaxGoroutines(maxConcurrentCreates)
	for i := range upcoming {
		e := upcoming[i]
		workers.Go(func() {
			inserted, err := p.records.Upsert(&Attendance{
				EventID:     e.ID,
				PlayerID:    u.ID,
				Status:      StatusPending,
				UpdatedByID: actorID,
			})
			if err != nil {
				log.Printf("provision attendance event=%d player=%d: %v", e.ID, u.ID, err)
				return
			}
			if inserted {
				created.Add(1)
			}
		})
	}
	workers.Wait()

	return int(created.Load()), nil
}
