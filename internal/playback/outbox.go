package playback

import (
	"sync"

	"github.com/stwalsh4118/classroom/internal/player"
)

// Outbox is the native playback handle for a remote player. The engine writes
// commands into it and the client drains them with its next request.
type Outbox struct {
	mu       sync.Mutex
	commands []player.Command
}

// Play queues a play command
func (o *Outbox) Play() {
	o.push(player.Command{Kind: player.CommandPlay})
}

// Pause queues a pause command
func (o *Outbox) Pause() {
	o.push(player.Command{Kind: player.CommandPause})
}

// Seek queues a seek command
func (o *Outbox) Seek(position float64) {
	o.push(player.Command{Kind: player.CommandSeek, Position: position})
}

func (o *Outbox) push(cmd player.Command) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commands = append(o.commands, cmd)
}

// Drain returns the queued commands in issue order and empties the outbox
func (o *Outbox) Drain() []player.Command {
	o.mu.Lock()
	defer o.mu.Unlock()
	cmds := o.commands
	o.commands = nil
	if cmds == nil {
		return []player.Command{}
	}
	return cmds
}
