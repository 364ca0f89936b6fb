// Package pending guards against duplicate submissions of the same file
// while a rename run is in flight or was started moments ago.
package pending

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultWindow is how long a submission blocks resubmission of the same
// file identity unless the run completes earlier.
const DefaultWindow = 10 * time.Second

// Guard tracks in-flight file identities. A file admitted by Begin blocks
// further submissions of the same identity until the window elapses or
// Release is called, whichever comes first.
type Guard struct {
	window  time.Duration
	entries *gocache.Cache
}

// NewGuard creates a guard with the given window. Non-positive windows fall
// back to DefaultWindow.
func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{
		window:  window,
		entries: gocache.New(window, gocache.NoExpiration),
	}
}

// Begin attempts to admit the file identity. It returns true when the caller
// may proceed and false when the same identity was admitted within the window
// and has not been released.
func (g *Guard) Begin(fileID string) bool {
	return g.entries.Add(fileID, time.Now(), g.window) == nil
}

// Release removes the identity so completed runs allow immediate
// resubmission, even inside the window.
func (g *Guard) Release(fileID string) {
	g.entries.Delete(fileID)
}

// Sweep drops expired entries eagerly. The guard stays correct without it;
// periodic sweeps just keep the map small.
func (g *Guard) Sweep() {
	g.entries.DeleteExpired()
}

// Len reports the number of tracked identities, expired entries included
// until the next sweep.
func (g *Guard) Len() int {
	return g.entries.ItemCount()
}
