package export

import (
	"sync"

	"github.com/couchcryptid/laudo-service/internal/document"
)

// stage holds the scene being exported while it is off screen. Only one
// scene is mounted at a time.
type stage struct {
	mu    sync.Mutex
	scene *document.Scene
}

func (s *stage) mount(sc document.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene = &sc
}

func (s *stage) unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene = nil
}

func (s *stage) mounted() (document.Scene, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scene == nil {
		return document.Scene{}, false
	}
	return *s.scene, true
}
