package recording

import "github.com/gogpu/glstate/backend"

func init() {
	backend.Register("recording", func() backend.Device { return New() })
}
