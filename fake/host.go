// File: fake/host.go
// Author: momentics <momentics@gmail.com>

package fake

import (
	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/stream"
)

// Host records every read event delivered by the adapter.
type Host struct {
	Events []stream.ReadEvent
}

// OnRead implements stream.Host.
func (h *Host) OnRead(ev stream.ReadEvent) {
	h.Events = append(h.Events, ev)
}

// Registry is a scriptable stream.Registry backed by fake handles.
type Registry struct {
	// Err, when set, makes Instantiate report an allocation failure.
	Err error

	// Instantiated collects every wrap handed out.
	Instantiated []*stream.Wrap
}

// Instantiate implements stream.Registry.
func (r *Registry) Instantiate(kind api.HandleKind, _ *stream.Wrap) (*stream.Wrap, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	w := stream.New(NewStreamHandle(kind, false), nil, stream.WithRegistry(r))
	r.Instantiated = append(r.Instantiated, w)
	return w, nil
}
