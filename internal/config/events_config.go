package config

type EventsConfig interface {
	GetEventsReplaySize() int
	GetEventsBufferSize() int
}

type Events struct {
	src source
}

var _ EventsConfig = Events{}

// GetEventsReplaySize is how many recent events per channel a new subscriber receives.
func (e Events) GetEventsReplaySize() int {
	return e.src.getInt("EVENTS_REPLAY", 16)
}

func (e Events) GetEventsBufferSize() int {
	return e.src.getInt("EVENTS_BUFFER", 64)
}
