package events

import (
	"time"

	"github.com/atomicstack/termcord/internal/logging"
)

type BridgeTracer struct{}

var Bridge = BridgeTracer{}

func (BridgeTracer) Command(name string) {
	logging.Trace("bridge.command", map[string]interface{}{"name": name})
}

func (BridgeTracer) Event(name string) {
	logging.Trace("bridge.event", map[string]interface{}{"name": name})
}

func (BridgeTracer) RequestFailed(name string, err error) {
	if err == nil {
		return
	}
	logging.Trace("bridge.request.error", map[string]interface{}{"name": name, "error": err.Error()})
}

func (BridgeTracer) StreamRetry(err error, delay time.Duration) {
	payload := map[string]interface{}{"delay": delay.String()}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("bridge.stream.retry", payload)
}

func (BridgeTracer) Dropped(name string) {
	logging.Trace("bridge.command.dropped", map[string]interface{}{"name": name})
}

func (BridgeTracer) Stopped(reason string) {
	logging.Trace("bridge.stop", map[string]interface{}{"reason": reason})
}
