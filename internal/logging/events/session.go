package events

import "github.com/atomicstack/termcord/internal/logging"

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) ServersSet(count int, active string) {
	logging.Trace("session.servers", map[string]interface{}{"count": count, "active": active})
}

func (SessionTracer) ChannelsSet(server string, count int) {
	logging.Trace("session.channels", map[string]interface{}{"server": server, "count": count})
}

func (SessionTracer) ChannelsOrphaned(server string) {
	logging.Trace("session.channels.orphaned", map[string]interface{}{"server": server})
}

func (SessionTracer) MessageStored(channel, id string) {
	logging.Trace("session.message.stored", map[string]interface{}{"channel": channel, "id": id})
}

func (SessionTracer) MessageDropped(channel, id string) {
	logging.Trace("session.message.dropped", map[string]interface{}{"channel": channel, "id": id})
}

func (SessionTracer) Recovered(value interface{}) {
	logging.Trace("session.recovered", map[string]interface{}{"panic": value})
}
