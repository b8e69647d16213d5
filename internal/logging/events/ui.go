package events

import "github.com/atomicstack/termcord/internal/logging"

type ModeTracer struct{}

type ComposerTracer struct{}

type CommandTracer struct{}

type RenderTracer struct{}

var (
	Mode     = ModeTracer{}
	Composer = ComposerTracer{}
	Command  = CommandTracer{}
	Render   = RenderTracer{}
)

func (ModeTracer) Push(from, to string, depth int) {
	logging.Trace("mode.push", map[string]interface{}{"from": from, "to": to, "depth": depth})
}

func (ModeTracer) Pop(from, to string, depth int) {
	logging.Trace("mode.pop", map[string]interface{}{"from": from, "to": to, "depth": depth})
}

func (ModeTracer) Swap(from, to string) {
	logging.Trace("mode.swap", map[string]interface{}{"from": from, "to": to})
}

func (ModeTracer) UnboundKey(mode, key string) {
	logging.Trace("mode.unbound", map[string]interface{}{"mode": mode, "key": key})
}

func (ComposerTracer) Edit(op string, length, cursor int) {
	logging.Trace("composer."+op, map[string]interface{}{"length": length, "cursor": cursor})
}

func (ComposerTracer) Submit(target string, length int) {
	logging.Trace("composer.submit", map[string]interface{}{"target": target, "length": length})
}

func (CommandTracer) Queue(name string) {
	logging.Trace("command.queue", map[string]interface{}{"name": name})
}

func (CommandTracer) Skip(name string) {
	logging.Trace("command.skip", map[string]interface{}{"name": name})
}

func (CommandTracer) Execute(line string) {
	logging.Trace("command.execute", map[string]interface{}{"line": line})
}

func (RenderTracer) Relayout(width, height int) {
	logging.Trace("render.relayout", map[string]interface{}{"width": width, "height": height})
}
