package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"screenpipe/internal/notify"
)

// SettingsChanged is the frontend event carrying a new settings snapshot.
const SettingsChanged = "settings:changed"

// Emit sends a settings event to the frontend. It is a no-op until
// EnableRuntimeEmitter or SetCustomEmitter is called.
var Emit = func(ctx context.Context, name string, evt SettingsEvent) {}

// EnableRuntimeEmitter routes events through the Wails runtime. ctx must be
// the context handed to OnStartup.
func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, name string, evt SettingsEvent) {
		runtime.EventsEmit(ctx, name, evt)
		logRuntimeEvent(ctx, evt)
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt SettingsEvent)) {
	if f == nil {
		Emit = func(context.Context, string, SettingsEvent) {}
		return
	}
	Emit = f
}

// Forward returns an observer that re-emits every published snapshot.
func Forward(ctx context.Context) notify.Observer {
	return func(change notify.Change) {
		Emit(ctx, SettingsChanged, NewSettingsEvent(change))
	}
}
