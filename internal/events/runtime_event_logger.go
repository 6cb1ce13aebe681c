package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

func logRuntimeEvent(ctx context.Context, evt SettingsEvent) {
	msg := "settings " + evt.Reason
	if evt.Reason == "revert" {
		runtime.LogWarning(ctx, msg)
		return
	}
	runtime.LogDebug(ctx, msg)
}
