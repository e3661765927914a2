//go:build js && wasm

// Command wasm exposes the motion engine to the browser via WebAssembly.
// After loading, it registers a global JavaScript function:
//
//	runDrive(jsonString) -> jsonString | {error, stage}
//
// The argument is a JSON drive document: run_meta (time_step, optional run_id and
// run_time), path.segments (linear and circle segments), profile (max_velocity,
// max_acceleration) and an optional robot (wheelbase, wheel_diameter). The result is
// the DriveLog JSON the CLI prints. On failure an object is returned whose stage is
// "parse", "build", "run" or "encode".
package main

import (
	"errors"
	"syscall/js"

	"github.com/rabid-robot/motion-engine/internal/engine"
)

func main() {
	js.Global().Set("runDrive", js.FuncOf(runDrive))
	select {} // keep the WASM module alive until the page is closed
}

func runDrive(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided", "stage": string(engine.StageParse)}
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		var se *engine.StageError
		if errors.As(err, &se) {
			return map[string]any{"error": se.Err.Error(), "stage": string(se.Stage)}
		}
		return map[string]any{"error": err.Error()}
	}
	return result
}
