// Mesh preview tool - inspect built-in mesh vertices with sliders.
//
// Usage: go run ./cmd/meshpreview [--config path]
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/exertion/camera"
	"github.com/pthm-cable/exertion/config"
	"github.com/pthm-cable/exertion/mesh"
	"github.com/pthm-cable/exertion/renderer"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	panelWidth   = 300
)

// previewParams holds the adjustable mesh settings.
type previewParams struct {
	Name       string
	Resolution int
	Scale      float32
}

// meshSnippet is the config fragment printed for the current settings.
type meshSnippet struct {
	Meshes struct {
		Selected   string             `yaml:"selected"`
		Resolution int                `yaml:"resolution"`
		Scale      map[string]float64 `yaml:"scale"`
	} `yaml:"meshes"`
}

var configPath string

func main() {
	cmd := &cobra.Command{
		Use:          "meshpreview",
		Short:        "preview built-in meshes and their config values",
		RunE:         run,
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (empty = use defaults)")

	if err := cmd.Execute(); err != nil {
		slog.Error("meshpreview failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Mesh Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := previewParams{
		Name:       cfg.Meshes.Selected,
		Resolution: cfg.Meshes.Resolution,
		Scale:      float32(cfg.MeshScale(cfg.Meshes.Selected)),
	}
	params := defaults

	cam := camera.New(windowWidth-panelWidth, windowHeight, cfg.Camera)
	cam.SetDistance(3 * float64(params.Scale))

	meshes := mesh.Builtin(params.Resolution)
	if _, err := meshes.Lookup(params.Name); err != nil {
		params.Name = meshes.Next(params.Name)
	}
	points := scaled(meshes, params)
	rotating := true

	for !rl.WindowShouldClose() {
		if rotating {
			cam.Orbit(0.01, 0)
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			cam.ZoomBy(1 + float64(wheel)*0.1)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		rl.BeginMode3D(renderer.Camera3D(cam))
		for i := 0; i+2 < len(points); i += 3 {
			rl.DrawCube(rl.NewVector3(points[i], points[i+1], points[i+2]), 0.8, 0.8, 0.8, rl.SkyBlue)
		}
		rl.EndMode3D()

		rl.DrawText(fmt.Sprintf("%s: %d vertices", params.Name, len(points)/3), 10, 10, 20, rl.White)

		// Control panel
		panelX := float32(windowWidth - panelWidth + 10)
		panelY := float32(10)
		rl.DrawRectangle(int32(panelX-10), 0, panelWidth, windowHeight, rl.RayWhite)
		rl.DrawText("Mesh Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Resolution (subdivisions)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRes := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 80, Height: 20},
			"3", "96",
			float32(params.Resolution), 3, 96,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Resolution), int32(panelX+panelWidth-70), int32(panelY+2), 16, rl.DarkGray)
		if int(newRes) != params.Resolution {
			params.Resolution = int(newRes)
			meshes = mesh.Builtin(params.Resolution)
			points = scaled(meshes, params)
		}
		panelY += 35

		rl.DrawText("Scale (vertex multiplier)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 80, Height: 20},
			"1", "120",
			params.Scale, 1, 120,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.Scale), int32(panelX+panelWidth-70), int32(panelY+2), 16, rl.DarkGray)
		if newScale != params.Scale {
			params.Scale = newScale
			points = scaled(meshes, params)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 130, Height: 30}, "Next Mesh") {
			params.Name = meshes.Next(params.Name)
			params.Scale = float32(cfg.MeshScale(params.Name))
			points = scaled(meshes, params)
		}
		if gui.Button(rl.Rectangle{X: panelX + 140, Y: panelY, Width: 130, Height: 30}, toggleText(rotating, "Stop", "Rotate")) {
			rotating = !rotating
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 130, Height: 30}, "Reset All") {
			params = defaults
			meshes = mesh.Builtin(params.Resolution)
			points = scaled(meshes, params)
			cam.Reset()
			cam.SetDistance(3 * float64(params.Scale))
		}
		panelY += 55

		snippet := snippetYAML(params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(snippet, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
	return nil
}

// scaled returns the named mesh's vertices multiplied by the preview scale.
func scaled(meshes mesh.Set, params previewParams) []float32 {
	verts, err := meshes.Lookup(params.Name)
	if err != nil {
		return nil
	}
	out := make([]float32, len(verts))
	for i, v := range verts {
		out[i] = float32(v) * params.Scale
	}
	return out
}

// snippetYAML renders the meshes config section for params.
func snippetYAML(params previewParams) string {
	var s meshSnippet
	s.Meshes.Selected = params.Name
	s.Meshes.Resolution = params.Resolution
	s.Meshes.Scale = map[string]float64{params.Name: float64(params.Scale)}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
