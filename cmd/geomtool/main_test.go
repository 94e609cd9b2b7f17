package main

import (
	"flag"
	"testing"
)

func TestExportBinary(t *testing.T) {
	tests := []struct {
		out           string
		binaryDefault bool
		want          bool
	}{
		{"scene.gltf", true, false},
		{"scene.gltf", false, false},
		{"SCENE.GLTF", true, false},
		{"scene.glb", false, true},
		{"scene.glb", true, true},
		{"scene.bin", true, true},
		{"scene.bin", false, false},
		{"scene", false, false},
	}
	for _, tt := range tests {
		if got := exportBinary(tt.out, tt.binaryDefault); got != tt.want {
			t.Errorf("exportBinary(%q, %v) = %v, want %v", tt.out, tt.binaryDefault, got, tt.want)
		}
	}
}

func TestFlagPassed(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
		dot  float64
	}{
		{"absent", []string{"in.g3d", "out.g3d"}, false, 0},
		{"within range", []string{"-min-dot", "0.5", "in.g3d", "out.g3d"}, true, 0.5},
		{"below minus one", []string{"-min-dot", "-3", "in.g3d", "out.g3d"}, true, -3},
		{"zero", []string{"-min-dot=0", "in.g3d", "out.g3d"}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("normals", flag.ContinueOnError)
			minDot := fs.Float64("min-dot", 0, "")
			fs.Bool("debug", false, "")
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			if got := flagPassed(fs, "min-dot"); got != tt.want {
				t.Errorf("flagPassed = %v, want %v", got, tt.want)
			}
			if *minDot != tt.dot {
				t.Errorf("min-dot = %g, want %g", *minDot, tt.dot)
			}
			if flagPassed(fs, "debug") {
				t.Error("debug was not passed")
			}
		})
	}
}
