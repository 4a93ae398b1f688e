// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

// StageKind identifies a well-known pipeline stage.
type StageKind uint8

const (
	StageOther StageKind = iota
	StageVertex
	StageFragment
	StageCompute
	StageGeometry
	StageTessControl
	StageTessEval
)

var stageKindNames = map[string]StageKind{
	"Vertex":      StageVertex,
	"Fragment":    StageFragment,
	"Compute":     StageCompute,
	"Geometry":    StageGeometry,
	"TessControl": StageTessControl,
	"TessEval":    StageTessEval,
}

func (k StageKind) String() string {
	switch k {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageGeometry:
		return "geometry"
	case StageTessControl:
		return "tess control"
	case StageTessEval:
		return "tess evaluation"
	default:
		return "other"
	}
}

// Stage is the tag of a stage block. Name always holds the tag as
// written, so unknown stages round-trip unchanged.
type Stage struct {
	Kind StageKind
	Name string
}

// StageFromName classifies a stage tag.
func StageFromName(name string) Stage {
	return Stage{Kind: stageKindNames[name], Name: name}
}

func (s Stage) String() string { return "@" + s.Name }
