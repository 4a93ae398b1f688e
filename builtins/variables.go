// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtins

func registerVariables() {
	for _, v := range []struct {
		name, typ string
		readOnly  bool
	}{
		// Vertex
		{"gl_VertexIndex", "int", true},
		{"gl_InstanceIndex", "int", true},
		{"gl_DrawID", "int", true},
		{"gl_BaseVertex", "int", true},
		{"gl_BaseInstance", "int", true},
		{"gl_Position", "vec4", false},
		{"gl_PointSize", "float", false},

		// Fragment
		{"gl_FragCoord", "vec4", true},
		{"gl_FrontFacing", "bool", true},
		{"gl_PointCoord", "vec2", true},
		{"gl_SampleID", "int", true},
		{"gl_FragDepth", "float", false},

		// Shared by geometry, tessellation and fragment stages
		{"gl_PrimitiveID", "int", true},
		{"gl_Layer", "int", false},
		{"gl_ViewIndex", "int", true},

		// Compute
		{"gl_NumWorkGroups", "uvec3", true},
		{"gl_WorkGroupID", "uvec3", true},
		{"gl_WorkGroupSize", "uvec3", true},
		{"gl_LocalInvocationID", "uvec3", true},
		{"gl_GlobalInvocationID", "uvec3", true},
		{"gl_LocalInvocationIndex", "uint", true},
	} {
		register(Entry{Name: v.name, Kind: KindVariable, Type: v.typ, ReadOnly: v.readOnly})
	}
}
