// Package gpucore defines the device port used by the debug renderers.
//
// The [Device] interface abstracts over the GPU backends so the same
// batching code works with:
//   - gogpu/wgpu (Pure Go WebGPU via HAL), see backend/wgpu
//   - OpenGL 3.3 core via go-gl, see backend/gl
//   - an in-memory recorder for tests and headless tools, see backend/headless
//
// # Architecture
//
//	        +-------------------------+
//	        |   text / line renderer  |
//	        |  (batch, dynbuf, draw)  |
//	        +------------+------------+
//	                     |
//	              gpucore.Device
//	                     |
//	     +---------------+---------------+
//	     |               |               |
//	+----v----+     +----v----+     +----v-----+
//	|  wgpu   |     |   gl    |     | headless |
//	|  (HAL)  |     | (go-gl) |     | (memory) |
//	+---------+     +---------+     +----------+
//
// # Resources
//
// Resources are referenced by opaque IDs. Each backend maintains the mapping
// between IDs and its native handles. [InvalidID] is never returned for a
// live resource.
//
// # Shader Tiers
//
// A backend reports the shading language it accepts through
// [Capabilities.ShaderModel]. Renderers pick a program variant for that tier;
// see [ShaderModel.Supports].
package gpucore
