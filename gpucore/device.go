package gpucore

// Device abstracts over the GPU backends used by the debug renderers.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource while in use is undefined behavior
//   - IDs become invalid after destruction and must not be reused
//
// Implementations are not required to be safe for concurrent use; a device
// belongs to the render thread.
type Device interface {
	// Capabilities reports the shader tier and limits of the device.
	Capabilities() Capabilities

	// CreateProgram compiles and links a program. Compilation failures are
	// reported as *ShaderCompileError.
	CreateProgram(desc *ProgramDesc) (ProgramID, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// CreateBuffer creates a GPU buffer of desc.Size bytes.
	CreateBuffer(desc *BufferDesc) (BufferID, error)

	// DestroyBuffer releases a GPU buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer writes data at the given byte offset.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// CopyBuffer copies size bytes from the start of src to the start of dst.
	CopyBuffer(src, dst BufferID, size uint64) error

	// ReadBuffer reads size bytes starting at offset.
	// This may cause a GPU-CPU synchronization stall.
	ReadBuffer(id BufferID, offset, size uint64) ([]byte, error)

	// CreateTexture creates an RGBA8 texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// WriteTexture uploads tightly packed RGBA8 pixels covering the whole texture.
	WriteTexture(id TextureID, data []byte) error

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// CreateSampler creates a sampler.
	CreateSampler(desc *SamplerDesc) (SamplerID, error)

	// DestroySampler releases a sampler.
	DestroySampler(id SamplerID)

	// Draw records and executes a draw into the current target.
	Draw(cmd *DrawCommand) error
}
