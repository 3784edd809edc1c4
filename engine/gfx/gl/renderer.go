package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/questsage/engine/core"
)

// RendererGL implements core.Renderer on an OpenGL 3.3 core context. All
// methods must run on the thread that owns the context.
type RendererGL struct {
	win core.Window
}

var _ core.Renderer = (*RendererGL)(nil)

func NewRendererGL(win core.Window, _ core.Config) (*RendererGL, error) {
	r := &RendererGL{win: win}
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RendererGL) Init() error {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	// R8 uploads have rows that are not 4-byte aligned.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return nil
}

func (r *RendererGL) Shutdown() {}

func (r *RendererGL) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (r *RendererGL) Clear(rf, gf, bf, af float32) {
	gl.ClearColor(rf, gf, bf, af)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (r *RendererGL) Info() core.GPUInfo {
	return core.GPUInfo{
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
	}
}

// --- pipelines ---

type pipeline struct {
	program   uint32
	depthTest bool
	blend     bool
	uniforms  map[string]int32
}

func (p *pipeline) Release() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}

func (p *pipeline) location(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.program, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

func (r *RendererGL) CreatePipeline(desc core.PipelineDesc) (core.Pipeline, error) {
	prog, err := makeProgram(cstr(desc.VertexSource), cstr(desc.FragmentSource))
	if err != nil {
		return nil, err
	}
	return &pipeline{
		program:   prog,
		depthTest: desc.DepthTest,
		blend:     desc.Blend,
		uniforms:  make(map[string]int32),
	}, nil
}

// --- textures ---

type texture struct {
	id     uint32
	w, h   int
	format core.TextureFormat
}

func (t *texture) Size() (int, int) { return t.w, t.h }

func (t *texture) Release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func glFormat(f core.TextureFormat) (internal int32, format uint32) {
	if f == core.TextureR8 {
		return gl.R8, gl.RED
	}
	return gl.RGBA8, gl.RGBA
}

func glFilter(s string) int32 {
	if s == "linear" {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func glWrap(s string) int32 {
	if s == "repeat" {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func (r *RendererGL) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("glbackend: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	t := &texture{w: desc.Width, h: desc.Height, format: desc.Format}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(desc.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(desc.WrapU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(desc.WrapV))

	internal, format := glFormat(desc.Format)
	var ptr unsafe.Pointer
	if len(desc.Pixels) >= desc.Width*desc.Height*desc.Format.BytesPerPixel() {
		ptr = gl.Ptr(desc.Pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(desc.Width), int32(desc.Height), 0, format, gl.UNSIGNED_BYTE, ptr)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

func (r *RendererGL) UpdateTexture(tex core.Texture, x, y, w, h int, pixels []byte) error {
	t, ok := tex.(*texture)
	if !ok {
		return fmt.Errorf("glbackend: foreign texture %T", tex)
	}
	if x < 0 || y < 0 || x+w > t.w || y+h > t.h {
		return fmt.Errorf("glbackend: write %dx%d at (%d,%d) outside %dx%d texture", w, h, x, y, t.w, t.h)
	}
	if w == 0 || h == 0 {
		return nil
	}
	if len(pixels) < w*h*t.format.BytesPerPixel() {
		return fmt.Errorf("glbackend: short pixel buffer (%d bytes)", len(pixels))
	}
	_, format := glFormat(t.format)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(w), int32(h), format, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// --- meshes ---

type mesh struct {
	vao, vbo, ebo uint32
	vcap, icap    int
}

func (m *mesh) Release() {
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	*m = mesh{}
}

func (r *RendererGL) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	m := &mesh{vcap: desc.VertexCapacity, icap: desc.IndexCapacity}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, m.vcap*4, nil, gl.DYNAMIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, m.icap*2, nil, gl.DYNAMIC_DRAW)

	for _, a := range desc.Layout.Attributes {
		loc := uint32(a.Location)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, int32(a.Size), gl.FLOAT, false, int32(desc.Layout.Stride), uintptr(a.Offset))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m, nil
}

func (r *RendererGL) UpdateMesh(cm core.Mesh, vertices []float32, indices []uint16) error {
	m, ok := cm.(*mesh)
	if !ok {
		return fmt.Errorf("glbackend: foreign mesh %T", cm)
	}
	if len(vertices) > m.vcap || len(indices) > m.icap {
		return fmt.Errorf("glbackend: mesh overflow: %d/%d floats, %d/%d indices", len(vertices), m.vcap, len(indices), m.icap)
	}
	gl.BindVertexArray(m.vao)
	if len(vertices) > 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	}
	if len(indices) > 0 {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*2, gl.Ptr(indices))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// --- drawing ---

func (r *RendererGL) Draw(cmd core.DrawCmd) {
	p, ok := cmd.Pipe.(*pipeline)
	if !ok || p.program == 0 {
		return
	}
	m, ok := cmd.Mesh.(*mesh)
	if !ok || m.vao == 0 || cmd.Count == 0 {
		return
	}

	if p.depthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if p.blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	gl.UseProgram(p.program)
	for name, v := range cmd.Uniforms {
		setUniform(p.location(name), v)
	}
	unit := int32(0)
	for name, tex := range cmd.Samplers {
		t, ok := tex.(*texture)
		if !ok {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.Uniform1i(p.location(name), unit)
		unit++
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(cmd.Count), gl.UNSIGNED_SHORT, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	switch u := v.(type) {
	case [16]float32:
		gl.UniformMatrix4fv(loc, 1, false, &u[0])
	case [4]float32:
		gl.Uniform4f(loc, u[0], u[1], u[2], u[3])
	case [2]float32:
		gl.Uniform2f(loc, u[0], u[1])
	case float32:
		gl.Uniform1f(loc, u)
	case int32:
		gl.Uniform1i(loc, u)
	}
}

// --- Shader utilities ---

func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", log)
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", log)
	}
	return prog, nil
}
