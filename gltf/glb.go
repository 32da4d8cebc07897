package gltf

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"go.viam.com/bodyscan/bodymesh"
)

// Encode serializes a mesh as a GLB byte slice. An empty mesh encodes to
// an empty slice.
func Encode(m *bodymesh.Mesh) []byte {
	data, err := encodeGLB(m)
	if err != nil {
		return nil
	}
	return data
}

// WriteModel encodes a mesh as GLB and writes it to out. An empty mesh
// writes nothing.
func WriteModel(m *bodymesh.Mesh, out io.Writer) error {
	data, err := encodeGLB(m)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err = out.Write(data)
	return err
}

func encodeGLB(m *bodymesh.Mesh) ([]byte, error) {
	if m == nil || m.Empty() {
		return nil, nil
	}
	bin := encodeBinaryChunk(m)
	jsonPayload, err := json.Marshal(buildDocument(m, len(bin)))
	if err != nil {
		return nil, errors.Wrap(err, "encoding glb json chunk")
	}
	// the json chunk pads with spaces, the binary chunk with zeros
	jsonPayload = pad(jsonPayload, ' ')
	bin = pad(bin, 0)

	total := headerSize + chunkHeaderSize + len(jsonPayload) + chunkHeaderSize + len(bin)
	out := make([]byte, 0, total)
	out = appendUint32(out, glbMagic)
	out = appendUint32(out, glbVersion)
	out = appendUint32(out, uint32(total))
	out = appendUint32(out, uint32(len(jsonPayload)))
	out = appendUint32(out, chunkTypeJSON)
	out = append(out, jsonPayload...)
	out = appendUint32(out, uint32(len(bin)))
	out = appendUint32(out, chunkTypeBIN)
	out = append(out, bin...)
	return out, nil
}

// encodeBinaryChunk lays out positions, then normals, then indices, all
// little-endian. Each section is a multiple of 4 bytes so the buffer views
// stay aligned without interior padding.
func encodeBinaryChunk(m *bodymesh.Mesh) []byte {
	buf := make([]byte, 0, 24*m.VertexCount()+4*len(m.Indices))
	for _, p := range m.Positions {
		buf = appendVec3(buf, p)
	}
	for _, n := range m.Normals {
		buf = appendVec3(buf, n)
	}
	for _, idx := range m.Indices {
		buf = appendUint32(buf, idx)
	}
	return buf
}

func buildDocument(m *bodymesh.Mesh, binLen int) *Document {
	vertexBytes := 12 * m.VertexCount()
	indexBytes := 4 * len(m.Indices)
	bbMin, bbMax := m.BoundingBox()
	return &Document{
		Asset:  Asset{Version: "2.0", Generator: "bodyscan"},
		Scene:  0,
		Scenes: []Scene{{Nodes: []int{0}}},
		Nodes:  []Node{{Mesh: 0}},
		Meshes: []Mesh{{Primitives: []Primitive{{
			Attributes: map[string]int{"POSITION": 0, "NORMAL": 1},
			Indices:    2,
			Material:   0,
			Mode:       modeTriangles,
		}}}},
		Materials: []Material{{
			Name: "body",
			PBRMetallicRoughness: &PBRMetallicRoughness{
				BaseColorFactor: []float64{0.80, 0.65, 0.55, 1.0},
				MetallicFactor:  0,
				RoughnessFactor: 0.9,
			},
			DoubleSided: true,
		}},
		Buffers: []Buffer{{ByteLength: binLen}},
		BufferViews: []BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: vertexBytes, Target: targetArrayBuffer},
			{Buffer: 0, ByteOffset: vertexBytes, ByteLength: vertexBytes, Target: targetArrayBuffer},
			{Buffer: 0, ByteOffset: 2 * vertexBytes, ByteLength: indexBytes, Target: targetElementArrayBuffer},
		},
		Accessors: []Accessor{
			{
				BufferView:    0,
				ComponentType: componentFloat32,
				Count:         m.VertexCount(),
				Type:          "VEC3",
				Min:           []float32{bbMin[0], bbMin[1], bbMin[2]},
				Max:           []float32{bbMax[0], bbMax[1], bbMax[2]},
			},
			{
				BufferView:    1,
				ComponentType: componentFloat32,
				Count:         m.VertexCount(),
				Type:          "VEC3",
			},
			{
				BufferView:    2,
				ComponentType: componentUint32,
				Count:         len(m.Indices),
				Type:          "SCALAR",
			},
		},
	}
}

// Decode splits a GLB byte slice into its parsed JSON document and raw
// binary chunk, validating the container structure along the way.
func Decode(data []byte) (*Document, []byte, error) {
	if len(data) < headerSize {
		return nil, nil, errors.New("glb data too short for a header")
	}
	if magic := binary.LittleEndian.Uint32(data); magic != glbMagic {
		return nil, nil, errors.Errorf("bad glb magic 0x%08X", magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != glbVersion {
		return nil, nil, errors.Errorf("unsupported glb version %d", version)
	}
	if total := binary.LittleEndian.Uint32(data[8:]); int(total) != len(data) {
		return nil, nil, errors.Errorf("glb length mismatch: header says %d, have %d", total, len(data))
	}

	var doc *Document
	var bin []byte
	offset := headerSize
	for offset < len(data) {
		if len(data)-offset < chunkHeaderSize {
			return nil, nil, errors.New("truncated glb chunk header")
		}
		chunkLen := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		offset += chunkHeaderSize
		if chunkLen > len(data)-offset {
			return nil, nil, errors.Errorf("glb chunk of %d bytes overruns the file", chunkLen)
		}
		payload := data[offset : offset+chunkLen]
		offset += chunkLen

		switch chunkType {
		case chunkTypeJSON:
			doc = &Document{}
			if err := json.Unmarshal(payload, doc); err != nil {
				return nil, nil, errors.Wrap(err, "decoding glb json chunk")
			}
		case chunkTypeBIN:
			bin = payload
		}
	}
	if doc == nil {
		return nil, nil, errors.New("glb has no json chunk")
	}
	return doc, bin, nil
}

func pad(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}

func appendUint32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func appendVec3(dst []byte, v mgl32.Vec3) []byte {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v[2]))
	return append(dst, buf[:]...)
}
