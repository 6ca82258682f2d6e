// Package meshnet bridges the byte-oriented bearer (pkg/transport) to the
// model-level transport SPI (model.Transport) that the client/server model
// registries depend on, grounded on the teacher's transport.EventHandler
// plumbing and meshx_ble_mesh_cmn_def.h's access-layer message framing.
//
// The frame carries an already-resolved (element, model) destination and
// full addressing context; resolving which local model handles an inbound
// opcode, net/app key unwrapping and segmentation stay inside the
// underlying bearer (tinygo.org/x/bluetooth's mesh-proxy peer, or a
// simulator for tests) and are never reimplemented here.
package meshnet

import (
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/model"
)

const frameHeaderLen = 2 + 4 + 4 + 2 + 2 + 2 + 2 + 1 + 2

const flagIsGet byte = 1 << 0

// frame is the on-wire access-layer envelope this package moves across a
// transport.Transport bearer.
type frame struct {
	elementIndex uint16
	modelID      uint32
	ctx          model.Ctx
	isGet        bool
	payload      []byte
}

// encodeFrame serializes f as
// [elementIndex u16][modelID u32][opcode u32][src u16][dst u16][netIdx u16][appIdx u16][flags u8][payloadLen u16][payload],
// all little-endian.
func encodeFrame(f frame) []byte {
	buf := make([]byte, frameHeaderLen+len(f.payload))
	binary.LittleEndian.PutUint16(buf[0:2], f.elementIndex)
	binary.LittleEndian.PutUint32(buf[2:6], f.modelID)
	binary.LittleEndian.PutUint32(buf[6:10], f.ctx.Opcode)
	binary.LittleEndian.PutUint16(buf[10:12], f.ctx.SrcAddr)
	binary.LittleEndian.PutUint16(buf[12:14], f.ctx.DstAddr)
	binary.LittleEndian.PutUint16(buf[14:16], f.ctx.NetIdx)
	binary.LittleEndian.PutUint16(buf[16:18], f.ctx.AppIdx)
	var flags byte
	if f.isGet {
		flags |= flagIsGet
	}
	buf[18] = flags
	binary.LittleEndian.PutUint16(buf[19:21], uint16(len(f.payload)))
	copy(buf[21:], f.payload)
	return buf
}

// decodeFrame parses the layout encodeFrame produces.
func decodeFrame(data []byte) (frame, error) {
	if len(data) < frameHeaderLen {
		return frame{}, fmt.Errorf("%w: frame header needs %d bytes, got %d", meshxerr.ErrInvalidArg, frameHeaderLen, len(data))
	}
	f := frame{
		elementIndex: binary.LittleEndian.Uint16(data[0:2]),
		modelID:      binary.LittleEndian.Uint32(data[2:6]),
		ctx: model.Ctx{
			Opcode:  binary.LittleEndian.Uint32(data[6:10]),
			SrcAddr: binary.LittleEndian.Uint16(data[10:12]),
			DstAddr: binary.LittleEndian.Uint16(data[12:14]),
			NetIdx:  binary.LittleEndian.Uint16(data[14:16]),
			AppIdx:  binary.LittleEndian.Uint16(data[16:18]),
		},
		isGet: data[18]&flagIsGet != 0,
	}
	payloadLen := binary.LittleEndian.Uint16(data[19:21])
	if len(data) < frameHeaderLen+int(payloadLen) {
		return frame{}, fmt.Errorf("%w: frame declares %d byte payload, got %d", meshxerr.ErrInvalidArg, payloadLen, len(data)-frameHeaderLen)
	}
	f.payload = append([]byte(nil), data[21:21+int(payloadLen)]...)
	return f, nil
}
