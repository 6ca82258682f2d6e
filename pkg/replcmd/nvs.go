package replcmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/nvs"
)

// NVS module command ids.
const (
	NvsCmdProductInfo     CmdID = 0 // argc 0: report stored (cid, pid)
	NvsCmdGetElementState CmdID = 1 // argc 1: element_id
	NvsCmdSetElementState CmdID = 2 // argc 2: element_id blob_hex
	NvsCmdCommit          CmdID = 3 // argc 0: force a commit
)

// RegisterNvs wires module 4 (NVS) commands against s, exercising its
// public API the same way unit_test.c's NVS module exercises
// meshx_nvs_elemnt_ctx_get/set and meshx_nvs_commit.
func RegisterNvs(r *Registry, s *nvs.Store) {
	r.Register(ModuleNvs, NvsCmdProductInfo, func(ctx context.Context, args []string) (string, error) {
		cid, pid, err := s.ProductInfo()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("cid=0x%04x pid=0x%04x", cid, pid), nil
	})

	r.Register(ModuleNvs, NvsCmdGetElementState, func(ctx context.Context, args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%w: usage: element_id", meshxerr.ErrInvalidArg)
		}
		elementID, err := parseElementID(args[0])
		if err != nil {
			return "", err
		}
		blob, ok, err := s.ElementState(elementID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: no state for element 0x%04x", meshxerr.ErrNotFound, elementID)
		}
		return hex.EncodeToString(blob), nil
	})

	r.Register(ModuleNvs, NvsCmdSetElementState, func(ctx context.Context, args []string) (string, error) {
		if len(args) != 2 {
			return "", fmt.Errorf("%w: usage: element_id blob_hex", meshxerr.ErrInvalidArg)
		}
		elementID, err := parseElementID(args[0])
		if err != nil {
			return "", err
		}
		blob, err := decodeHexArg(args[1])
		if err != nil {
			return "", err
		}
		if err := s.SetElementState(elementID, blob); err != nil {
			return "", err
		}
		return "ok", nil
	})

	r.Register(ModuleNvs, NvsCmdCommit, func(ctx context.Context, args []string) (string, error) {
		if err := s.Commit(); err != nil {
			return "", err
		}
		return "committed", nil
	})
}

func parseElementID(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: element_id: %v", meshxerr.ErrInvalidArg, err)
	}
	return uint16(v), nil
}

func decodeHexArg(s string) ([]byte, error) {
	blob, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid hex: %v", meshxerr.ErrInvalidArg, err)
	}
	return blob, nil
}
