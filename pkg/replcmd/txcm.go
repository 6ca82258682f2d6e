package replcmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/txcm"
)

// TXCM module command ids.
const (
	TxcmCmdQueueLen CmdID = 0 // argc 0: report current queue length
	TxcmCmdPeek     CmdID = 1 // argc 0: report head item, or "empty"
	TxcmCmdEnqSend  CmdID = 2 // argc 2: dest_addr payload_hex, enqueue an acked send with a no-op transport
)

// RegisterTxcm wires module 3 (TXCM) commands against t, exercising its
// public API the same way unit_test.c's TXCM module exercises
// meshx_tx_queue_peek/meshx_txcm_request_send.
func RegisterTxcm(r *Registry, t *txcm.Txcm) {
	r.Register(ModuleTxcm, TxcmCmdQueueLen, func(ctx context.Context, args []string) (string, error) {
		return strconv.Itoa(t.QueueLen()), nil
	})

	r.Register(ModuleTxcm, TxcmCmdPeek, func(ctx context.Context, args []string) (string, error) {
		item, ok := t.Peek()
		if !ok {
			return "empty", nil
		}
		return fmt.Sprintf("dest=0x%04x state=%s retry=%d", item.DestAddr, item.MsgState, item.RetryCount), nil
	})

	r.Register(ModuleTxcm, TxcmCmdEnqSend, func(ctx context.Context, args []string) (string, error) {
		if len(args) != 2 {
			return "", fmt.Errorf("%w: usage: dest_addr payload_hex", meshxerr.ErrInvalidArg)
		}
		dest, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return "", fmt.Errorf("%w: dest_addr: %v", meshxerr.ErrInvalidArg, err)
		}
		payload, err := decodeHexArg(args[1])
		if err != nil {
			return "", err
		}
		err = t.RequestSend(txcm.KindEnqSend, uint16(dest), 0, 0, 0, payload, func(ctx context.Context, payload []byte) error {
			return nil // unit-test transport: accept every send without a real bearer
		})
		if err != nil {
			return "", err
		}
		return "queued", nil
	})
}
