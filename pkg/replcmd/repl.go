package replcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/meshx-project/meshx/pkg/meshxerr"
)

// REPL reads whitespace-separated `ut <module_id> <cmd_id> <argc>
// [args...]` lines from in and writes "<code> <output>" responses to out,
// one line per command, until in is exhausted or ctx is canceled. It backs
// both the stdin front-end and a go.bug.st/serial console front-end, which
// only differ in what io.Reader/io.Writer they hand REPL.
func REPL(ctx context.Context, r *Registry, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		res, err := runLine(ctx, r, line)
		if err != nil {
			fmt.Fprintf(out, "%d %s\n", statusCode(err), err.Error())
			continue
		}
		fmt.Fprintf(out, "%d %s\n", res.Code, res.Output)
	}
	return scanner.Err()
}

// runLine parses one "ut module cmd argc args..." line and dispatches it.
func runLine(ctx context.Context, r *Registry, line string) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "ut" {
		return Result{}, fmt.Errorf("%w: usage: ut <module_id> <cmd_id> <argc> [args...]", meshxerr.ErrInvalidArg)
	}

	moduleID, err := strconv.Atoi(fields[1])
	if err != nil {
		return Result{}, fmt.Errorf("%w: module_id: %v", meshxerr.ErrInvalidArg, err)
	}
	cmdID, err := strconv.Atoi(fields[2])
	if err != nil {
		return Result{}, fmt.Errorf("%w: cmd_id: %v", meshxerr.ErrInvalidArg, err)
	}
	argc, err := ParseArgc(fields[3])
	if err != nil {
		return Result{}, err
	}
	argv := fields[4:]

	return r.Dispatch(ctx, moduleID, cmdID, argc, argv), nil
}
