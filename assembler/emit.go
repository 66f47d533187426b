package assembler

import (
	"context"

	"golang.org/x/sync/errgroup"
	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/armasm/assembler/arm64"
	"github.com/slowlang/armasm/assembler/ast"
	"github.com/slowlang/armasm/assembler/obj"
)

type (
	piece struct {
		i   int
		w   arm64.Word
		err error
	}

	pieces struct {
		heap.Heap[piece]
	}
)

// Emit encodes prog and returns the program bytes.
// On error or cancellation no bytes are returned.
func Emit(ctx context.Context, prog ast.Program) ([]byte, error) {
	return New().Emit(ctx, prog)
}

func (a *Assembler) Emit(ctx context.Context, prog ast.Program) (b []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "emit", "instrs", len(prog), "workers", a.Workers)
	defer tr.Finish("err", &err)

	if tr.If("dump_prog") {
		for i, x := range prog {
			tr.Printw("instr", "i", i, "typ", tlog.NextAsType, x, "val", x)
		}
	}

	if a.Workers > 1 && len(prog) > 1 {
		b, err = a.emitParallel(ctx, prog)
	} else {
		b, err = a.emit(ctx, prog)
	}
	if err != nil {
		return nil, err
	}

	tr.Printw("emitted", "size", len(b))

	return b, nil
}

func (a *Assembler) emit(ctx context.Context, prog ast.Program) (b []byte, err error) {
	tr := tlog.SpanFromContext(ctx)

	ws := make([]arm64.Word, 0, len(prog))
	at := make([]int, 0, len(prog))

	for i, x := range prog {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "emitted %d of %d instrs", i, len(prog))
		}

		w, err := arm64.Encode(x)
		if err != nil {
			return nil, instrError(err, i, x)
		}

		tr.V("emit_word").Printw("word", "i", i, "instr", x, "bits", tlog.FormatNext("%#x"), w.Bits, "size", w.Size)

		if w.Size == 0 {
			continue
		}

		ws = append(ws, w)
		at = append(at, i)
	}

	size, err := obj.Size(ws)
	if err != nil {
		return nil, errors.Wrap(err, "size")
	}

	b = make([]byte, 0, size)

	for k, w := range ws {
		b, err = obj.Append(b, w)
		if err != nil {
			return nil, instrError(err, at[k], prog[at[k]])
		}
	}

	return b, nil
}

// emitParallel encodes on a.Workers goroutines and merges results in program order.
// The reported error is the one of the lowest failing index, as in emit.
func (a *Assembler) emitParallel(ctx context.Context, prog ast.Program) (b []byte, err error) {
	tr := tlog.SpanFromContext(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	idx := make(chan int)
	res := make(chan piece, a.Workers)

	g.Go(func() error {
		defer close(idx)

		for i := range prog {
			select {
			case idx <- i:
			case <-gctx.Done():
				return nil
			}
		}

		return nil
	})

	var workers errgroup.Group

	for k := 0; k < a.Workers; k++ {
		workers.Go(func() error {
			for i := range idx {
				p := piece{i: i}
				p.w, p.err = arm64.Encode(prog[i])

				select {
				case res <- p:
				case <-gctx.Done():
					return nil
				}
			}

			return nil
		})
	}

	g.Go(func() error {
		defer close(res)

		return workers.Wait()
	})

	q := pieces{Heap: heap.Heap[piece]{Less: piecesLess}}
	b = make([]byte, 0, arm64.InstrSize*len(prog))
	next := 0

	for p := range res {
		if err != nil {
			continue // drain
		}

		q.Push(p)

		for q.Len() != 0 && q.Data[0].i == next {
			p := q.Pop()

			if p.err == nil && p.w.Size != 0 {
				b, p.err = obj.Append(b, p.w)
			}
			if p.err != nil {
				err = instrError(p.err, p.i, prog[p.i])
				cancel()

				break
			}

			tr.V("emit_word").Printw("word", "i", p.i, "instr", prog[p.i], "bits", tlog.FormatNext("%#x"), p.w.Bits, "size", p.w.Size)

			next++
		}
	}

	if e := g.Wait(); err == nil {
		err = e
	}
	if err != nil {
		return nil, err
	}

	if next != len(prog) {
		return nil, errors.Wrap(ctx.Err(), "emitted %d of %d instrs", next, len(prog))
	}

	return b, nil
}

func instrError(err error, i int, x ast.Instr) error {
	if x == nil {
		return errors.Wrap(err, "instr %d", i)
	}

	if l := x.Position().Line; l != 0 {
		return errors.Wrap(err, "instr %d (line %d): %v", i, l, x)
	}

	return errors.Wrap(err, "instr %d: %v", i, x)
}

func piecesLess(d []piece, i, j int) bool {
	return d[i].i < d[j].i
}

func (q *pieces) Push(p piece) {
	tlog.V("emit_queue").Printw("piece queued", "piece", p, "pending", q.Len(), "from", loc.Caller(1))

	q.Heap.Push(p)
}

func (p piece) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)

	b = e.AppendKeyInt(b, "i", p.i)
	b = e.AppendKeyInt(b, "size", p.w.Size)

	return b
}
