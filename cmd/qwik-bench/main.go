package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/GustavoMelloGit/qwik/pkg/platform"
	"github.com/GustavoMelloGit/qwik/pkg/qrl"
	"github.com/GustavoMelloGit/qwik/pkg/qwik"
	"github.com/GustavoMelloGit/qwik/pkg/scheduler"
	"github.com/GustavoMelloGit/qwik/pkg/store"
)

var (
	taskCounts = []int{1, 10, 100, 1_000}
	iters      = flag.Int("iters", 100, "write iterations per configuration")
)

func main() {
	flag.Parse()

	log.Printf("warming up")

	benchmarkPropagate(true)
	benchmarkDeclare(true)
}

// bench wires a fresh container with a quiet logger.
type bench struct {
	manager   *store.Manager
	sched     *scheduler.Scheduler
	container *qwik.Container
	el        *qwik.Element
}

func newBench() *bench {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := store.NewManager()
	sched := scheduler.New(logger)
	container := qwik.NewContainer(qwik.ContainerConfig{
		Subs:      manager,
		Platform:  platform.ClientPlatform(),
		Scheduler: sched,
		Hooks:     sched,
		Logger:    logger,
	})
	sched.Bind(container)

	el := qwik.NewElement("bench")
	el.StartRender()

	return &bench{manager: manager, sched: sched, container: container, el: el}
}

// benchmarkPropagate measures write-to-settle latency: w tasks all track the
// same property, one write dirties them all, and one flush drains them.
func benchmarkPropagate(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Task Propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	ctx := context.Background()

	for _, w := range taskCounts {
		tach := tachymeter.New(&tachymeter.Config{Size: *iters})

		b := newBench()
		st := store.New(b.manager, map[string]any{"count": 0})
		ic := qwik.NewInvokeContext(b.container, b.el)

		for i := 0; i < w; i++ {
			ref := qrl.FromFunc(fmt.Sprintf("bench_task_%d", i),
				qwik.TaskFn(func(ctx context.Context, track qwik.Tracker) (qwik.CleanupFn, error) {
					_ = track(st, "count")
					return nil, nil
				}))
			qwik.UseTask(ic, ref)
		}
		if err := b.sched.Flush(ctx); err != nil {
			log.Fatal(err)
		}

		for i := 0; i < *iters; i++ {
			start := time.Now()
			st.Set("count", i)
			if err := b.sched.Flush(ctx); err != nil {
				log.Fatal(err)
			}
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				fmt.Sprintf("write + flush: %d tasks", w),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkDeclare measures descriptor declaration cost and the heap held by
// a populated watch list.
func benchmarkDeclare(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Task Declaration")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "total", "per task", "heap growth"})

	for _, w := range taskCounts {
		b := newBench()
		st := store.New(b.manager, map[string]any{"count": 0})
		ic := qwik.NewInvokeContext(b.container, b.el)

		runtime.GC()
		var before runtime.MemStats
		runtime.ReadMemStats(&before)

		start := time.Now()
		for i := 0; i < w; i++ {
			ref := qrl.FromFunc(fmt.Sprintf("bench_decl_%d", i),
				qwik.TaskFn(func(ctx context.Context, track qwik.Tracker) (qwik.CleanupFn, error) {
					_ = track(st, "count")
					return nil, nil
				}))
			qwik.UseTask(ic, ref)
		}
		total := time.Since(start)

		var after runtime.MemStats
		runtime.ReadMemStats(&after)

		grown := after.HeapAlloc - before.HeapAlloc
		if after.HeapAlloc < before.HeapAlloc {
			grown = 0
		}

		tbl.AppendRows([]table.Row{
			{
				fmt.Sprintf("declare: %d tasks", w),
				total,
				total / time.Duration(w),
				humanize.Bytes(grown),
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}
