package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"hegemony.sim/internal/persistence/indexdb"
	persistlog "hegemony.sim/internal/persistence/log"
	"hegemony.sim/internal/persistence/snapshot"
	"hegemony.sim/internal/protocol"
	"hegemony.sim/internal/sim/scenario"
	"hegemony.sim/internal/sim/tuning"
	"hegemony.sim/internal/sim/world"
	"hegemony.sim/internal/transport/ws"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		worldID      = flag.String("world", "world_1", "world id")
		scenarioPath = flag.String("scenario", "./configs/scenario.json", "scenario file to load when starting fresh")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		disableDB    = flag.Bool("disable_db", false, "disable the snapshot/tick index db")

		snapPath   = flag.String("snapshot", "", "path to a snapshot to load (overrides -load_latest_snapshot)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "resume from the latest indexed snapshot if present")
		maxTicks   = flag.Uint64("ticks", 0, "stop after this many ticks (0 = run until signalled)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	var tun tuning.Tuning
	if t, err := tuning.Load(*tuningPath); err == nil {
		tun = t
	} else if !os.IsNotExist(err) {
		logger.Fatalf("load tuning: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	eventLog := persistlog.NewEventLogger(worldDir)
	defer eventLog.Close()
	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		var err error
		idx, err = indexdb.Open(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}

	w := world.New(world.Config{
		ID:                 *worldID,
		ProvinceCapacity:   tun.ProvinceCapacity,
		SoftProvinceLimit:  tun.SoftProvinceLimit,
		DecayEveryTicks:    tun.DecayEveryTicks,
		TickRateHz:         tun.TickRateHz,
		SnapshotEveryTicks: tun.SnapshotEveryTicks,
	}, logger, eventSink{eventLog})

	if err := bootstrap(w, idx, worldDir, *snapPath, *loadLatest, *scenarioPath, logger); err != nil {
		logger.Fatalf("bootstrap: %v", err)
	}

	feed := ws.NewFeed(func() (string, uint64, int, int) {
		return *worldID, w.Tick(), w.Provinces().IDs().Count(), w.CountryCount()
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", feed.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(rw, "ok tick=%d observers=%d\n", w.Tick(), feed.SessionCount())
	})
	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLoop(ctx, w, feed, tickLog, idx, worldDir, *maxTicks, logger)

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutCtx)

	writeSnapshot(w, idx, worldDir, logger)
	logger.Printf("stopped at tick %d", w.Tick())
}

// eventSink appends every emitted event to the compressed event log as it
// happens, preserving mutation order.
type eventSink struct{ log *persistlog.EventLogger }

func (s eventSink) Emit(ev protocol.Event) { _ = s.log.WriteEvent(ev) }

// bootstrap fills the world from, in order of preference: an explicit
// snapshot path, the latest indexed snapshot, or the scenario file.
func bootstrap(w *world.World, idx *indexdb.SQLiteIndex, worldDir, snapPath string, loadLatest bool, scenarioPath string, logger *log.Logger) error {
	path := strings.TrimSpace(snapPath)
	if path == "" && loadLatest && idx != nil {
		row, ok, err := idx.LatestSnapshot()
		if err != nil {
			return fmt.Errorf("snapshot catalog: %w", err)
		}
		if ok {
			path = row.Path
		}
	}

	if path != "" {
		snap, err := snapshot.ReadSnapshot(path)
		if err != nil {
			return fmt.Errorf("read snapshot %s: %w", path, err)
		}
		res := w.RestoreSnapshot(snap)
		if !res.OK {
			return fmt.Errorf("restore snapshot %s: %s (%s)", path, res.Code, res.Detail)
		}
		logger.Printf("restored snapshot %s: tick=%d provinces=%d countries=%d",
			path, w.Tick(), res.Provinces, res.Countries)
		return nil
	}

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", scenarioPath, err)
	}
	res := scenario.Apply(sc, w)
	if len(res.Rejected) > 0 {
		logger.Printf("scenario %q: %d entries rejected", sc.Name, len(res.Rejected))
	}
	logger.Printf("scenario %q loaded: provinces=%d countries=%d", sc.Name, res.Provinces, res.Countries)
	return nil
}

// runLoop drives the simulation clock. Each tick ends with the swap, then the
// tick's products (owner buffer copy, events, stats) flow out to observers and
// the persistence layer.
func runLoop(ctx context.Context, w *world.World, feed *ws.Feed, tickLog *persistlog.TickLogger, idx *indexdb.SQLiteIndex, worldDir string, maxTicks uint64, logger *log.Logger) {
	cfg := w.Config()
	interval := time.Second / time.Duration(cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	owners := make([]uint16, w.Provinces().IDs().Count())
	startTick := w.Tick()

	logger.Printf("simulation loop: %d hz, snapshot every %d ticks", cfg.TickRateHz, cfg.SnapshotEveryTicks)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		sum := w.EndTick()

		if n := w.Provinces().IDs().Count(); n != len(owners) {
			owners = make([]uint16, n)
		}
		w.FillOwnerBuffer(owners)
		feed.Broadcast(sum.Tick, owners, sum.Events)

		entry := world.TickLogEntry{
			Tick:           sum.Tick,
			SyncedSlots:    sum.SyncedSlots,
			SweptModifiers: sum.SweptModifiers,
			Events:         len(sum.Events),
		}
		snapshotDue := cfg.SnapshotEveryTicks > 0 && sum.Tick > 0 && sum.Tick%uint64(cfg.SnapshotEveryTicks) == 0
		if snapshotDue {
			entry.Digest = w.StateDigest(sum.Tick)
		}
		if err := tickLog.WriteTick(entry); err != nil {
			logger.Printf("tick log: %v", err)
		}
		if idx != nil {
			idx.RecordTick(indexdb.TickRow{
				Tick:           sum.Tick,
				SyncedSlots:    sum.SyncedSlots,
				SweptModifiers: sum.SweptModifiers,
				Events:         len(sum.Events),
				Digest:         entry.Digest,
			})
		}
		if snapshotDue {
			writeSnapshot(w, idx, worldDir, logger)
		}

		if maxTicks > 0 && w.Tick()-startTick >= maxTicks {
			return
		}
	}
}

// writeSnapshot persists the current state and registers it in the catalog.
func writeSnapshot(w *world.World, idx *indexdb.SQLiteIndex, worldDir string, logger *log.Logger) {
	snap := w.ExportSnapshot()
	dir := filepath.Join(worldDir, "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Printf("snapshot dir: %v", err)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("%010d.snap.zst", snap.Header.Tick))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Printf("write snapshot: %v", err)
		return
	}
	digest := w.StateDigest(snap.Header.Tick)
	if idx != nil {
		idx.RecordSnapshot(indexdb.SnapshotRow{
			Tick:      snap.Header.Tick,
			Path:      path,
			Provinces: snap.Count,
			Countries: len(snap.Countries),
			Wars:      len(snap.Wars),
			Digest:    digest,
		})
	}
	logger.Printf("snapshot written: %s (tick=%d digest=%s)", path, snap.Header.Tick, digest[:12])
}
