package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/afterthought"
	"github.com/teranos/twitgraph/am"
	"github.com/teranos/twitgraph/distribute"
	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/ingest"
	"github.com/teranos/twitgraph/ingest/atproto"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/persist"
	"github.com/teranos/twitgraph/place"
	"github.com/teranos/twitgraph/store"
	"github.com/teranos/twitgraph/sym"
)

// placeResolverBuffer is how many place lookups may wait for the resolver
const placeResolverBuffer = 256

// IngestCmd reads messages and persists them into the graph
var IngestCmd = &cobra.Command{
	Use:   "ingest [file|-]",
	Short: sym.IX + " Ingest messages into the graph",
	Long: sym.IX + ` ingest — Ingest messages into the graph

Reads one JSON status per line (Twitter v1.1 shape) from a file or standard
input, or polls the Bluesky home timeline with --atproto. Each message is
stored with its ancestry, and knowledge stated in afterthoughts such as
"@alice (knows @bob)" is stored in a graph of its own.

Newly stored assertions pass through the distribution queue; --stream prints
them as N-Quads on standard output.

Examples:
  twitgraph ingest statuses.jsonl
  twitgraph ingest --follow spool.jsonl
  cat statuses.jsonl | twitgraph ingest -
  twitgraph ingest --atproto --stream`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var (
	ingestFollow  bool
	ingestATProto bool
	ingestStream  bool
)

func init() {
	IngestCmd.Flags().StringVar(&dbPathFlag, "db", "", "Database path (overrides database.path)")
	IngestCmd.Flags().BoolVarP(&ingestFollow, "follow", "f", false, "Keep reading the file as it grows")
	IngestCmd.Flags().BoolVar(&ingestATProto, "atproto", false, "Poll the Bluesky home timeline instead of reading a file")
	IngestCmd.Flags().BoolVar(&ingestStream, "stream", false, "Print newly stored assertions as N-Quads")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestATProto && len(args) > 0 {
		return errors.New("--atproto reads from Bluesky and takes no file argument")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src ingest.Source
	if ingestATProto {
		client, err := atproto.Login(ctx, cfg.ATProto.Host, cfg.ATProto.Identifier, cfg.ATProto.AppPassword)
		if err != nil {
			return errors.WithHint(err, "set atproto.identifier in am.toml and TWITGRAPH_ATPROTO_APP_PASSWORD in the environment")
		}
		pterm.Info.Printf("Polling the home timeline of %s every %s\n", client.Handle(), cfg.PollInterval())
		src = atproto.NewSource(client, atproto.Config{
			PollInterval:      cfg.PollInterval(),
			RequestsPerMinute: cfg.ATProto.RequestsPerMinute,
		}, logger.ComponentLogger("atproto"))
	} else {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		src = ingest.NewJSONLSource(path, logger.ComponentLogger("jsonl"), ingest.WithFollow(ingestFollow))
	}

	var stream io.Writer
	if ingestStream {
		stream = cmd.OutOrStdout()
	}

	res, err := runIngestion(ctx, cfg, src, am.ActiveConfigFile(), stream)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Ingested %d messages (%d failed); %d assertions distributed, %d evicted, %d dropped\n",
		res.Handled, res.Failed, res.Distributed, res.Evicted, res.Dropped)
	return nil
}

// ingestResult summarises one ingestion run
type ingestResult struct {
	Handled, Failed  int64
	Distributed      int64
	Evicted, Dropped int64
}

// runIngestion wires store, distribution queue, place resolver, persister
// and pipeline together and runs src to completion. With configPath set the
// distribution policy follows changes to that file. With stream set, every
// distributed assertion is written to it as an N-Quad.
func runIngestion(ctx context.Context, cfg *am.Config, src ingest.Source, configPath string, stream io.Writer) (ingestResult, error) {
	log := logger.ComponentLogger("ingest")

	database, s, err := openStore(cfg)
	if err != nil {
		return ingestResult{}, err
	}
	defer database.Close()

	policy, err := distribute.ParsePolicy(cfg.Distribution.Policy)
	if err != nil {
		return ingestResult{}, err
	}
	queue, err := distribute.NewQueue(cfg.Distribution.Capacity, policy, logger.ComponentLogger("distribute"))
	if err != nil {
		return ingestResult{}, err
	}
	s.RegisterListener(queue)

	if configPath != "" {
		watcher, err := am.NewConfigWatcher(configPath, logger.ComponentLogger("am"))
		if err != nil {
			log.Warnw("Config changes will not be applied while ingesting", logger.FieldError, err)
		} else {
			watcher.OnReload(func(c *am.Config) error {
				p, err := distribute.ParsePolicy(c.Distribution.Policy)
				if err != nil {
					return err
				}
				queue.SetPolicy(p)
				return nil
			})
			am.SetGlobalWatcher(watcher)
			watcher.Start()
			defer func() {
				am.SetGlobalWatcher(nil)
				watcher.Stop()
			}()
		}
	}

	opts := []persist.Option{persist.WithMaxAncestryDepth(cfg.Persist.MaxAncestryDepth)}
	if cfg.Persist.ResolvePlaces {
		resolver := place.NewQueueResolver(placeResolverBuffer, logger.ComponentLogger("place"))
		defer resolver.Close()
		opts = append(opts, persist.WithResolver(resolver))
	}
	persister := persist.NewPersister(s, logger.ComponentLogger("persist"), opts...)
	pipeline := ingest.NewPipeline(afterthought.NewExtractor(logger.ComponentLogger("afterthought")), persister, log)

	var wg sync.WaitGroup
	consumeCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	var distributed int64
	var streamMu sync.Mutex
	writeQuad := func(a store.Assertion) error {
		streamMu.Lock()
		defer streamMu.Unlock()
		distributed++
		if stream == nil {
			return nil
		}
		_, err := fmt.Fprintln(stream, a.String())
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := queue.Consume(consumeCtx, writeQuad)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("Distribution consumer stopped", logger.FieldError, err)
		}
	}()

	if interval := cfg.DumpInterval(); interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dumpEvery(consumeCtx, s, cfg.Dump.File, interval, log)
		}()
	}

	runErr := pipeline.Run(ctx, src)

	stopConsumers()
	wg.Wait()
	for _, a := range queue.Drain() {
		if err := writeQuad(a); err != nil {
			return ingestResult{}, errors.Wrap(err, "write stream")
		}
	}

	if cfg.Dump.File != "" {
		// Final dump so the file reflects everything ingested
		if n, err := store.DumpFile(context.Background(), s, cfg.Dump.File); err != nil {
			log.Errorw("Final dump failed", logger.FieldPath, cfg.Dump.File, logger.FieldError, err)
		} else {
			log.Infow("Dump written", logger.FieldPath, cfg.Dump.File, logger.FieldCount, n)
		}
	}

	handled, failed := pipeline.Stats()
	evicted, dropped := queue.Stats()
	res := ingestResult{
		Handled:     handled,
		Failed:      failed,
		Distributed: distributed,
		Evicted:     evicted,
		Dropped:     dropped,
	}
	if runErr != nil {
		return res, errors.Wrap(runErr, "ingest source failed")
	}
	return res, nil
}

// dumpEvery rewrites path with the full graph every interval until ctx ends
func dumpEvery(ctx context.Context, s store.Store, path string, interval time.Duration, log *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			n, err := store.DumpFile(ctx, s, path)
			if err != nil {
				if ctx.Err() == nil {
					log.Errorw("Periodic dump failed", logger.FieldPath, path, logger.FieldError, err)
				}
				continue
			}
			log.Infow("Dump written",
				logger.FieldPath, path,
				logger.FieldCount, n,
				logger.FieldDurationMS, time.Since(start).Milliseconds())
		}
	}
}
