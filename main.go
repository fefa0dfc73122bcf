package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"popupdict/analyze"
	"popupdict/builder"
	"popupdict/config"
	"popupdict/dictionary"
	"popupdict/ingest"
	"popupdict/logger"
	"popupdict/tokenize"
)

type options struct {
	text      string
	config    string
	db        string
	segmenter string
	logLevel  string
	dumpDir   string
}

func main() {
	var opts options
	pflag.StringVarP(&opts.text, "text", "t", "", "Japanese text to look up")
	pflag.StringVarP(&opts.config, "config", "c", "", "Path to the YAML config file")
	pflag.StringVar(&opts.db, "db", "", "Lexicon store path (overrides config)")
	pflag.StringVar(&opts.segmenter, "segmenter", "", "Segmenter dictionary: ipa or uni (overrides config)")
	pflag.StringVar(&opts.logLevel, "log-level", "", "Log level (overrides config)")
	pflag.StringVar(&opts.dumpDir, "dump-dir", "", "Directory for session JSON dumps (overrides config)")
	pflag.Parse()
	if opts.text == "" && pflag.NArg() > 0 {
		opts.text = strings.Join(pflag.Args(), "")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "popupdict:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	if opts.db != "" {
		cfg.Store = opts.db
	}
	if opts.segmenter != "" {
		cfg.Segmenter = opts.segmenter
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	dumpDir := cfg.Path(cfg.Log.Dir)
	if opts.dumpDir != "" {
		dumpDir = opts.dumpDir
	}

	log, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	backend, err := tokenize.ParseBackend(cfg.Segmenter)
	if err != nil {
		return err
	}

	store, err := dictionary.Open(cfg.Path(cfg.Store), dictionary.Cfg{Log: log, CacheSize: cfg.CacheSize})
	if err != nil {
		return err
	}
	defer store.Close()

	res := builder.Resources{
		WordList:    cfg.Path(cfg.Resources.WordList),
		Frequencies: cfg.Path(cfg.Resources.Frequencies),
		Furigana:    cfg.Path(cfg.Resources.Furigana),
	}
	if _, err := builder.New(store, res, builder.Cfg{Log: log}).EnsurePopulated(ctx); err != nil {
		var re *builder.ResourceError
		if errors.As(err, &re) {
			log.WithField("path", re.Path).Error("build input unavailable; place the resource files under the data directory")
		}
		return err
	}

	if opts.text == "" {
		log.Info("lexicon ready, no text given")
		return nil
	}
	sentence, err := ingest.IngestSentence(opts.text)
	if err != nil {
		return err
	}

	seg, err := tokenize.NewSegmenter(backend)
	if err != nil {
		return err
	}
	log.WithField("segmenter", seg.Backend()).Debug("segmenter ready")
	window, err := store.MaxKeyLength()
	if err != nil {
		return err
	}
	if cfg.MaxWindow > 0 && cfg.MaxWindow < window {
		window = cfg.MaxWindow
	}
	worker := tokenize.NewWorker(seg, &tokenize.Merger{Lexicon: store, MaxWindow: window}, log)
	job, err := worker.Submit(sentence.Text)
	if err != nil {
		return err
	}
	result, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	if result.Err != nil {
		return result.Err
	}

	analysis, err := analyze.Analyze(ctx, sentence, store, result.Tokens)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	dump(log, dumpDir, sentence, result.Tokens, analysis)
	logMetrics(log)
	return nil
}

// dump writes the session artifacts. Failures are logged, not returned.
func dump(log *logrus.Logger, dir string, s ingest.Sentence, tokens []tokenize.Token, a analyze.Analysis) {
	if err := logger.InitLogs(dir); err != nil {
		log.WithError(err).Warn("cannot prepare dump directory")
		return
	}
	for name, v := range map[string]interface{}{
		s.ID + "_tokens":   tokens,
		s.ID + "_analysis": a,
	} {
		if err := logger.LogJSON(dir, name, v); err != nil {
			log.WithError(err).WithField("name", name).Warn("dump failed")
		}
	}
	log.WithField("dir", dir).Debug("session dumped")
}

func logMetrics(log *logrus.Logger) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	metrics.DefaultRegistry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case metrics.Timer:
			s := m.Snapshot()
			log.WithFields(logrus.Fields{
				"count": s.Count(),
				"mean":  time.Duration(s.Mean()),
				"max":   time.Duration(s.Max()),
			}).Debug(name)
		case metrics.Counter:
			log.WithField("count", m.Count()).Debug(name)
		case metrics.Meter:
			log.WithField("count", m.Snapshot().Count()).Debug(name)
		}
	})
}
