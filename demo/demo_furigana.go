// Command demo_furigana prints the stored furigana of every term under a
// word's keys in a populated lexicon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"popupdict/analyze"
	"popupdict/config"
	"popupdict/dictionary"
)

func main() {
	cfgPath := pflag.StringP("config", "c", "", "Path to the YAML config file")
	db := pflag.String("db", "", "Lexicon store path (overrides config)")
	pflag.Parse()
	if pflag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: demo_furigana [-c config] [--db path] word...")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	path := cfg.Path(cfg.Store)
	if *db != "" {
		path = *db
	}
	store, err := dictionary.Open(path, dictionary.Cfg{CacheSize: -1})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if ok, _ := store.Populated(); !ok {
		store.Close()
		fmt.Fprintln(os.Stderr, "lexicon is not populated; run popupdict once first")
		os.Exit(1)
	}
	defer store.Close()

	for _, word := range pflag.Args() {
		for _, key := range []string{dictionary.TermKey(word), dictionary.ReadingKey(word)} {
			e, err := store.Get(key)
			if err != nil {
				fmt.Printf("%s: %v\n", key, err)
				continue
			}
			if e == nil {
				fmt.Printf("%s: -\n", key)
				continue
			}
			for _, t := range e.Terms {
				fmt.Printf("%s: %s\n", key, analyze.Ruby(t))
			}
		}
	}
}
