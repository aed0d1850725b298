package main

import (
	"flag"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/t-fbd/loc-api/common"
)

// Seed is one harvest request posted to the api.
type Seed struct {
	Kind       string   `yaml:"kind"`
	Query      string   `yaml:"query"`
	Collection string   `yaml:"collection"`
	Media      string   `yaml:"media"`
	Filters    []string `yaml:"filters"`
	PerPage    int      `yaml:"per_page"`
	StartPage  int      `yaml:"start_page"`
	MaxPages   int      `yaml:"max_pages"`
	Sort       string   `yaml:"sort"`
	// Repeat submits the same seed this many times (default 1).
	Repeat int `yaml:"repeat"`
}

// Config holds the seeds to submit to the API.
type Config struct {
	Seeds []Seed `yaml:"seeds"`
}

var errNoSeeds = errors.New("config has no seeds")

func main() {
	common.SetupLogging()

	configPath := flag.String("config", "seeds.yaml", "Path to YAML config file with harvest seeds")
	apiBase := flag.String("api", common.GetEnv("LOC_API_URL", "http://localhost:8080"), "API base URL")
	flag.Parse()

	if err := run(*configPath, *apiBase, nil); err != nil {
		log.Fatal().Err(err).Msg("loadgen")
	}
}

// run loads the seeds and posts them to the api concurrently.
// A nil client gets a default with a 30s timeout.
func run(configPath, apiBase string, client *http.Client) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	baseURL, err := url.Parse(apiBase)
	if err != nil {
		return errors.Wrap(err, "parse api base")
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	var (
		wg       sync.WaitGroup
		accepted int64
		total    int
	)
	for i, seed := range cfg.Seeds {
		repeat := seed.Repeat
		if repeat < 1 {
			repeat = 1
		}
		for r := 0; r < repeat; r++ {
			total++
			wg.Add(1)
			go func(idx int, s Seed) {
				defer wg.Done()
				if submitSeed(client, baseURL, idx, s) {
					atomic.AddInt64(&accepted, 1)
				}
			}(i, seed)
		}
	}
	wg.Wait()
	log.Info().Int("submitted", total).Int64("accepted", atomic.LoadInt64(&accepted)).Msg("loadgen done")
	return nil
}

// loadConfig reads and parses the YAML config file.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	if len(cfg.Seeds) == 0 {
		return cfg, errNoSeeds
	}
	return cfg, nil
}

// values renders a seed as the api's harvest query parameters.
func (s Seed) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			v.Set(key, value)
		}
	}
	setInt := func(key string, value int) {
		if value > 0 {
			v.Set(key, strconv.Itoa(value))
		}
	}
	set("kind", s.Kind)
	set("q", s.Query)
	set("collection", s.Collection)
	set("media", s.Media)
	if len(s.Filters) > 0 {
		v.Set("fa", strings.Join(s.Filters, "|"))
	}
	setInt("c", s.PerPage)
	setInt("sp", s.StartPage)
	setInt("max_pages", s.MaxPages)
	set("sb", s.Sort)
	return v
}

// submitSeed posts one harvest request and reports whether it was accepted.
func submitSeed(client *http.Client, base *url.URL, idx int, seed Seed) bool {
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + "/harvest"
	u.RawQuery = seed.values().Encode()

	resp, err := client.Post(u.String(), "", nil)
	if err != nil {
		log.Error().Err(err).Int("idx", idx).Str("kind", seed.Kind).Msg("submit")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		log.Warn().Int("idx", idx).Str("kind", seed.Kind).Int("status", resp.StatusCode).Msg("rejected")
		return false
	}
	log.Info().Int("idx", idx).Str("kind", seed.Kind).Msg("accepted")
	return true
}
